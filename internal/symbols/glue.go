package symbols

import "github.com/samochreno/ace-sub002/internal/types"

// GlueBinding records the copy/drop functions the compiler generates (or the
// user overrides) for a non-trivial type. Lookup is by the type's TypeID:
// every StrongPtr<T>, struct, or union with non-trivial ownership gets one
// entry, populated once its glue functions are declared during Bind.
type GlueBinding struct {
	Copy SymbolID
	Drop SymbolID
}

// GlueTable maps a TypeID to its copy/drop glue symbols.
type GlueTable struct {
	bindings map[types.TypeID]GlueBinding
}

// NewGlueTable constructs an empty glue table.
func NewGlueTable() *GlueTable {
	return &GlueTable{bindings: make(map[types.TypeID]GlueBinding)}
}

// Bind records the glue functions for a type, overwriting any prior entry.
func (g *GlueTable) Bind(typeID types.TypeID, binding GlueBinding) {
	if g == nil || typeID == types.NoTypeID {
		return
	}
	if g.bindings == nil {
		g.bindings = make(map[types.TypeID]GlueBinding)
	}
	g.bindings[typeID] = binding
}

// Lookup returns the glue binding for a type, if one was registered.
func (g *GlueTable) Lookup(typeID types.TypeID) (GlueBinding, bool) {
	if g == nil || g.bindings == nil {
		return GlueBinding{}, false
	}
	b, ok := g.bindings[typeID]
	return b, ok
}

// CopySymbol returns the copy-glue symbol for a type, or NoSymbolID when the
// type's copy is trivial (no binding registered, or the binding leaves Copy
// unset because the interner already flagged the type FlagCopyTrivial).
func (g *GlueTable) CopySymbol(typeID types.TypeID) SymbolID {
	b, ok := g.Lookup(typeID)
	if !ok {
		return NoSymbolID
	}
	return b.Copy
}

// DropSymbol returns the drop-glue symbol for a type, or NoSymbolID when the
// type's drop is trivial.
func (g *GlueTable) DropSymbol(typeID types.TypeID) SymbolID {
	b, ok := g.Lookup(typeID)
	if !ok {
		return NoSymbolID
	}
	return b.Drop
}

package symbols

import (
	"github.com/samochreno/ace-sub002/internal/source"
	"github.com/samochreno/ace-sub002/internal/types"
)

// TraitMethod captures a single method requirement of a trait.
type TraitMethod struct {
	Name   source.StringID
	Params []types.TypeID
	Result types.TypeID
	Span   source.Span
	Attrs  []source.StringID
	Public bool
	Async  bool
}

// TraitSpec aggregates field and method requirements for a trait.
type TraitSpec struct {
	Fields     map[source.StringID]types.TypeID
	FieldAttrs map[source.StringID][]source.StringID
	Methods    map[source.StringID][]TraitMethod
}

// NewTraitSpec allocates an empty trait spec with pre-sized maps.
func NewTraitSpec() *TraitSpec {
	return &TraitSpec{
		Fields:     make(map[source.StringID]types.TypeID),
		FieldAttrs: make(map[source.StringID][]source.StringID),
		Methods:    make(map[source.StringID][]TraitMethod),
	}
}

// AddField registers a field requirement.
func (c *TraitSpec) AddField(name source.StringID, typ types.TypeID, attrs []source.StringID) {
	if c == nil || name == source.NoStringID {
		return
	}
	c.Fields[name] = typ
	if len(attrs) > 0 {
		c.FieldAttrs[name] = append([]source.StringID(nil), attrs...)
	}
}

// AddMethod registers a method requirement.
func (c *TraitSpec) AddMethod(m *TraitMethod) {
	if c == nil || m == nil || m.Name == source.NoStringID {
		return
	}
	clone := TraitMethod{
		Name:   m.Name,
		Params: append([]types.TypeID(nil), m.Params...),
		Result: m.Result,
		Span:   m.Span,
		Attrs:  append([]source.StringID(nil), m.Attrs...),
		Public: m.Public,
		Async:  m.Async,
	}
	c.Methods[m.Name] = append(c.Methods[m.Name], clone)
}

func cloneTraitSpec(spec *TraitSpec) *TraitSpec {
	if spec == nil {
		return nil
	}
	out := NewTraitSpec()
	for name, typ := range spec.Fields {
		out.Fields[name] = typ
	}
	for name, attrs := range spec.FieldAttrs {
		out.FieldAttrs[name] = append([]source.StringID(nil), attrs...)
	}
	for _, methods := range spec.Methods {
		for i := range methods {
			out.AddMethod(&methods[i])
		}
	}
	return out
}

// CloneTraitSpec produces a deep copy of the provided trait spec.
func CloneTraitSpec(spec *TraitSpec) *TraitSpec {
	return cloneTraitSpec(spec)
}

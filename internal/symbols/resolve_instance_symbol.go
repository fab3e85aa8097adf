package symbols

import (
	"github.com/samochreno/ace-sub002/internal/ast"
	"github.com/samochreno/ace-sub002/internal/source"
)

// ResolveInstanceSymbol finds the method symbol named name on a receiver
// identified by receiverKey, preferring a symbol declared inside an inherent
// `impl Type` block over one declared inside an `impl Trait for Type` block.
// Resolution order is inherent impl, then trait impl; supertrait fallback is
// not modeled since TraitSpec carries no supertrait list in this tree.
func ResolveInstanceSymbol(table *Table, result *Result, receiverKey TypeKey, name source.StringID) SymbolID {
	if table == nil || table.Symbols == nil || result == nil || name == source.NoStringID || receiverKey == "" {
		return NoSymbolID
	}
	data := table.Symbols.Data()
	if data == nil {
		return NoSymbolID
	}

	var inherentMatch, traitMatch SymbolID
	for i := range data {
		sym := &data[i]
		if sym.Kind != SymbolFunction || sym.ReceiverKey != receiverKey || sym.Name != name {
			continue
		}
		// Symbol IDs are offset by 1 since Data() drops the sentinel at index 0.
		symID := SymbolID(i + 1) //nolint:gosec // bounded by arena size, always < MaxUint32
		switch implKindForMember(table, result, sym.Decl.Item) {
		case SymbolImplInherent:
			if !inherentMatch.IsValid() {
				inherentMatch = symID
			}
		case SymbolImplTraitImpl:
			if !traitMatch.IsValid() {
				traitMatch = symID
			}
		default:
			// Declared outside any impl block (e.g. an extern block); treat
			// it like an inherent method for precedence purposes.
			if !inherentMatch.IsValid() {
				inherentMatch = symID
			}
		}
	}

	if inherentMatch.IsValid() {
		return inherentMatch
	}
	return traitMatch
}

// implKindForMember reports whether the impl block containing item is an
// inherent impl or a trait impl, by inspecting the block's own symbol
// recorded alongside its members in ItemSymbols.
func implKindForMember(table *Table, result *Result, item ast.ItemID) SymbolKind {
	if !item.IsValid() || result == nil || table == nil {
		return SymbolInvalid
	}
	for _, symID := range result.ItemSymbols[item] {
		sym := table.Symbols.Get(symID)
		if sym == nil {
			continue
		}
		if sym.Kind == SymbolImplInherent || sym.Kind == SymbolImplTraitImpl {
			return sym.Kind
		}
	}
	return SymbolInvalid
}

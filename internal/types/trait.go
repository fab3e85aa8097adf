package types

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/samochreno/ace-sub002/internal/source"
)

// TraitInfo stores metadata for a trait type. The method/field requirement
// set itself lives in the symbol table (keyed by the trait's SymbolID); this
// side table only carries what the type interner needs to identify and
// print the trait and to back dyn-dispatch pointer construction.
type TraitInfo struct {
	Name source.StringID
	Decl source.Span
}

// RegisterTrait allocates a nominal trait type slot and returns its TypeID.
func (in *Interner) RegisterTrait(name source.StringID, decl source.Span) TypeID {
	slot := in.appendTraitInfo(TraitInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindTrait, Payload: slot})
}

// TraitInfo returns metadata for the provided trait TypeID.
func (in *Interner) TraitInfo(typeID TypeID) (*TraitInfo, bool) {
	info := in.traitInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// DynStrongPtr returns (creating if necessary) the StrongPtr<dyn traitID>
// type for the given trait TypeID. traitID must resolve to KindTrait.
func (in *Interner) DynStrongPtr(traitID TypeID) TypeID {
	tt, ok := in.Lookup(traitID)
	if !ok || tt.Kind != KindTrait {
		return NoTypeID
	}
	return in.Intern(MakeDynStrongPtr(traitID))
}

func (in *Interner) traitInfo(typeID TypeID) *TraitInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindTrait {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.traits) {
		return nil
	}
	return &in.traits[tt.Payload]
}

func (in *Interner) appendTraitInfo(info TraitInfo) uint32 {
	if in.traits == nil {
		in.traits = append(in.traits, TraitInfo{})
	}
	in.traits = append(in.traits, info)
	slot, err := safecast.Conv[uint32](len(in.traits) - 1)
	if err != nil {
		panic(fmt.Errorf("trait info overflow: %w", err))
	}
	return slot
}

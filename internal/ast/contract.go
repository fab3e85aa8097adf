package ast

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/samochreno/ace-sub002/internal/source"
)

type TraitItemKind uint8

const (
	TraitItemField TraitItemKind = iota
	TraitItemFn
)

type TraitDecl struct {
	Name                  source.StringID
	NameSpan              source.Span
	Generics              []source.StringID
	GenericCommas         []source.Span
	GenericsTrailingComma bool
	GenericsSpan          source.Span
	TraitKeywordSpan   source.Span
	BodySpan              source.Span
	ItemsStart            TraitItemID
	ItemsCount            uint32
	AttrStart             AttrID
	AttrCount             uint32
	Visibility            Visibility
	Span                  source.Span
}

type TraitItem struct {
	Kind    TraitItemKind
	Payload PayloadID
	Span    source.Span
}

type TraitFieldReq struct {
	Name             source.StringID
	NameSpan         source.Span
	Type             TypeID
	FieldKeywordSpan source.Span
	ColonSpan        source.Span
	SemicolonSpan    source.Span
	AttrStart        AttrID
	AttrCount        uint32
	Span             source.Span
}

type TraitFnReq struct {
	Name                  source.StringID
	NameSpan              source.Span
	Generics              []source.StringID
	GenericCommas         []source.Span
	GenericsTrailingComma bool
	GenericsSpan          source.Span
	ParamsStart           FnParamID
	ParamsCount           uint32
	ParamCommas           []source.Span
	ParamsTrailingComma   bool
	FnKeywordSpan         source.Span
	ParamsSpan            source.Span
	ReturnSpan            source.Span
	SemicolonSpan         source.Span
	ReturnType            TypeID
	Flags                 FnModifier
	AttrStart             AttrID
	AttrCount             uint32
	Span                  source.Span
}

type TraitItemSpec struct {
	Kind    TraitItemKind
	Payload PayloadID
	Span    source.Span
}

func (i *Items) Trait(id ItemID) (*TraitDecl, bool) {
	item := i.Arena.Get(uint32(id))
	if item == nil || item.Kind != ItemTrait || !item.Payload.IsValid() {
		return nil, false
	}
	return i.Traits.Get(uint32(item.Payload)), true
}

func (i *Items) TraitItem(id TraitItemID) *TraitItem {
	if !id.IsValid() {
		return nil
	}
	return i.TraitItems.Get(uint32(id))
}

func (i *Items) TraitField(id TraitFieldID) *TraitFieldReq {
	if !id.IsValid() {
		return nil
	}
	return i.TraitFields.Get(uint32(id))
}

func (i *Items) TraitFn(id TraitFnID) *TraitFnReq {
	if !id.IsValid() {
		return nil
	}
	return i.TraitFns.Get(uint32(id))
}

func (i *Items) GetTraitItemIDs(trait *TraitDecl) []TraitItemID {
	if trait == nil || trait.ItemsCount == 0 || !trait.ItemsStart.IsValid() {
		return nil
	}
	items := make([]TraitItemID, trait.ItemsCount)
	start := uint32(trait.ItemsStart)
	for idx := range trait.ItemsCount {
		items[idx] = TraitItemID(start + uint32(idx))
	}
	return items
}

func (i *Items) NewTraitField(
	name source.StringID,
	nameSpan source.Span,
	typ TypeID,
	fieldKwSpan source.Span,
	colonSpan source.Span,
	semicolonSpan source.Span,
	attrs []Attr,
	span source.Span,
) PayloadID {
	attrStart, attrCount := i.allocateAttrs(attrs)
	payload := TraitFieldReq{
		Name:             name,
		NameSpan:         nameSpan,
		Type:             typ,
		FieldKeywordSpan: fieldKwSpan,
		ColonSpan:        colonSpan,
		SemicolonSpan:    semicolonSpan,
		AttrStart:        attrStart,
		AttrCount:        attrCount,
		Span:             span,
	}
	return PayloadID(i.TraitFields.Allocate(payload))
}

func (i *Items) newTraitFnPayload(
	name source.StringID,
	nameSpan source.Span,
	generics []source.StringID,
	genericCommas []source.Span,
	genericsTrailing bool,
	genericsSpan source.Span,
	paramsStart FnParamID,
	paramsCount uint32,
	paramCommas []source.Span,
	paramsTrailing bool,
	fnKwSpan source.Span,
	paramsSpan source.Span,
	returnSpan source.Span,
	semicolonSpan source.Span,
	returnType TypeID,
	flags FnModifier,
	attrStart AttrID,
	attrCount uint32,
	span source.Span,
) PayloadID {
	payload := i.TraitFns.Allocate(TraitFnReq{
		Name:                  name,
		NameSpan:              nameSpan,
		Generics:              generics,
		GenericCommas:         append([]source.Span(nil), genericCommas...),
		GenericsTrailingComma: genericsTrailing,
		GenericsSpan:          genericsSpan,
		ParamsStart:           paramsStart,
		ParamsCount:           paramsCount,
		ParamCommas:           append([]source.Span(nil), paramCommas...),
		ParamsTrailingComma:   paramsTrailing,
		FnKeywordSpan:         fnKwSpan,
		ParamsSpan:            paramsSpan,
		ReturnSpan:            returnSpan,
		SemicolonSpan:         semicolonSpan,
		ReturnType:            returnType,
		Flags:                 flags,
		AttrStart:             attrStart,
		AttrCount:             attrCount,
		Span:                  span,
	})
	return PayloadID(payload)
}

func (i *Items) NewTraitFn(
	name source.StringID,
	nameSpan source.Span,
	generics []source.StringID,
	genericCommas []source.Span,
	genericsTrailing bool,
	genericsSpan source.Span,
	params []FnParam,
	paramCommas []source.Span,
	paramsTrailing bool,
	fnKwSpan source.Span,
	paramsSpan source.Span,
	returnSpan source.Span,
	semicolonSpan source.Span,
	returnType TypeID,
	flags FnModifier,
	attrs []Attr,
	span source.Span,
) PayloadID {
	paramsStart, paramsCount := i.allocateFnParams(params)
	attrStart, attrCount := i.allocateAttrs(attrs)
	return i.newTraitFnPayload(
		name,
		nameSpan,
		generics,
		genericCommas,
		genericsTrailing,
		genericsSpan,
		paramsStart,
		paramsCount,
		paramCommas,
		paramsTrailing,
		fnKwSpan,
		paramsSpan,
		returnSpan,
		semicolonSpan,
		returnType,
		flags,
		attrStart,
		attrCount,
		span,
	)
}

func (i *Items) NewTrait(
	name source.StringID,
	nameSpan source.Span,
	generics []source.StringID,
	genericCommas []source.Span,
	genericsTrailing bool,
	genericsSpan source.Span,
	traitKwSpan source.Span,
	bodySpan source.Span,
	attrs []Attr,
	items []TraitItemSpec,
	visibility Visibility,
	span source.Span,
) ItemID {
	attrStart, attrCount := i.allocateAttrs(attrs)

	var itemsStart TraitItemID
	itemCount, err := safecast.Conv[uint32](len(items))
	if err != nil {
		panic(fmt.Errorf("trait items count overflow: %w", err))
	}
	if itemCount > 0 {
		for idx, spec := range items {
			record := TraitItem(spec)
			itemID := TraitItemID(i.TraitItems.Allocate(record))
			if idx == 0 {
				itemsStart = itemID
			}
		}
	}

	payload := TraitDecl{
		Name:                  name,
		NameSpan:              nameSpan,
		Generics:              append([]source.StringID(nil), generics...),
		GenericCommas:         append([]source.Span(nil), genericCommas...),
		GenericsTrailingComma: genericsTrailing,
		GenericsSpan:          genericsSpan,
		TraitKeywordSpan:   traitKwSpan,
		BodySpan:              bodySpan,
		ItemsStart:            itemsStart,
		ItemsCount:            itemCount,
		AttrStart:             attrStart,
		AttrCount:             attrCount,
		Visibility:            visibility,
		Span:                  span,
	}

	payloadID := i.Traits.Allocate(payload)
	return i.New(ItemTrait, span, PayloadID(payloadID))
}

package ast

import "github.com/samochreno/ace-sub002/internal/source"

type LetItem struct {
	Name       source.StringID
	NameSpan   source.Span
	Type       TypeID // NoTypeID if type is inferred
	Value      ExprID // NoExprID if no initialization
	IsMut      bool   // mut modifier
	AttrStart  AttrID
	AttrCount  uint32
	Visibility Visibility
	Span       source.Span
}

func (i *Items) Let(id ItemID) (*LetItem, bool) {
	item := i.Arena.Get(uint32(id))
	if item == nil || item.Kind != ItemLet {
		return nil, false
	}
	return i.Lets.Get(uint32(item.Payload)), true
}

func (i *Items) newLetPayload(
	name source.StringID,
	nameSpan source.Span,
	typeID TypeID,
	value ExprID,
	isMut bool,
	attrStart AttrID,
	attrCount uint32,
	visibility Visibility,
	span source.Span,
) PayloadID {
	payload := i.Lets.Allocate(LetItem{
		Name:       name,
		NameSpan:   nameSpan,
		Type:       typeID,
		Value:      value,
		IsMut:      isMut,
		AttrStart:  attrStart,
		AttrCount:  attrCount,
		Visibility: visibility,
		Span:       span,
	})
	return PayloadID(payload)
}

func (i *Items) NewLet(
	name source.StringID,
	nameSpan source.Span,
	typeID TypeID,
	value ExprID,
	isMut bool,
	attrs []Attr,
	visibility Visibility,
	span source.Span,
) ItemID {
	attrStart, attrCount := i.allocateAttrs(attrs)
	payloadID := i.newLetPayload(name, nameSpan, typeID, value, isMut, attrStart, attrCount, visibility, span)
	return i.New(ItemLet, span, payloadID)
}

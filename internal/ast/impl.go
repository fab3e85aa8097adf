package ast

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/samochreno/ace-sub002/internal/source"
)

// ImplMemberKind distinguishes between the different members an impl block
// can carry. Only functions are supported today.
type ImplMemberKind uint8

const (
	// ImplMemberFn represents a function member in an impl block.
	ImplMemberFn ImplMemberKind = iota
)

// ImplBlock represents `impl Type { ... }` (Trait == NoTypeID, an inherent
// impl) or `impl Trait for Type { ... }` (a trait impl).
type ImplBlock struct {
	Trait           TypeID
	Target          TypeID
	AttrStart       AttrID
	AttrCount       uint32
	MembersStart    ImplMemberID
	MembersCount    uint32
	ImplKeywordSpan source.Span
	ForSpan         source.Span
	Span            source.Span
}

// ImplMember represents a member of an impl block.
type ImplMember struct {
	Kind ImplMemberKind
	Fn   PayloadID
	Span source.Span
}

// ImplMemberSpec specifies a member when creating a new impl block.
type ImplMemberSpec struct {
	Kind ImplMemberKind
	Fn   PayloadID
	Span source.Span
}

// Impl returns the ImplBlock for the given ItemID, or nil/false if invalid.
func (i *Items) Impl(id ItemID) (*ImplBlock, bool) {
	item := i.Arena.Get(uint32(id))
	if item == nil || item.Kind != ItemImpl || !item.Payload.IsValid() {
		return nil, false
	}
	return i.Impls.Get(uint32(item.Payload)), true
}

// ImplMember returns the ImplMember for the given ImplMemberID.
func (i *Items) ImplMember(id ImplMemberID) *ImplMember {
	if !id.IsValid() {
		return nil
	}
	return i.ImplMembers.Get(uint32(id))
}

// NewImpl creates a new impl block item. trait is NoTypeID for an inherent
// impl.
func (i *Items) NewImpl(
	trait TypeID,
	target TypeID,
	attrs []Attr,
	members []ImplMemberSpec,
	implKeywordSpan source.Span,
	forSpan source.Span,
	span source.Span,
) ItemID {
	attrStart, attrCount := i.allocateAttrs(attrs)

	var membersStart ImplMemberID
	memberCount, err := safecast.Conv[uint32](len(members))
	if err != nil {
		panic(fmt.Errorf("impl members count overflow: %w", err))
	}
	if memberCount > 0 {
		for idx, spec := range members {
			record := ImplMember(spec)
			memberID := ImplMemberID(i.ImplMembers.Allocate(record))
			if idx == 0 {
				membersStart = memberID
			}
		}
	}

	implPayload := i.Impls.Allocate(ImplBlock{
		Trait:           trait,
		Target:          target,
		AttrStart:       attrStart,
		AttrCount:       attrCount,
		MembersStart:    membersStart,
		MembersCount:    memberCount,
		ImplKeywordSpan: implKeywordSpan,
		ForSpan:         forSpan,
		Span:            span,
	})

	return i.New(ItemImpl, span, PayloadID(implPayload))
}

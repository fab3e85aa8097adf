package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindNothing
	KindBool
	KindString
	KindInt
	KindUint
	KindFloat
	KindArray
	KindPointer
	KindReference
	KindOwn
	// KindStruct, KindAlias, KindUnion, KindEnum, KindFn, KindConst, and
	// KindGenericParam back the nominal/parametric registries in nominal.go,
	// union.go, enum.go, fn.go, and params.go; they index into Interner's
	// side tables (in.structs, in.aliases, ...) via Type.Payload.
	KindStruct
	KindAlias
	KindUnion
	KindEnum
	KindFn
	KindConst
	KindGenericParam
	KindTuple
	// KindStrongPtr is a reference-counted strong pointer, StrongPtr<T>.
	KindStrongPtr
	// KindWeakPtr is a non-owning weak pointer, WeakPtr<T>, that must be
	// upgraded through a strong pointer before the pointee can be accessed.
	KindWeakPtr
	// KindDynStrongPtr is a strong pointer to a trait object, dyn Trait,
	// carrying a vtable alongside the reference-counted payload.
	KindDynStrongPtr
	// KindTrait identifies a trait itself, used as the Elem of a
	// KindDynStrongPtr and to validate dyn-dispatch eligibility.
	KindTrait
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindNothing:
		return "nothing"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindArray:
		return "array"
	case KindPointer:
		return "pointer"
	case KindReference:
		return "reference"
	case KindOwn:
		return "own"
	case KindStruct:
		return "struct"
	case KindAlias:
		return "alias"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindFn:
		return "fn"
	case KindConst:
		return "const"
	case KindGenericParam:
		return "generic_param"
	case KindTuple:
		return "tuple"
	case KindStrongPtr:
		return "strong_ptr"
	case KindWeakPtr:
		return "weak_ptr"
	case KindDynStrongPtr:
		return "dyn_strong_ptr"
	case KindTrait:
		return "trait"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// ArrayDynamicLength marks slices with unknown compile-time length.
const ArrayDynamicLength = ^uint32(0)

// TypeFlags encode misc per-type booleans that don't warrant their own Kind.
type TypeFlags uint8

const (
	// FlagCopyTrivial marks a type whose copy glue is a no-op bitwise copy
	// (no ref-count bump, no user copy constructor to invoke).
	FlagCopyTrivial TypeFlags = 1 << iota
	// FlagDropTrivial marks a type whose drop glue is a no-op (no ref-count
	// decrement, no user destructor to invoke, no owned fields to recurse into).
	FlagDropTrivial
)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32 // for arrays (ArrayDynamicLength means slice)
	Width   Width  // for numeric primitives
	Mutable bool   // for references
	// Payload indexes a side table (in.structs, in.aliases, in.unions,
	// in.enums, in.fns, in.params) for kinds whose metadata doesn't fit
	// inline; 0 means "no side-table entry".
	Payload uint32
	Flags   TypeFlags
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width (WidthAny for "int").
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeArray describes an array/slice of element type. Use ArrayDynamicLength
// for open-ended slices (T[]).
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakePointer describes a raw pointer.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}

// MakeReference describes &T or &mut T depending on the mutable flag.
func MakeReference(elem TypeID, mutable bool) Type {
	return Type{Kind: KindReference, Elem: elem, Mutable: mutable}
}

// MakeOwn describes own T.
func MakeOwn(elem TypeID) Type {
	return Type{Kind: KindOwn, Elem: elem}
}

// MakeStrongPtr describes StrongPtr<T>, a reference-counted owning pointer.
func MakeStrongPtr(elem TypeID) Type {
	return Type{Kind: KindStrongPtr, Elem: elem}
}

// MakeWeakPtr describes WeakPtr<T>, a non-owning observer of a StrongPtr<T>.
func MakeWeakPtr(elem TypeID) Type {
	return Type{Kind: KindWeakPtr, Elem: elem}
}

// MakeDynStrongPtr describes a strong pointer to a dyn Trait object. elem
// must resolve (via Lookup) to a KindTrait type.
func MakeDynStrongPtr(traitElem TypeID) Type {
	return Type{Kind: KindDynStrongPtr, Elem: traitElem}
}

// HasFlag reports whether all bits in want are set on the type.
func (t Type) HasFlag(want TypeFlags) bool {
	return t.Flags&want == want
}

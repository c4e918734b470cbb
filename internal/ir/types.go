package ir

import "fmt"

// AddressSpace tags pointer types with the memory region they refer to.
// Loads and stores are only well-formed when the instruction's space matches
// the space of the pointer they operate through.
type AddressSpace uint8

const (
	SpaceTransient AddressSpace = 0 // mutable, call-scoped scratch memory
	SpaceCalldata  AddressSpace = 1 // immutable input data
	SpaceCode      AddressSpace = 2 // immutable contract code
)

// Mutable reports whether the region can be written during execution.
func (s AddressSpace) Mutable() bool {
	return s == SpaceTransient
}

func (s AddressSpace) String() string {
	switch s {
	case SpaceTransient:
		return "transient"
	case SpaceCalldata:
		return "calldata"
	case SpaceCode:
		return "code"
	default:
		return fmt.Sprintf("space%d", uint8(s))
	}
}

// TypeKind discriminates the closed set of IR types.
type TypeKind uint8

const (
	KindInvalid TypeKind = iota
	KindInt
	KindBool
	KindPtr
)

// Type is a structural type: two types are equal exactly when their kind,
// width, and address space agree. The zero value is the invalid type, which
// the validator reports wherever an access tries to use it.
type Type struct {
	Kind  TypeKind
	Bits  uint16       // integer width, meaningful for KindInt
	Space AddressSpace // meaningful for KindPtr
}

var validWidths = [...]uint16{1, 8, 16, 32, 64, 128, 256}

// Integer returns the integer type of the given bit width.
func Integer(bits uint16) Type {
	return Type{Kind: KindInt, Bits: bits}
}

// Boolean returns the boolean type.
func Boolean() Type {
	return Type{Kind: KindBool}
}

// Pointer returns a pointer type tagged with an address space.
func Pointer(space AddressSpace) Type {
	return Type{Kind: KindPtr, Space: space}
}

// Address is the conventional name for a 160-bit integer.
func Address() Type {
	return Integer(160)
}

// Bytes returns the integer type covering n bytes (the bytesN convention).
func Bytes(n uint16) Type {
	return Integer(8 * n)
}

// Valid reports whether the type is well-formed: a known kind and, for
// integers, a supported width. Address (u160) is allowed as a naming
// convention on top of the regular width set.
func (t Type) Valid() bool {
	switch t.Kind {
	case KindBool, KindPtr:
		return true
	case KindInt:
		if t.Bits == 160 {
			return true
		}
		for _, w := range validWidths {
			if t.Bits == w {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// IsInt reports whether t is an integer type.
func (t Type) IsInt() bool { return t.Kind == KindInt }

// IsBool reports whether t is the boolean type.
func (t Type) IsBool() bool { return t.Kind == KindBool }

// IsPtr reports whether t is a pointer type.
func (t Type) IsPtr() bool { return t.Kind == KindPtr }

// SizeBytes returns the byte footprint of the type, or 0 when the type has
// no defined size. Integers round up to whole bytes.
func (t Type) SizeBytes() int {
	switch t.Kind {
	case KindInt:
		return (int(t.Bits) + 7) / 8
	case KindBool:
		return 1
	case KindPtr:
		return 32
	default:
		return 0
	}
}

// Sized reports whether the type has a defined size.
func (t Type) Sized() bool {
	return t.SizeBytes() > 0
}

// String renders the canonical spelling used by the text format.
func (t Type) String() string {
	switch t.Kind {
	case KindInt:
		return fmt.Sprintf("u%d", t.Bits)
	case KindBool:
		return "bool"
	case KindPtr:
		return fmt.Sprintf("ptr<%s>", t.Space)
	default:
		return "invalid"
	}
}

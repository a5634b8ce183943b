// Package field details the kinds of fields a packed struct can hold and the sizes derived
// from a field's bit width.
package field

import (
	"fmt"

	"github.com/bearlytools/bitfield/errors"
)

const (
	// MinBits is the smallest width a field can have.
	MinBits = 1
	// MaxBits is the largest width a field can have. Values are held in a uint64.
	MaxBits = 64
)

// Kind represents how the bits of a field are interpreted.
type Kind uint8

const (
	KUnknown  Kind = 0 // Unknown
	KUint     Kind = 1 // uint
	KBool     Kind = 2 // bool
	KEnum     Kind = 3 // enum
	KReserved Kind = 4 // reserved
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KUint:
		return "uint"
	case KBool:
		return "bool"
	case KEnum:
		return "enum"
	case KReserved:
		return "reserved"
	}
	return "Unknown"
}

// Kinds is every valid Kind.
var Kinds = []Kind{KUint, KBool, KEnum, KReserved}

// ParseKind is the inverse of Kind.String().
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return KUnknown, errors.New(errors.PhaseSchema, errors.KindInvalidData).
		Value(s).
		Detail("unknown field kind %q", s).
		Build()
}

// ValidBits reports if bits is an allowed field width.
func ValidBits(bits uint8) bool {
	return bits >= MinBits && bits <= MaxBits
}

// ContainerBits is the size, in bits, of the smallest unsigned integer (8, 16, 32 or 64) that
// can hold a value of the given width. It panics if bits is not valid.
func ContainerBits(bits uint8) uint8 {
	switch {
	case bits == 0:
	case bits <= 8:
		return 8
	case bits <= 16:
		return 16
	case bits <= 32:
		return 32
	case bits <= 64:
		return 64
	}
	panic(fmt.Sprintf("field width %d is outside [%d, %d]", bits, MinBits, MaxBits))
}

// Chunks is the number of bytes a value of the given width touches once it is broken into
// 8 bit pieces, aka ceil(bits/8).
func Chunks(bits uint8) int {
	return (int(bits) + 7) / 8
}

// MaxValue is the largest value that fits in the given width.
func MaxValue(bits uint8) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<bits - 1
}

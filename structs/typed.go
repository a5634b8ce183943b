package structs

import (
	"unsafe"

	"github.com/bearlytools/bitfield/codec"
	"github.com/bearlytools/bitfield/enums"
	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/field"
	"github.com/bearlytools/bitfield/mapping"
	"golang.org/x/exp/constraints"
)

// UintField is a handle to an unsigned integer field with its offset resolved up front.
// Hand-written accessors for a struct hold one per field.
type UintField[U constraints.Unsigned] struct {
	offset uint64
	bits   uint8
	index  int
}

// NewUintField resolves the field called name in m. U must be able to hold every value of
// the field.
func NewUintField[U constraints.Unsigned](m *mapping.Map, name string) (UintField[U], error) {
	f, err := resolve(m, name, field.KUint)
	if err != nil {
		return UintField[U]{}, err
	}
	if err := checkContainer[U](m, f); err != nil {
		return UintField[U]{}, err
	}
	return UintField[U]{offset: f.Offset, bits: f.Bits, index: f.Index}, nil
}

// MustUintField is NewUintField, but panics on error.
func MustUintField[U constraints.Unsigned](m *mapping.Map, name string) UintField[U] {
	h, err := NewUintField[U](m, name)
	if err != nil {
		panic(err)
	}
	return h
}

// Index is the position of the field in its Map.
func (h UintField[U]) Index() int {
	return h.index
}

// Get reads the field.
func (h UintField[U]) Get(s *Struct) U {
	return codec.GetAs[U](s.data, h.offset, h.bits)
}

// Set writes v. Bits of v above the field's width are dropped.
func (h UintField[U]) Set(s *Struct, v U) {
	codec.SetAs(s.data, h.offset, h.bits, v)
}

// SetChecked writes v, or returns an Overflow error if v does not fit.
func (h UintField[U]) SetChecked(s *Struct, v U) error {
	if !codec.Fits(uint64(v), h.bits) {
		return errors.Overflow([]string{s.mapping.Name, s.mapping.Field(h.index).Name}, uint64(v), h.bits)
	}
	h.Set(s, v)
	return nil
}

// BoolField is a handle to a bool field.
type BoolField struct {
	offset uint64
	index  int
}

// NewBoolField resolves the bool field called name in m.
func NewBoolField(m *mapping.Map, name string) (BoolField, error) {
	f, err := resolve(m, name, field.KBool)
	if err != nil {
		return BoolField{}, err
	}
	return BoolField{offset: f.Offset, index: f.Index}, nil
}

// MustBoolField is NewBoolField, but panics on error.
func MustBoolField(m *mapping.Map, name string) BoolField {
	h, err := NewBoolField(m, name)
	if err != nil {
		panic(err)
	}
	return h
}

// Index is the position of the field in its Map.
func (h BoolField) Index() int {
	return h.index
}

// Get reads the field.
func (h BoolField) Get(s *Struct) bool {
	return codec.GetBool(s.data, h.offset)
}

// Set writes the field.
func (h BoolField) Set(s *Struct, v bool) {
	codec.SetBool(s.data, h.offset, v)
}

// EnumField is a handle to an enum field read and written as the Go type E.
type EnumField[E ~uint8 | ~uint16] struct {
	typed  enums.Typed[E]
	offset uint64
	index  int
}

// NewEnumField resolves the enum field called name in m and binds its Group to E.
func NewEnumField[E ~uint8 | ~uint16](m *mapping.Map, name string) (EnumField[E], error) {
	f, err := resolve(m, name, field.KEnum)
	if err != nil {
		return EnumField[E]{}, err
	}
	t, err := enums.Bind[E](f.Enum)
	if err != nil {
		return EnumField[E]{}, withPath(err, m.Name, f.Name)
	}
	return EnumField[E]{typed: t, offset: f.Offset, index: f.Index}, nil
}

// MustEnumField is NewEnumField, but panics on error.
func MustEnumField[E ~uint8 | ~uint16](m *mapping.Map, name string) EnumField[E] {
	h, err := NewEnumField[E](m, name)
	if err != nil {
		panic(err)
	}
	return h
}

// Index is the position of the field in its Map.
func (h EnumField[E]) Index() int {
	return h.index
}

// Get reads the field. The error is a DiscriminantOutOfRange if the bits do not name a variant.
func (h EnumField[E]) Get(s *Struct) (E, error) {
	return h.typed.Decode(s.data, h.offset)
}

// Set writes e, which must be a declared value of the field's enum.
func (h EnumField[E]) Set(s *Struct, e E) error {
	return h.typed.Encode(s.data, h.offset, e)
}

// Name returns the variant name of e.
func (h EnumField[E]) Name(e E) string {
	return h.typed.Name(e)
}

func resolve(m *mapping.Map, name string, want field.Kind) (*mapping.FieldDescr, error) {
	f, ok := m.ByName(name)
	if !ok {
		return nil, errors.FieldUnknown([]string{m.Name}, name)
	}
	if f.Kind != want {
		return nil, errors.TypeMismatch([]string{m.Name, f.Name}, f.Kind, want)
	}
	return f, nil
}

func checkContainer[U constraints.Unsigned](m *mapping.Map, f *mapping.FieldDescr) error {
	var u U
	if size := unsafe.Sizeof(u) * 8; uintptr(f.Bits) > size {
		return errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
			Path(m.Name, f.Name).
			Detail("a %d bit type cannot hold a %d bit field", size, f.Bits).
			Build()
	}
	return nil
}

// Package structs holds instances of packed structs. A Struct owns a fixed size byte buffer
// laid out by a *mapping.Map and reads or writes its fields in place.
//
// A Struct has no internal locking. Concurrent reads are fine, but a write must not overlap
// any other access to the same Struct.
package structs

import (
	"bytes"
	"fmt"

	"github.com/bearlytools/bitfield/codec"
	"github.com/bearlytools/bitfield/enums"
	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/field"
	"github.com/bearlytools/bitfield/mapping"
	"golang.org/x/exp/constraints"
)

// Struct is an instance of a packed struct.
type Struct struct {
	mapping *mapping.Map
	data    []byte
}

// New creates a zeroed instance of the struct described by m.
func New(m *mapping.Map) *Struct {
	return &Struct{mapping: m, data: make([]byte, m.TotalBytes)}
}

// FromBytes creates an instance of m from a copy of b. len(b) must be m.TotalBytes.
// Every enum field is decoded so that a discriminant outside of its enum is found here
// instead of at first access.
func FromBytes(m *mapping.Map, b []byte) (*Struct, error) {
	if len(b) != m.TotalBytes {
		return nil, errors.BufferSize(errors.PhaseDecode, []string{m.Name}, len(b), m.TotalBytes)
	}
	s := &Struct{mapping: m, data: bytes.Clone(b)}
	if s.data == nil {
		s.data = []byte{}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Wrap returns a Struct that uses b as its backing buffer without copying it. Changes made
// through either one are visible in the other. len(b) must be m.TotalBytes. Unlike FromBytes,
// enum fields are not checked until they are read.
func Wrap(m *mapping.Map, b []byte) (*Struct, error) {
	if len(b) != m.TotalBytes {
		return nil, errors.BufferSize(errors.PhaseDecode, []string{m.Name}, len(b), m.TotalBytes)
	}
	return &Struct{mapping: m, data: b}, nil
}

// Validate checks every enum field holds a declared discriminant.
func (s *Struct) Validate() error {
	return ValidateBytes(s.mapping, s.data)
}

// ValidateBytes checks every enum field of the m instance in b. b must be at least
// m.TotalBytes long.
func ValidateBytes(m *mapping.Map, b []byte) error {
	for _, f := range m.All() {
		if f.Kind != field.KEnum {
			continue
		}
		if err := f.Enum.CheckDecoded(codec.Get(b, f.Offset, f.Bits)); err != nil {
			return withPath(err, m.Name, f.Name)
		}
	}
	return nil
}

// Map returns the schema of the struct.
func (s *Struct) Map() *mapping.Map {
	return s.mapping
}

// Bytes returns a copy of the backing buffer.
func (s *Struct) Bytes() []byte {
	return bytes.Clone(s.data)
}

// Unsafe returns the backing buffer itself. Writes to it change the Struct and skip every check.
func (s *Struct) Unsafe() []byte {
	return s.data
}

// Reset zeroes every field.
func (s *Struct) Reset() {
	clear(s.data)
}

// Clone returns a deep copy of s.
func (s *Struct) Clone() *Struct {
	return &Struct{mapping: s.mapping, data: bytes.Clone(s.data)}
}

// Equal reports whether o has the same layout and the same bytes.
func (s *Struct) Equal(o *Struct) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.mapping != o.mapping && s.mapping.Fingerprint() != o.mapping.Fingerprint() {
		return false
	}
	return bytes.Equal(s.data, o.data)
}

// CheckReserved returns an error if any reserved field has a bit set.
func (s *Struct) CheckReserved() error {
	for _, f := range s.mapping.All() {
		if f.Kind != field.KReserved {
			continue
		}
		if v := codec.Get(s.data, f.Offset, f.Bits); v != 0 {
			return errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Path(s.mapping.Name, f.Name).
				Value(v).
				Detail("reserved bits are not zero").
				Build()
		}
	}
	return nil
}

// String renders the struct as name{field: value, ...}.
func (s *Struct) String() string {
	var b bytes.Buffer
	b.WriteString(s.mapping.Name)
	b.WriteByte('{')
	for i, f := range s.mapping.All() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		switch f.Kind {
		case field.KBool:
			fmt.Fprint(&b, codec.GetBool(s.data, f.Offset))
		case field.KEnum:
			v, err := f.Enum.Decode(s.data, f.Offset)
			if err != nil {
				fmt.Fprintf(&b, "!%d", codec.Get(s.data, f.Offset, f.Bits))
				continue
			}
			b.WriteString(v.Name)
		default:
			fmt.Fprint(&b, codec.Get(s.data, f.Offset, f.Bits))
		}
	}
	b.WriteByte('}')
	return b.String()
}

// Uint gets the value of the unsigned integer field called name. Reserved fields can be read
// with Uint.
func (s *Struct) Uint(name string) (uint64, error) {
	f, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	return s.getUint(f)
}

// UintAt is Uint for the field at index i.
func (s *Struct) UintAt(i int) (uint64, error) {
	f, err := s.at(i)
	if err != nil {
		return 0, err
	}
	return s.getUint(f)
}

func (s *Struct) getUint(f *mapping.FieldDescr) (uint64, error) {
	if f.Kind != field.KUint && f.Kind != field.KReserved {
		return 0, s.typeMismatch(f, field.KUint)
	}
	return codec.Get(s.data, f.Offset, f.Bits), nil
}

// SetUint sets the unsigned integer field called name to v. v must fit in the field's width.
func (s *Struct) SetUint(name string, v uint64) error {
	f, err := s.lookup(name)
	if err != nil {
		return err
	}
	return s.setUint(f, v)
}

// SetUintAt is SetUint for the field at index i.
func (s *Struct) SetUintAt(i int, v uint64) error {
	f, err := s.at(i)
	if err != nil {
		return err
	}
	return s.setUint(f, v)
}

func (s *Struct) setUint(f *mapping.FieldDescr, v uint64) error {
	if f.Kind != field.KUint {
		return s.typeMismatch(f, field.KUint)
	}
	if !codec.Fits(v, f.Bits) {
		return errors.Overflow([]string{s.mapping.Name, f.Name}, v, f.Bits)
	}
	codec.Set(s.data, f.Offset, f.Bits, v)
	return nil
}

// Bool gets the value of the bool field called name.
func (s *Struct) Bool(name string) (bool, error) {
	f, err := s.lookup(name)
	if err != nil {
		return false, err
	}
	return s.getBool(f)
}

// BoolAt is Bool for the field at index i.
func (s *Struct) BoolAt(i int) (bool, error) {
	f, err := s.at(i)
	if err != nil {
		return false, err
	}
	return s.getBool(f)
}

func (s *Struct) getBool(f *mapping.FieldDescr) (bool, error) {
	if f.Kind != field.KBool {
		return false, s.typeMismatch(f, field.KBool)
	}
	return codec.GetBool(s.data, f.Offset), nil
}

// SetBool sets the bool field called name.
func (s *Struct) SetBool(name string, v bool) error {
	f, err := s.lookup(name)
	if err != nil {
		return err
	}
	return s.setBool(f, v)
}

// SetBoolAt is SetBool for the field at index i.
func (s *Struct) SetBoolAt(i int, v bool) error {
	f, err := s.at(i)
	if err != nil {
		return err
	}
	return s.setBool(f, v)
}

func (s *Struct) setBool(f *mapping.FieldDescr, v bool) error {
	if f.Kind != field.KBool {
		return s.typeMismatch(f, field.KBool)
	}
	codec.SetBool(s.data, f.Offset, v)
	return nil
}

// Enum gets the variant held in the enum field called name.
func (s *Struct) Enum(name string) (enums.Variant, error) {
	f, err := s.lookup(name)
	if err != nil {
		return enums.Variant{}, err
	}
	return s.getEnum(f)
}

// EnumAt is Enum for the field at index i.
func (s *Struct) EnumAt(i int) (enums.Variant, error) {
	f, err := s.at(i)
	if err != nil {
		return enums.Variant{}, err
	}
	return s.getEnum(f)
}

func (s *Struct) getEnum(f *mapping.FieldDescr) (enums.Variant, error) {
	if f.Kind != field.KEnum {
		return enums.Variant{}, s.typeMismatch(f, field.KEnum)
	}
	v, err := f.Enum.Decode(s.data, f.Offset)
	if err != nil {
		return enums.Variant{}, withPath(err, s.mapping.Name, f.Name)
	}
	return v, nil
}

// SetEnum sets the enum field called name to v, which must be a variant of the field's Group.
func (s *Struct) SetEnum(name string, v enums.Variant) error {
	f, err := s.lookup(name)
	if err != nil {
		return err
	}
	return s.setEnum(f, v)
}

// SetEnumName sets the enum field called name to the variant called variant.
func (s *Struct) SetEnumName(name, variant string) error {
	f, err := s.lookup(name)
	if err != nil {
		return err
	}
	if f.Kind != field.KEnum {
		return s.typeMismatch(f, field.KEnum)
	}
	v, ok := f.Enum.ByName(variant)
	if !ok {
		return errors.New(errors.PhaseAccess, errors.KindUnknownVariant).
			Path(s.mapping.Name, f.Name, variant).
			Detail("enum %s has no such variant", f.Enum.Name()).
			Build()
	}
	return s.setEnum(f, v)
}

// SetEnumAt is SetEnum for the field at index i.
func (s *Struct) SetEnumAt(i int, v enums.Variant) error {
	f, err := s.at(i)
	if err != nil {
		return err
	}
	return s.setEnum(f, v)
}

func (s *Struct) setEnum(f *mapping.FieldDescr, v enums.Variant) error {
	if f.Kind != field.KEnum {
		return s.typeMismatch(f, field.KEnum)
	}
	if err := f.Enum.Encode(s.data, f.Offset, v); err != nil {
		return withPath(err, s.mapping.Name, f.Name)
	}
	return nil
}

// GetUint gets the unsigned integer field at index i as a U. U must be at least as wide as
// the field.
func GetUint[U constraints.Unsigned](s *Struct, i int) (U, error) {
	f, err := s.at(i)
	if err != nil {
		return 0, err
	}
	if err := checkContainer[U](s.mapping, f); err != nil {
		return 0, err
	}
	v, err := s.getUint(f)
	return U(v), err
}

// MustGetUint is GetUint, but panics on error.
func MustGetUint[U constraints.Unsigned](s *Struct, i int) U {
	v, err := GetUint[U](s, i)
	if err != nil {
		panic(err)
	}
	return v
}

// SetUint sets the unsigned integer field at index i.
func SetUint[U constraints.Unsigned](s *Struct, i int, v U) error {
	return s.SetUintAt(i, uint64(v))
}

// MustSetUint is SetUint, but panics on error.
func MustSetUint[U constraints.Unsigned](s *Struct, i int, v U) {
	if err := SetUint(s, i, v); err != nil {
		panic(err)
	}
}

func (s *Struct) lookup(name string) (*mapping.FieldDescr, error) {
	f, ok := s.mapping.ByName(name)
	if !ok {
		return nil, errors.FieldUnknown([]string{s.mapping.Name}, name)
	}
	return f, nil
}

func (s *Struct) at(i int) (*mapping.FieldDescr, error) {
	if i < 0 || i >= s.mapping.Len() {
		return nil, errors.FieldUnknown([]string{s.mapping.Name}, fmt.Sprintf("[%d]", i))
	}
	return s.mapping.Field(i), nil
}

func (s *Struct) typeMismatch(f *mapping.FieldDescr, want field.Kind) error {
	return errors.TypeMismatch([]string{s.mapping.Name, f.Name}, f.Kind, want)
}

// withPath prefixes the path of a structured error with the struct and field names.
func withPath(err error, path ...string) error {
	var e *errors.Error
	if !errors.As(err, &e) {
		return err
	}
	c := *e
	c.Path = append(append([]string{}, path...), e.Path...)
	return &c
}

// Package mapping holds the schema of a packed struct: the ordered descriptions of its fields
// and the byte layout derived from them. A Map is built once per struct type, validated
// eagerly, and then shared read-only by every instance of that type.
package mapping

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/bearlytools/bitfield/enums"
	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/field"
	"github.com/bearlytools/bitfield/layout"
	"github.com/cespare/xxhash/v2"
)

// FieldDescr describes a field.
type FieldDescr struct {
	// Name is the name of the field, unique within the Map.
	Name string
	// Index is the position of the field in the Map, starting at 0.
	Index int
	// Kind is how the field's bits are interpreted.
	Kind field.Kind
	// Bits is the width of the field.
	Bits uint8
	// Offset is the bit the field starts at in the backing buffer.
	Offset uint64
	// Enum is set when Kind == field.KEnum.
	Enum *enums.Group
}

// Span returns the [start, end) bits the field occupies.
func (f *FieldDescr) Span() (start, end uint64) {
	return f.Offset, f.Offset + uint64(f.Bits)
}

// ContainerBits is the size of the unsigned integer that holds the field's value.
func (f *FieldDescr) ContainerBits() uint8 {
	return field.ContainerBits(f.Bits)
}

// Validate checks that the Kind, Bits and Enum of the field agree with each other. A width
// outside [field.MinBits, field.MaxBits] matches errors.ErrInvalidWidth.
func (f *FieldDescr) Validate() error {
	if f.Name == "" {
		return errors.New(errors.PhaseSchema, errors.KindInvalidData).
			Path(fmt.Sprintf("[%d]", f.Index)).
			Detail("field has no name").
			Build()
	}
	if !field.ValidBits(f.Bits) {
		return errors.New(errors.PhaseLayout, errors.KindInvalidWidth).
			Path(f.Name).
			Value(f.Bits).
			Detail("width %d is outside [%d, %d]", f.Bits, field.MinBits, field.MaxBits).
			Build()
	}

	switch f.Kind {
	case field.KUint, field.KReserved:
	case field.KBool:
		if f.Bits != 1 {
			return f.widthMismatch(1)
		}
	case field.KEnum:
		if f.Enum == nil {
			return errors.New(errors.PhaseSchema, errors.KindInvalidData).
				Path(f.Name).
				Detail("kind was %v, but had Enum == nil", f.Kind).
				Build()
		}
		if f.Bits != f.Enum.Bits() {
			return f.widthMismatch(f.Enum.Bits())
		}
	default:
		return errors.New(errors.PhaseSchema, errors.KindInvalidData).
			Path(f.Name).
			Value(f.Kind).
			Detail("unknown field kind %d", uint8(f.Kind)).
			Build()
	}
	if f.Kind != field.KEnum && f.Enum != nil {
		return errors.New(errors.PhaseSchema, errors.KindInvalidData).
			Path(f.Name).
			Detail("kind was %v, but had an Enum", f.Kind).
			Build()
	}
	return nil
}

func (f *FieldDescr) widthMismatch(want uint8) error {
	return errors.New(errors.PhaseSchema, errors.KindWidthMismatch).
		Path(f.Name).
		Value(f.Bits).
		Detail("%v field is declared with %d bits, but must be %d", f.Kind, f.Bits, want).
		Build()
}

// Map is the schema of a packed struct. Create one with a Builder. A Map and the FieldDescrs
// it hands out are shared by every Struct of that type and must not be modified.
type Map struct {
	// Name of the struct.
	Name string
	// TotalBytes is the size of the backing buffer of an instance.
	TotalBytes int

	fields      []*FieldDescr
	plan        layout.Plan
	byName      map[string]int
	fingerprint uint64
}

// Len is the number of fields.
func (m *Map) Len() int {
	return len(m.fields)
}

// Field returns the ith field. It panics if out of bounds.
func (m *Map) Field(i int) *FieldDescr {
	return m.fields[i]
}

// All yields the fields in declaration order with their index.
func (m *Map) All() iter.Seq2[int, *FieldDescr] {
	return func(yield func(int, *FieldDescr) bool) {
		for i, f := range m.fields {
			if !yield(i, f) {
				return
			}
		}
	}
}

// ByName retrieves the FieldDescr by name.
func (m *Map) ByName(name string) (*FieldDescr, bool) {
	i, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.fields[i], true
}

// MustByName is ByName, but panics if the field does not exist.
func (m *Map) MustByName(name string) *FieldDescr {
	f, ok := m.ByName(name)
	if !ok {
		panic(fmt.Sprintf("could not find name %q in %s", name, m.Name))
	}
	return f
}

// Plan returns the layout the field offsets were computed from.
func (m *Map) Plan() layout.Plan {
	return m.plan
}

// Fingerprint is a 64 bit hash of the byte layout: every field's name, kind, width and offset
// and the variants of every enum. Maps with the same Fingerprint lay out their bytes the same
// way. The Map's own Name is not part of it.
func (m *Map) Fingerprint() uint64 {
	return m.fingerprint
}

func fingerprint(fields []*FieldDescr) uint64 {
	d := xxhash.New()
	for _, f := range fields {
		d.WriteString(f.Name)
		d.WriteString("\x00")
		d.WriteString(f.Kind.String())
		d.WriteString("\x00")
		d.WriteString(strconv.FormatUint(uint64(f.Bits), 10))
		d.WriteString("@")
		d.WriteString(strconv.FormatUint(f.Offset, 10))
		if f.Enum != nil {
			d.WriteString("{")
			d.WriteString(f.Enum.Name())
			for _, v := range f.Enum.Variants() {
				d.WriteString(",")
				d.WriteString(v.Name)
				d.WriteString("=")
				d.WriteString(strconv.FormatUint(uint64(v.Value), 10))
			}
			d.WriteString("}")
		}
		d.WriteString(";")
	}
	return d.Sum64()
}

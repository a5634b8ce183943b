package enums

import (
	"unsafe"

	"github.com/bearlytools/bitfield/errors"
)

// Typed binds a Go enumerated type to a Group, so that hand-written accessors can read and
// write their own type instead of a Variant.
//
//	type TriggerMode uint8
//
//	const (
//		Edge TriggerMode = iota
//		Level
//	)
//
//	var triggerModes = enums.MustBind[TriggerMode](enums.MustNew("TriggerMode", enums.Sequential("Edge", "Level")))
type Typed[E ~uint8 | ~uint16] struct {
	g *Group
}

// Bind returns a Typed for g. E must be large enough to hold every discriminant of g.
func Bind[E ~uint8 | ~uint16](g *Group) (Typed[E], error) {
	var e E
	if int(unsafe.Sizeof(e)) < g.StorageBytes() {
		return Typed[E]{}, errors.New(errors.PhaseSchema, errors.KindWidthMismatch).
			Path(g.Name()).
			Detail("a %d byte type cannot hold %d variants", unsafe.Sizeof(e), g.Len()).
			Build()
	}
	return Typed[E]{g: g}, nil
}

// MustBind is Bind but panics on error.
func MustBind[E ~uint8 | ~uint16](g *Group) Typed[E] {
	t, err := Bind[E](g)
	if err != nil {
		panic(err)
	}
	return t
}

// Group returns the Group t is bound to.
func (t Typed[E]) Group() *Group {
	return t.g
}

// Decode reads the field at offset in buf as an E.
func (t Typed[E]) Decode(buf []byte, offset uint64) (E, error) {
	v, err := t.g.Decode(buf, offset)
	if err != nil {
		return 0, err
	}
	return E(v.Value), nil
}

// Encode writes e into the field at offset in buf. e must be a declared value of the Group.
func (t Typed[E]) Encode(buf []byte, offset uint64, e E) error {
	v, ok := t.g.ByValue(uint16(e))
	if !ok {
		return t.g.unknown(Variant{Value: uint16(e)})
	}
	return t.g.Encode(buf, offset, v)
}

// Name returns the variant name of e, or "" if e is not a declared value.
func (t Typed[E]) Name(e E) string {
	v, ok := t.g.ByValue(uint16(e))
	if !ok {
		return ""
	}
	return v.Name
}

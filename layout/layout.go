// Package layout plans where each field of a packed struct lives. Fields are laid out
// contiguously, earliest declared field at the lowest bit, with no padding. The only
// requirement is that the widths add up to a whole number of bytes.
package layout

import (
	"fmt"

	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/field"
)

// Plan is the computed byte layout for an ordered list of field widths.
type Plan struct {
	// TotalBits is the sum of all field widths.
	TotalBits uint64
	// TotalBytes is TotalBits / 8. This is the size of the backing buffer.
	TotalBytes int
	// Offsets holds the starting bit of each field, which is the sum of the widths before it.
	Offsets []uint64
	// Widths are the field widths the Plan was made from.
	Widths []uint8
}

// New computes the Plan for widths. Every width must be in [1, 64] and the sum of the widths
// must be a multiple of 8. An empty list is a valid, zero byte layout.
func New(widths ...uint8) (Plan, error) {
	p := Plan{
		Offsets: make([]uint64, len(widths)),
		Widths:  make([]uint8, len(widths)),
	}
	copy(p.Widths, widths)

	for i, w := range widths {
		if !field.ValidBits(w) {
			return Plan{}, errors.New(errors.PhaseLayout, errors.KindInvalidWidth).
				Path(fmt.Sprintf("field[%d]", i)).
				Value(w).
				Detail("width %d is outside [%d, %d]", w, field.MinBits, field.MaxBits).
				Build()
		}
		p.Offsets[i] = p.TotalBits
		p.TotalBits += uint64(w)
	}

	if p.TotalBits%8 != 0 {
		return Plan{}, errors.Unaligned(nil, p.TotalBits)
	}
	p.TotalBytes = int(p.TotalBits / 8)

	return p, nil
}

// MustNew is New but panics on error. Use it for package level variables.
func MustNew(widths ...uint8) Plan {
	p, err := New(widths...)
	if err != nil {
		panic(err)
	}
	return p
}

// Len is the number of fields in the Plan.
func (p Plan) Len() int {
	return len(p.Offsets)
}

// Span returns the [start, end) bit range of field i.
func (p Plan) Span(i int) (start, end uint64) {
	return p.Offsets[i], p.Offsets[i] + uint64(p.Widths[i])
}

// Overlaps reports if fields i and j share any bit. Two distinct fields of a valid Plan never
// do, but they may share a byte.
func (p Plan) Overlaps(i, j int) bool {
	si, ei := p.Span(i)
	sj, ej := p.Span(j)
	return si < ej && sj < ei
}

// SharesByte reports if fields i and j touch a common byte. Concurrent writes to fields that
// share a byte race, because a write rewrites the whole byte.
func (p Plan) SharesByte(i, j int) bool {
	si, ei := p.Span(i)
	sj, ej := p.Span(j)
	return si/8 <= (ej-1)/8 && sj/8 <= (ei-1)/8
}

// Package batch stores many instances of one packed struct back to back and moves them
// around as self describing, optionally compressed frames.
//
// Record i of a Records starts at byte i*TotalBytes of its buffer. A frame is a fixed size
// header followed by that buffer, possibly compressed:
//
//	magic u16 | flags u8 | reserved u8 | fingerprint u64 | recordSize u32 | count u32 | payload
//
// flags bit 0 is set when the header words are big-endian and bits 1 to 3 hold the
// compress.Type of the payload.
package batch

import (
	"iter"

	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/mapping"
	"github.com/bearlytools/bitfield/structs"
)

// Records is a contiguous array of instances of one struct. It is not safe for concurrent
// mutation.
type Records struct {
	m    *mapping.Map
	data []byte
	n    int
}

// NewRecords creates an empty Records for m with room for capacity records.
func NewRecords(m *mapping.Map, capacity int) *Records {
	return &Records{m: m, data: make([]byte, 0, capacity*m.TotalBytes)}
}

// Map returns the schema of the records.
func (r *Records) Map() *mapping.Map {
	return r.m
}

// Len is the number of records.
func (r *Records) Len() int {
	return r.n
}

// Bytes returns the backing buffer. It aliases the records.
func (r *Records) Bytes() []byte {
	return r.data
}

// Append copies s to the end of the records. s must have the same layout as the records.
func (r *Records) Append(s *structs.Struct) error {
	if s.Map() != r.m && s.Map().Fingerprint() != r.m.Fingerprint() {
		return errors.New(errors.PhaseEncode, errors.KindSchemaMismatch).
			Path(r.m.Name).
			Detail("cannot append a %s to records of %s", s.Map().Name, r.m.Name).
			Build()
	}
	r.data = append(r.data, s.Unsafe()...)
	r.n++
	return nil
}

// AppendBytes appends one record held in b. Enum fields in b are checked first.
func (r *Records) AppendBytes(b []byte) error {
	if len(b) != r.m.TotalBytes {
		return errors.BufferSize(errors.PhaseEncode, []string{r.m.Name}, len(b), r.m.TotalBytes)
	}
	if err := structs.ValidateBytes(r.m, b); err != nil {
		return err
	}
	r.data = append(r.data, b...)
	r.n++
	return nil
}

// At returns a copy of record i. It panics if i is out of range.
func (r *Records) At(i int) *structs.Struct {
	s, err := structs.FromBytes(r.m, r.record(i))
	if err != nil {
		// Every record was checked when it was added or decoded.
		panic(err)
	}
	return s
}

// View returns record i without copying it. Writes through the returned Struct change the
// records. It panics if i is out of range.
func (r *Records) View(i int) *structs.Struct {
	s, err := structs.Wrap(r.m, r.record(i))
	if err != nil {
		panic(err)
	}
	return s
}

// All iterates over views of every record.
func (r *Records) All() iter.Seq2[int, *structs.Struct] {
	return func(yield func(int, *structs.Struct) bool) {
		for i := 0; i < r.n; i++ {
			if !yield(i, r.View(i)) {
				return
			}
		}
	}
}

// Reset removes every record and keeps the buffer.
func (r *Records) Reset() {
	r.data = r.data[:0]
	r.n = 0
}

func (r *Records) record(i int) []byte {
	if i < 0 || i >= r.n {
		panic("batch: record index out of range")
	}
	size := r.m.TotalBytes
	return r.data[i*size : (i+1)*size : (i+1)*size]
}

// Package enums implements bounded enumerations: enumerated types whose variant count is a
// power of two, so that a field of log2(count) bits can hold exactly every variant and no
// bit pattern is left without a meaning.
//
// A Group is validated once, when it is created. Decoding a Group field from a buffer still
// checks the discriminant it reads, because a buffer handed to us from outside may have been
// produced by something other than this package.
package enums

import (
	"fmt"
	"math/bits"

	"github.com/bearlytools/bitfield/codec"
	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/field"
	"github.com/bearlytools/bitfield/internal/options"
)

// MaxVariants is the largest variant count a Group can have. Discriminants are held in a uint16.
const MaxVariants = 1 << 16

// Variant is one named value of a Group.
type Variant struct {
	// Name is the name of the variant, unique within its Group.
	Name string
	// Value is the discriminant, which must be < the Group's variant count.
	Value uint16
}

// Group is a validated bounded enumeration. It is immutable and safe for concurrent use.
type Group struct {
	name     string
	variants []Variant
	// byValue maps a discriminant to the index of its variant in .variants.
	byValue []int
	byName  map[string]int
	bits    uint8
	storage int
}

type config struct {
	bits    uint8
	hasBits bool
}

// Option is an optional argument to New.
type Option = options.Option[*config]

// WithBits declares the width the Group is expected to have. New fails if the variant count
// does not produce exactly this width. Use this to pin a wire format against an accidental
// change to the number of variants.
func WithBits(n uint8) Option {
	return options.NoError(func(c *config) {
		c.bits = n
		c.hasBits = true
	})
}

// New validates variants and returns a Group. The variant count must be a power of two and at
// least 2, every Value must be less than the count, and names and values must be unique. Those
// rules make the mapping from discriminant to variant a bijection over every bit pattern of the
// field.
func New(name string, variants []Variant, opts ...Option) (*Group, error) {
	cfg := &config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	k := len(variants)
	if k == 0 || k&(k-1) != 0 || k > MaxVariants {
		return nil, errors.New(errors.PhaseSchema, errors.KindVariantCountNotPowerOfTwo).
			Path(name).
			Value(k).
			Detail("enum has %d variants, which is not a power of 2 in [2, %d]", k, MaxVariants).
			Build()
	}
	if k == 1 {
		return nil, errors.New(errors.PhaseLayout, errors.KindInvalidWidth).
			Path(name).
			Value(k).
			Detail("an enum with 1 variant needs 0 bits, fields must be at least %d bit", field.MinBits).
			Build()
	}

	g := &Group{
		name:     name,
		variants: make([]Variant, k),
		byValue:  make([]int, k),
		byName:   make(map[string]int, k),
		bits:     uint8(bits.TrailingZeros(uint(k))),
	}
	copy(g.variants, variants)
	g.storage = storageBytes(k)

	for i := range g.byValue {
		g.byValue[i] = -1
	}

	for i, v := range g.variants {
		if v.Name == "" {
			return nil, errors.New(errors.PhaseSchema, errors.KindInvalidData).
				Path(name, fmt.Sprintf("[%d]", i)).
				Detail("variant has no name").
				Build()
		}
		if int(v.Value) >= k {
			return nil, errors.New(errors.PhaseSchema, errors.KindDiscriminantOutOfDeclaredRange).
				Path(name, v.Name).
				Value(v.Value).
				Detail("declared value %d is not < variant count %d", v.Value, k).
				Build()
		}
		if _, ok := g.byName[v.Name]; ok {
			return nil, errors.New(errors.PhaseSchema, errors.KindDuplicate).
				Path(name, v.Name).
				Detail("variant name declared twice").
				Build()
		}
		if j := g.byValue[v.Value]; j != -1 {
			return nil, errors.New(errors.PhaseSchema, errors.KindDuplicate).
				Path(name, v.Name).
				Value(v.Value).
				Detail("value %d is already used by %s", v.Value, g.variants[j].Name).
				Build()
		}
		g.byName[v.Name] = i
		g.byValue[v.Value] = i
	}

	if cfg.hasBits && cfg.bits != g.bits {
		return nil, errors.New(errors.PhaseSchema, errors.KindWidthMismatch).
			Path(name).
			Value(cfg.bits).
			Detail("declared %d bits, but %d variants need %d bits", cfg.bits, k, g.bits).
			Build()
	}

	return g, nil
}

// MustNew is New but panics on error. Use it for package level variables.
func MustNew(name string, variants []Variant, opts ...Option) *Group {
	g, err := New(name, variants, opts...)
	if err != nil {
		panic(err)
	}
	return g
}

// Sequential returns variants named names with values 0 through len(names)-1.
func Sequential(names ...string) []Variant {
	vs := make([]Variant, len(names))
	for i, n := range names {
		vs[i] = Variant{Name: n, Value: uint16(i)}
	}
	return vs
}

// storageBytes is the size of the native representation of an enum with k variants.
func storageBytes(k int) int {
	if k <= 1<<8 {
		return 1
	}
	return 2
}

// Name is the name of the enum group.
func (g *Group) Name() string {
	return g.name
}

// Len reports the number of variants.
func (g *Group) Len() int {
	return len(g.variants)
}

// Bits is the width of a field holding this enum, log2(Len()).
func (g *Group) Bits() uint8 {
	return g.bits
}

// StorageBytes is the size in bytes of the enum's native representation: 1 for groups with
// up to 256 variants, otherwise 2. This can be larger than the bytes the field spans in a
// buffer.
func (g *Group) StorageBytes() int {
	return g.storage
}

// Variants returns the variants in declaration order.
func (g *Group) Variants() []Variant {
	out := make([]Variant, len(g.variants))
	copy(out, g.variants)
	return out
}

// Get returns the ith declared Variant. It panics if out of bounds.
func (g *Group) Get(i int) Variant {
	return g.variants[i]
}

// ByName returns the Variant named s.
func (g *Group) ByName(s string) (Variant, bool) {
	i, ok := g.byName[s]
	if !ok {
		return Variant{}, false
	}
	return g.variants[i], true
}

// ByValue returns the Variant with discriminant v.
func (g *Group) ByValue(v uint16) (Variant, bool) {
	if int(v) >= len(g.byValue) {
		return Variant{}, false
	}
	return g.variants[g.byValue[v]], true
}

// Contains reports if v is a variant of this Group, both name and value.
func (g *Group) Contains(v Variant) bool {
	i, ok := g.byName[v.Name]
	return ok && g.variants[i].Value == v.Value
}

// Equal reports if g and o have the same name and the same variants in the same order.
func (g *Group) Equal(o *Group) bool {
	if g == o {
		return true
	}
	if g == nil || o == nil || g.name != o.name || len(g.variants) != len(o.variants) {
		return false
	}
	for i := range g.variants {
		if g.variants[i] != o.variants[i] {
			return false
		}
	}
	return true
}

// CheckDecoded returns an error if disc is not the discriminant of some variant.
func (g *Group) CheckDecoded(disc uint64) error {
	if disc >= uint64(len(g.variants)) {
		return errors.DiscriminantOutOfRange([]string{g.name}, disc, len(g.variants))
	}
	return nil
}

// AppendNative appends the native representation of v, StorageBytes() bytes least significant
// first, to dst. v must be a member of the Group.
func (g *Group) AppendNative(dst []byte, v Variant) ([]byte, error) {
	if !g.Contains(v) {
		return dst, g.unknown(v)
	}
	dst = append(dst, byte(v.Value))
	if g.storage == 2 {
		dst = append(dst, byte(v.Value>>8))
	}
	return dst, nil
}

// FromNative converts a native representation back into a Variant. b must be StorageBytes()
// long.
func (g *Group) FromNative(b []byte) (Variant, error) {
	if len(b) != g.storage {
		return Variant{}, errors.BufferSize(errors.PhaseDecode, []string{g.name}, len(b), g.storage)
	}
	disc := uint64(b[0])
	if g.storage == 2 {
		disc |= uint64(b[1]) << 8
	}
	if err := g.CheckDecoded(disc); err != nil {
		return Variant{}, err
	}
	return g.variants[g.byValue[disc]], nil
}

// Decode reads the field at offset in buf. The field spans Bits() bits of buf, which are
// assembled into the enum's native representation and range checked.
func (g *Group) Decode(buf []byte, offset uint64) (Variant, error) {
	var scratch [2]byte
	codec.GetBytes(buf, offset, g.bits, scratch[:])
	return g.FromNative(scratch[:g.storage])
}

// Encode writes v into the field at offset in buf.
func (g *Group) Encode(buf []byte, offset uint64, v Variant) error {
	var scratch [2]byte
	if _, err := g.AppendNative(scratch[:0], v); err != nil {
		return err
	}
	codec.SetBytes(buf, offset, g.bits, scratch[:])
	return nil
}

func (g *Group) unknown(v Variant) error {
	return errors.New(errors.PhaseEncode, errors.KindUnknownVariant).
		Path(g.name, v.Name).
		Value(v.Value).
		Detail("%s(%d) is not a variant of %s", v.Name, v.Value, g.name).
		Build()
}

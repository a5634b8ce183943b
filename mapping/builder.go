package mapping

import (
	"fmt"

	"github.com/bearlytools/bitfield/enums"
	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/field"
	"github.com/bearlytools/bitfield/internal/options"
	"github.com/bearlytools/bitfield/layout"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

type config struct {
	logger *zap.Logger
	bits   uint64
	pinned bool
}

// Option is an optional argument to NewBuilder.
type Option = options.Option[*config]

// WithLogger sets the logger Build reports to. It defaults to Logger().
func WithLogger(l *zap.Logger) Option {
	return options.NoError(func(c *config) {
		c.logger = l
	})
}

// WithTotalBits pins the total width of the struct. Build fails if the fields do not add up
// to exactly n bits.
func WithTotalBits(n uint64) Option {
	return options.NoError(func(c *config) {
		c.bits = n
		c.pinned = true
	})
}

// Builder collects field declarations in order and turns them into a Map.
// A Builder records the first error it sees and reports it from Build.
type Builder struct {
	name   string
	fields []*FieldDescr
	cfg    config
	err    error
}

// NewBuilder starts a Map for the struct called name.
func NewBuilder(name string, opts ...Option) *Builder {
	b := &Builder{name: name}
	if err := options.Apply(&b.cfg, opts...); err != nil {
		b.err = err
	}
	if b.cfg.logger == nil {
		b.cfg.logger = Logger()
	}
	return b
}

// Uint declares an unsigned integer field of the given width.
func (b *Builder) Uint(name string, bits uint8) *Builder {
	return b.add(&FieldDescr{Name: name, Kind: field.KUint, Bits: bits})
}

// Bool declares a 1 bit boolean field.
func (b *Builder) Bool(name string) *Builder {
	return b.add(&FieldDescr{Name: name, Kind: field.KBool, Bits: 1})
}

// Enum declares a field holding a variant of g. Its width is g.Bits().
func (b *Builder) Enum(name string, g *enums.Group) *Builder {
	if g == nil {
		b.setErr(errors.New(errors.PhaseSchema, errors.KindInvalidData).
			Path(b.name, name).
			Detail("enum field has a nil Group").
			Build())
		return b
	}
	return b.add(&FieldDescr{Name: name, Kind: field.KEnum, Bits: g.Bits(), Enum: g})
}

// Reserved declares padding bits. Reserved fields cannot be set through a struct and must
// read as zero.
func (b *Builder) Reserved(name string, bits uint8) *Builder {
	return b.add(&FieldDescr{Name: name, Kind: field.KReserved, Bits: bits})
}

// Field declares a field from a description. Index and Offset are ignored and recomputed.
func (b *Builder) Field(fd FieldDescr) *Builder {
	return b.add(&fd)
}

// WithBits asserts that the field declared last is n bits wide. It pins an enum field's width
// against a change in its variant count.
func (b *Builder) WithBits(n uint8) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.fields) == 0 {
		b.setErr(errors.New(errors.PhaseSchema, errors.KindInvalidData).
			Path(b.name).
			Detail("WithBits(%d) before any field", n).
			Build())
		return b
	}
	last := b.fields[len(b.fields)-1]
	if last.Bits != n {
		b.setErr(errors.New(errors.PhaseSchema, errors.KindWidthMismatch).
			Path(b.name, last.Name).
			Value(last.Bits).
			Detail("field is %d bits, declared %d", last.Bits, n).
			Build())
	}
	return b
}

func (b *Builder) add(fd *FieldDescr) *Builder {
	if b.err != nil {
		return b
	}
	fd.Index = len(b.fields)
	fd.Offset = 0
	b.fields = append(b.fields, fd)
	return b
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build validates the declared fields, plans their offsets and returns the Map.
func (b *Builder) Build() (*Map, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.name == "" {
		return nil, errors.New(errors.PhaseSchema, errors.KindInvalidData).Detail("struct has no name").Build()
	}

	byName := make(map[string]int, len(b.fields))
	widths := make([]uint8, len(b.fields))
	for i, fd := range b.fields {
		if err := fd.Validate(); err != nil {
			return nil, pkgerrors.Wrapf(err, "struct %s", b.name)
		}
		if _, ok := byName[fd.Name]; ok {
			return nil, errors.New(errors.PhaseSchema, errors.KindDuplicate).
				Path(b.name, fd.Name).
				Detail("field %q declared twice", fd.Name).
				Build()
		}
		byName[fd.Name] = i
		widths[i] = fd.Bits
	}

	plan, err := layout.New(widths...)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "struct %s", b.name)
	}
	if b.cfg.pinned && plan.TotalBits != b.cfg.bits {
		return nil, errors.New(errors.PhaseLayout, errors.KindWidthMismatch).
			Path(b.name).
			Value(plan.TotalBits).
			Detail("fields total %d bits, declared %d", plan.TotalBits, b.cfg.bits).
			Build()
	}

	fields := make([]*FieldDescr, len(b.fields))
	for i, fd := range b.fields {
		c := *fd
		c.Offset = plan.Offsets[i]
		fields[i] = &c
	}

	m := &Map{
		Name:       b.name,
		fields:     fields,
		TotalBytes: plan.TotalBytes,
		plan:       plan,
		byName:     byName,
	}
	m.fingerprint = fingerprint(fields)

	b.cfg.logger.Debug(
		"built struct map",
		zap.String("struct", m.Name),
		zap.Int("fields", m.Len()),
		zap.Int("bytes", m.TotalBytes),
		zap.String("fingerprint", fmt.Sprintf("%016x", m.fingerprint)),
	)
	return m, nil
}

// MustBuild is Build, but panics on error. Use it for package level schema variables.
func (b *Builder) MustBuild() *Map {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}

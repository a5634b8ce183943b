package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred.
type Phase string

const (
	PhaseLayout Phase = "layout" // planning field offsets
	PhaseSchema Phase = "schema" // registering fields and enumerations
	PhaseDecode Phase = "decode" // reading values out of a buffer
	PhaseEncode Phase = "encode" // writing values or frames
	PhaseAccess Phase = "access" // named or typed field access on a struct
)

// Kind categorizes the error.
type Kind string

const (
	KindUnaligned                      Kind = "unaligned"
	KindInvalidWidth                   Kind = "invalid_width"
	KindVariantCountNotPowerOfTwo      Kind = "variant_count_not_power_of_two"
	KindDiscriminantOutOfDeclaredRange Kind = "discriminant_out_of_declared_range"
	KindDiscriminantOutOfRange         Kind = "discriminant_out_of_range"
	KindDuplicate                      Kind = "duplicate"
	KindWidthMismatch                  Kind = "width_mismatch"
	KindUnknownVariant                 Kind = "unknown_variant"
	KindFieldUnknown                   Kind = "field_unknown"
	KindTypeMismatch                   Kind = "type_mismatch"
	KindOverflow                       Kind = "overflow"
	KindBufferSize                     Kind = "buffer_size"
	KindSchemaMismatch                 Kind = "schema_mismatch"
	KindInvalidData                    Kind = "invalid_data"
)

// Sentinels for use with Is(). Only Phase and Kind are compared.
var (
	// ErrUnaligned is returned when the sum of a schema's field widths is not a multiple of 8.
	ErrUnaligned = &Error{Phase: PhaseLayout, Kind: KindUnaligned}
	// ErrInvalidWidth is returned when a field width is outside [1, 64], whether the width
	// comes from a layout, a Builder or a 1 variant enum.
	ErrInvalidWidth = &Error{Phase: PhaseLayout, Kind: KindInvalidWidth}
	// ErrVariantCountNotPowerOfTwo is returned when an enumeration's variant count is not a power of 2.
	ErrVariantCountNotPowerOfTwo = &Error{Phase: PhaseSchema, Kind: KindVariantCountNotPowerOfTwo}
	// ErrDiscriminantOutOfDeclaredRange is returned when a declared variant value is >= the variant count.
	ErrDiscriminantOutOfDeclaredRange = &Error{Phase: PhaseSchema, Kind: KindDiscriminantOutOfDeclaredRange}
	// ErrDiscriminantOutOfRange is returned when a decoded enumeration value is >= the variant count.
	ErrDiscriminantOutOfRange = &Error{Phase: PhaseDecode, Kind: KindDiscriminantOutOfRange}
)

// Error is the structured error type used throughout bitfield.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	// Path names the schema, field or variant the error is about, outermost first.
	Path []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Phase and Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the path to the schema element the error is about.
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value.
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	return &b.err
}

// Unaligned creates the error for a layout whose total width is not a whole number of bytes.
func Unaligned(path []string, totalBits uint64) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindUnaligned,
		Path:   path,
		Value:  totalBits,
		Detail: fmt.Sprintf("total width of %d bits is %d bits short of a byte boundary", totalBits, 8-totalBits%8),
	}
}

// DiscriminantOutOfRange creates the error for a decoded enumeration value that has no variant.
func DiscriminantOutOfRange(path []string, disc uint64, count int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindDiscriminantOutOfRange,
		Path:   path,
		Value:  disc,
		Detail: fmt.Sprintf("discriminant %d out of range (variant count %d)", disc, count),
	}
}

// FieldUnknown creates an unknown field error.
func FieldUnknown(path []string, fieldName string) *Error {
	return &Error{
		Phase:  PhaseAccess,
		Kind:   KindFieldUnknown,
		Path:   path,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
	}
}

// TypeMismatch creates the error for accessing a field as the wrong kind.
func TypeMismatch(path []string, have, want fmt.Stringer) *Error {
	return &Error{
		Phase:  PhaseAccess,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("field is %s, not %s", have, want),
	}
}

// Overflow creates the error for a value that does not fit in a field.
func Overflow(path []string, value uint64, bits uint8) *Error {
	return &Error{
		Phase:  PhaseAccess,
		Kind:   KindOverflow,
		Path:   path,
		Value:  value,
		Detail: fmt.Sprintf("value %d does not fit in %d bits", value, bits),
	}
}

// BufferSize creates the error for a buffer whose length does not match what a schema requires.
func BufferSize(phase Phase, path []string, got, want int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBufferSize,
		Path:   path,
		Value:  got,
		Detail: fmt.Sprintf("buffer is %d bytes, expected %d", got, want),
	}
}

// Package errors provides the error types for bitfield. It includes the stdlib's
// functions so callers don't need to import both packages.
//
// Errors are categorized by Phase (where the error was detected) and Kind (what went wrong):
//
//	err := errors.New(errors.PhaseSchema, errors.KindVariantCountNotPowerOfTwo).
//		Path("DeliveryMode").
//		Value(3).
//		Detail("enum has %d variants", 3).
//		Build()
//
// Every *Error matches, with Is(), any other *Error that has the same Phase and Kind. This
// makes the exported sentinels usable as targets:
//
//	if errors.Is(err, errors.ErrUnaligned) {
//		...
//	}
//
// Layout and schema errors are only ever returned while a schema is being built. Decode errors
// are returned from reads of enumeration fields whose stored discriminant is out of range.
package errors

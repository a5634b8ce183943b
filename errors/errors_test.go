package errors

import (
	"fmt"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "unaligned",
			err:      Unaligned([]string{"Header"}, 7),
			contains: []string{"[layout]", "unaligned", "Header", "7 bits", "1 bits short"},
		},
		{
			name: "builder with path and cause",
			err: New(PhaseSchema, KindVariantCountNotPowerOfTwo).
				Path("Entry", "mode").
				Detail("enum has %d variants", 3).
				Cause(fmt.Errorf("root")).
				Build(),
			contains: []string{"[schema]", "variant_count_not_power_of_two", "Entry.mode", "enum has 3 variants", "caused by: root"},
		},
		{
			name:     "minimal",
			err:      &Error{Phase: PhaseDecode, Kind: KindDiscriminantOutOfRange},
			contains: []string{"[decode] discriminant_out_of_range"},
		},
	}

	for _, test := range tests {
		msg := test.err.Error()
		for _, s := range test.contains {
			if !strings.Contains(msg, s) {
				t.Errorf("TestErrorString(%s): %q does not contain %q", test.name, msg, s)
			}
		}
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same sentinel", ErrUnaligned, ErrUnaligned, true},
		{"built matches sentinel", Unaligned(nil, 12), ErrUnaligned, true},
		{"different kind", Unaligned(nil, 12), ErrInvalidWidth, false},
		{"same kind different phase", &Error{Phase: PhaseSchema, Kind: KindUnaligned}, ErrUnaligned, false},
		{"wrapped by pkg/errors", pkgerrors.Wrapf(DiscriminantOutOfRange(nil, 9, 8), "field %q", "mode"), ErrDiscriminantOutOfRange, true},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(PhaseSchema, KindDiscriminantOutOfDeclaredRange).Build()), ErrDiscriminantOutOfDeclaredRange, true},
		{"joined", Join(Plain("x"), ErrVariantCountNotPowerOfTwo), ErrVariantCountNotPowerOfTwo, true},
		{"plain error", Plain("x"), ErrUnaligned, false},
	}

	for _, test := range tests {
		if got := Is(test.err, test.target); got != test.want {
			t.Errorf("TestIs(%s): got %v, want %v", test.name, got, test.want)
		}
	}
}

func TestAsAndUnwrap(t *testing.T) {
	cause := Plain("root cause")
	err := pkgerrors.Wrap(New(PhaseEncode, KindInvalidData).Cause(cause).Value(3).Build(), "encoding frame")

	var e *Error
	if !As(err, &e) {
		t.Fatalf("TestAsAndUnwrap: As() did not find *Error")
	}
	if e.Value != 3 {
		t.Errorf("TestAsAndUnwrap: Value: got %v, want 3", e.Value)
	}
	if Unwrap(e) != cause {
		t.Errorf("TestAsAndUnwrap: Unwrap() did not return the cause")
	}
	if !Is(err, cause) {
		t.Errorf("TestAsAndUnwrap: Is(err, cause) was false")
	}
}

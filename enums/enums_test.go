package enums

import (
	"fmt"
	"testing"

	"github.com/bearlytools/bitfield/errors"
	"github.com/kylelemons/godebug/pretty"
)

var deliveryVariants = []Variant{
	{"Fixed", 0b000},
	{"Lowest", 0b001},
	{"SMI", 0b010},
	{"RemoteRead", 0b011},
	{"NMI", 0b100},
	{"Init", 0b101},
	{"Startup", 0b110},
	{"External", 0b111},
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		desc     string
		variants []Variant
		opts     []Option
		wantErr  error
		wantKind errors.Kind
	}{
		{
			desc:     "3 variants",
			variants: Sequential("A", "B", "C"),
			wantErr:  errors.ErrVariantCountNotPowerOfTwo,
		},
		{
			desc:     "no variants",
			variants: nil,
			wantErr:  errors.ErrVariantCountNotPowerOfTwo,
		},
		{
			desc:     "1 variant",
			variants: Sequential("Only"),
			wantErr:  errors.ErrInvalidWidth,
		},
		{
			desc:     "value out of declared range",
			variants: []Variant{{"A", 0}, {"B", 1}, {"C", 2}, {"D", 4}},
			wantErr:  errors.ErrDiscriminantOutOfDeclaredRange,
		},
		{
			desc:     "duplicate value",
			variants: []Variant{{"A", 0}, {"B", 1}, {"C", 1}, {"D", 3}},
			wantKind: errors.KindDuplicate,
		},
		{
			desc:     "duplicate name",
			variants: []Variant{{"A", 0}, {"A", 1}},
			wantKind: errors.KindDuplicate,
		},
		{
			desc:     "empty name",
			variants: []Variant{{"A", 0}, {"", 1}},
			wantKind: errors.KindInvalidData,
		},
		{
			desc:     "declared bits do not match",
			variants: deliveryVariants,
			opts:     []Option{WithBits(2)},
			wantKind: errors.KindWidthMismatch,
		},
		{
			desc:     "declared bits match",
			variants: deliveryVariants,
			opts:     []Option{WithBits(3)},
		},
	}

	for _, test := range tests {
		_, err := New("Test", test.variants, test.opts...)
		wantFail := test.wantErr != nil || test.wantKind != ""
		switch {
		case wantFail && err == nil:
			t.Errorf("TestNewValidation(%s): got err == nil, want error", test.desc)
			continue
		case !wantFail && err != nil:
			t.Errorf("TestNewValidation(%s): got err == %s, want err == nil", test.desc, err)
			continue
		case !wantFail:
			continue
		}

		if test.wantErr != nil && !errors.Is(err, test.wantErr) {
			t.Errorf("TestNewValidation(%s): got %v, want %v", test.desc, err, test.wantErr)
		}
		if test.wantKind != "" {
			var e *errors.Error
			if !errors.As(err, &e) || e.Kind != test.wantKind {
				t.Errorf("TestNewValidation(%s): got %v, want kind %s", test.desc, err, test.wantKind)
			}
		}
	}
}

func TestBitsAndStorage(t *testing.T) {
	tests := []struct {
		count       int
		wantBits    uint8
		wantStorage int
	}{
		{2, 1, 1},
		{8, 3, 1},
		{256, 8, 1},
		{512, 9, 2},
		{MaxVariants, 16, 2},
	}

	for _, test := range tests {
		names := make([]string, test.count)
		for i := range names {
			names[i] = fmt.Sprintf("V%d", i)
		}
		g, err := New("G", Sequential(names...))
		if err != nil {
			t.Fatalf("TestBitsAndStorage(%d): unexpected error: %s", test.count, err)
		}
		if g.Bits() != test.wantBits {
			t.Errorf("TestBitsAndStorage(%d): Bits(): got %d, want %d", test.count, g.Bits(), test.wantBits)
		}
		if g.StorageBytes() != test.wantStorage {
			t.Errorf("TestBitsAndStorage(%d): StorageBytes(): got %d, want %d", test.count, g.StorageBytes(), test.wantStorage)
		}
	}
}

// TestEveryPatternDecodes checks that for a power of two enum, every bit pattern the field can
// hold decodes to a variant and DiscriminantOutOfRange never happens.
func TestEveryPatternDecodes(t *testing.T) {
	g := MustNew("DeliveryMode", deliveryVariants)
	if g.Bits() != 3 {
		t.Fatalf("TestEveryPatternDecodes: Bits(): got %d, want 3", g.Bits())
	}

	for offset := uint64(0); offset < 6; offset++ {
		for pattern := 0; pattern < 8; pattern++ {
			buf := []byte{0xFF, 0xFF}
			// Write the raw pattern through the byte primitives, as a foreign encoder would.
			buf[0] &^= 0b111 << offset
			buf[0] |= byte(pattern) << offset

			v, err := g.Decode(buf, offset)
			if err != nil {
				t.Fatalf("TestEveryPatternDecodes(offset %d, pattern %03b): unexpected error: %s", offset, pattern, err)
			}
			if int(v.Value) != pattern {
				t.Fatalf("TestEveryPatternDecodes(offset %d, pattern %03b): got %+v", offset, pattern, v)
			}
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	g := MustNew("DeliveryMode", deliveryVariants)

	buf := []byte{0b1000_0001}
	for _, v := range deliveryVariants {
		if err := g.Encode(buf, 2, v); err != nil {
			t.Fatalf("TestEncodeDecode(%s): Encode: %s", v.Name, err)
		}
		got, err := g.Decode(buf, 2)
		if err != nil {
			t.Fatalf("TestEncodeDecode(%s): Decode: %s", v.Name, err)
		}
		if got != v {
			t.Fatalf("TestEncodeDecode(%s): got %+v", v.Name, got)
		}
		if buf[0]&0b1110_0011 != 0b1000_0001 {
			t.Fatalf("TestEncodeDecode(%s): neighbouring bits changed: %08b", v.Name, buf[0])
		}
	}

	if err := g.Encode(buf, 2, Variant{"Startup", 3}); err == nil {
		t.Fatalf("TestEncodeDecode: Encode() of a variant with the wrong value should fail")
	}
	if err := g.Encode(buf, 2, Variant{"Bogus", 1}); err == nil {
		t.Fatalf("TestEncodeDecode: Encode() of an unknown variant should fail")
	}
}

func TestWideGroup(t *testing.T) {
	names := make([]string, 512)
	for i := range names {
		names[i] = fmt.Sprintf("V%d", i)
	}
	g := MustNew("Wide", Sequential(names...))

	buf := make([]byte, 3)
	for _, val := range []uint16{0, 1, 255, 256, 300, 511} {
		v, _ := g.ByValue(val)
		if err := g.Encode(buf, 5, v); err != nil {
			t.Fatalf("TestWideGroup(%d): Encode: %s", val, err)
		}
		got, err := g.Decode(buf, 5)
		if err != nil {
			t.Fatalf("TestWideGroup(%d): Decode: %s", val, err)
		}
		if got != v {
			t.Fatalf("TestWideGroup(%d): got %+v, want %+v", val, got, v)
		}
	}
}

func TestFromNative(t *testing.T) {
	g := MustNew("DeliveryMode", deliveryVariants)

	native, err := g.AppendNative(nil, Variant{"Startup", 0b110})
	if err != nil {
		t.Fatalf("TestFromNative: AppendNative: %s", err)
	}
	if diff := pretty.Compare([]byte{0b110}, native); diff != "" {
		t.Fatalf("TestFromNative: -want/+got:\n%s", diff)
	}

	v, err := g.FromNative(native)
	if err != nil || v.Name != "Startup" {
		t.Fatalf("TestFromNative: got %+v, %v", v, err)
	}

	// A native value of 8 can't come out of a 3 bit field, but it can come from a corrupt
	// buffer that was handed to us whole.
	_, err = g.FromNative([]byte{8})
	if !errors.Is(err, errors.ErrDiscriminantOutOfRange) {
		t.Fatalf("TestFromNative(8): got %v, want %v", err, errors.ErrDiscriminantOutOfRange)
	}

	_, err = g.FromNative([]byte{1, 0})
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindBufferSize {
		t.Fatalf("TestFromNative(2 bytes): got %v, want a buffer size error", err)
	}
}

func TestLookups(t *testing.T) {
	g := MustNew("DeliveryMode", deliveryVariants)

	if g.Name() != "DeliveryMode" || g.Len() != 8 {
		t.Fatalf("TestLookups: got name %q len %d", g.Name(), g.Len())
	}
	if v, ok := g.ByName("NMI"); !ok || v.Value != 0b100 {
		t.Errorf("TestLookups: ByName(NMI): got %+v, %v", v, ok)
	}
	if _, ok := g.ByName("nmi"); ok {
		t.Errorf("TestLookups: ByName(nmi) should not be found")
	}
	if v, ok := g.ByValue(0b011); !ok || v.Name != "RemoteRead" {
		t.Errorf("TestLookups: ByValue(3): got %+v, %v", v, ok)
	}
	if _, ok := g.ByValue(8); ok {
		t.Errorf("TestLookups: ByValue(8) should not be found")
	}
	if diff := pretty.Compare(deliveryVariants, g.Variants()); diff != "" {
		t.Errorf("TestLookups: Variants(): -want/+got:\n%s", diff)
	}
	if g.Get(6).Name != "Startup" {
		t.Errorf("TestLookups: Get(6): got %+v", g.Get(6))
	}
}

type triggerMode uint8

const (
	edge triggerMode = iota
	level
)

func TestTyped(t *testing.T) {
	tm := MustBind[triggerMode](MustNew("TriggerMode", Sequential("Edge", "Level")))

	buf := []byte{0}
	if err := tm.Encode(buf, 7, level); err != nil {
		t.Fatalf("TestTyped: Encode: %s", err)
	}
	if buf[0] != 0b1000_0000 {
		t.Fatalf("TestTyped: buffer: got %08b", buf[0])
	}
	got, err := tm.Decode(buf, 7)
	if err != nil || got != level {
		t.Fatalf("TestTyped: Decode: got %v, %v", got, err)
	}
	if tm.Name(edge) != "Edge" || tm.Name(triggerMode(2)) != "" {
		t.Fatalf("TestTyped: Name() returned the wrong names")
	}
	if err := tm.Encode(buf, 7, triggerMode(2)); err == nil {
		t.Fatalf("TestTyped: Encode(2) should fail")
	}

	names := make([]string, 512)
	for i := range names {
		names[i] = fmt.Sprintf("V%d", i)
	}
	if _, err := Bind[uint8](MustNew("Wide", Sequential(names...))); err == nil {
		t.Fatalf("TestTyped: Bind[uint8] of a 512 variant enum should fail")
	}
	if _, err := Bind[uint16](MustNew("Wide", Sequential(names...))); err != nil {
		t.Fatalf("TestTyped: Bind[uint16] of a 512 variant enum: %s", err)
	}
}

func TestGroups(t *testing.T) {
	gs := NewGroups()
	a := MustNew("Mode", Sequential("A", "B"))
	same := MustNew("Mode", Sequential("A", "B"))
	other := MustNew("Mode", Sequential("X", "Y"))

	got, err := gs.Add(a)
	if err != nil || got != a {
		t.Fatalf("TestGroups: Add(a): got %p, %v", got, err)
	}
	got, err = gs.Add(same)
	if err != nil || got != a {
		t.Fatalf("TestGroups: Add(same) should return the first group, got %p, %v", got, err)
	}
	if _, err := gs.Add(other); err == nil {
		t.Fatalf("TestGroups: Add(other) should fail")
	}
	if gs.Len() != 1 || gs.Get(0) != a || gs.ByName("Mode") != a || gs.ByName("Nope") != nil {
		t.Fatalf("TestGroups: lookups returned the wrong groups")
	}
}

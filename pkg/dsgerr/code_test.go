package dsgerr

import "testing"

func TestErrorCodePartitioning(t *testing.T) {
	cases := []struct {
		name string
		code uint16
		want Variant
	}{
		{"system_unknown", 4999, SystemVariant(Unknown)},
		{"meta_zero", 5000, Variant{Kind: KindMeta, Sub: 0}},
		{"dec_zero", 15000, Variant{Kind: KindDec, Sub: 0}},
		{"dec_max", 65534, Variant{Kind: KindDec, Sub: 50534}},
		{"system_not_found", uint16(NotFound), SystemVariant(NotFound)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromU16(tc.code)
			if !got.Equal(tc.want) {
				t.Fatalf("FromU16(%d) = %v, want %v", tc.code, got, tc.want)
			}
			if back := got.ToU16(); back != tc.code {
				t.Fatalf("round trip: ToU16(FromU16(%d)) = %d", tc.code, back)
			}
		})
	}
}

func TestDecVariantClamp(t *testing.T) {
	v := DecVariant(65535) // far beyond decMax
	if v.Sub != decMax {
		t.Fatalf("expected clamp to %d, got %d", decMax, v.Sub)
	}
	// Clamped value round-trip-compares equal to itself.
	if !v.Equal(DecVariant(v.Sub)) {
		t.Fatalf("clamped variant does not compare equal to itself")
	}
}

func TestMetaVariantClamp(t *testing.T) {
	v := MetaVariant(5000)
	if v.Sub != metaMax {
		t.Fatalf("expected clamp to %d, got %d", metaMax, v.Sub)
	}
}

func TestBuckyErrorIs(t *testing.T) {
	e1 := New(SystemVariant(NotFound), "contract unknown")
	e2 := New(SystemVariant(NotFound), "state unknown")
	if !e1.Is(e2) {
		t.Fatalf("expected errors with equal codes to match via Is")
	}

	e3 := New(SystemVariant(Timeout), "expired")
	if e1.Is(e3) {
		t.Fatalf("expected errors with different codes not to match")
	}
}

package codec

import (
	"bytes"
	"testing"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	rest, err := PutU8(buf, 0xAB)
	if err != nil {
		t.Fatal(err)
	}
	rest, err = PutU16(rest, 0x1234)
	if err != nil {
		t.Fatal(err)
	}
	rest, err = PutU32(rest, 0xDEADBEEF)
	if err != nil {
		t.Fatal(err)
	}
	_, err = PutU64(rest, 0x1122334455667788)
	if err != nil {
		t.Fatal(err)
	}

	v8, rest, err := GetU8(buf)
	if err != nil || v8 != 0xAB {
		t.Fatalf("u8 round trip: %v %v", v8, err)
	}
	v16, rest, err := GetU16(rest)
	if err != nil || v16 != 0x1234 {
		t.Fatalf("u16 round trip: %v %v", v16, err)
	}
	v32, rest, err := GetU32(rest)
	if err != nil || v32 != 0xDEADBEEF {
		t.Fatalf("u32 round trip: %v %v", v32, err)
	}
	v64, _, err := GetU64(rest)
	if err != nil || v64 != 0x1122334455667788 {
		t.Fatalf("u64 round trip: %v %v", v64, err)
	}
}

func TestPutU8OutOfLimit(t *testing.T) {
	_, err := PutU8(nil, 1)
	if err == nil {
		t.Fatal("expected OutOfLimit error")
	}
}

func TestBlobRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	payload := []byte("hello DSG")
	rest, err := PutBlob16(buf, payload)
	if err != nil {
		t.Fatal(err)
	}
	_ = rest
	got, _, err := GetBlob16(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q want %q", got, payload)
	}
}

func TestBlobTooShortDecodesOutOfLimit(t *testing.T) {
	buf := []byte{0x00, 0x10} // claims 16 bytes, has 0
	_, _, err := GetBlob16(buf)
	if err == nil {
		t.Fatal("expected OutOfLimit")
	}
}

var u16Codec = ValueCodec[uint16]{
	Measure: func(uint16, Purpose) int { return 2 },
	Encode:  func(buf []byte, v uint16, _ Purpose) ([]byte, error) { return PutU16(buf, v) },
	Decode:  func(buf []byte) (uint16, []byte, error) { return GetU16(buf) },
}

func TestSeqRoundTrip(t *testing.T) {
	items := []uint16{1, 2, 3, 400}
	buf := make([]byte, MeasureSeq(u16Codec, items, Serialize))
	if _, err := PutSeq(buf, u16Codec, items, Serialize); err != nil {
		t.Fatal(err)
	}
	got, _, err := GetSeq(buf, u16Codec)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(items) {
		t.Fatalf("length mismatch: %d vs %d", len(got), len(items))
	}
	for i := range items {
		if got[i] != items[i] {
			t.Fatalf("index %d: got %d want %d", i, got[i], items[i])
		}
	}
}

func TestMappingRejectsDuplicateKeys(t *testing.T) {
	// Hand-encode two pairs with the same key to exercise the decode-time
	// uniqueness invariant from spec.md §4.1.
	buf := make([]byte, 64)
	rest, _ := PutU16(buf, 2)
	rest, _ = PutU16(rest, 7)
	rest, _ = PutU16(rest, 100)
	rest, _ = PutU16(rest, 7)
	_, _ = PutU16(rest, 200)

	_, _, _, err := GetMapping(buf, u16Codec, u16Codec)
	if err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestDiffPatchLawScalar(t *testing.T) {
	pairs := [][2]uint16{{1, 1}, {1, 2}, {0, 0xFFFF}}
	for _, p := range pairs {
		a, b := p[0], p[1]
		buf := make([]byte, DiffMeasureScalar(u16Codec, a, b))
		if _, err := DiffScalar(buf, u16Codec, a, b); err != nil {
			t.Fatal(err)
		}
		got, _, err := PatchScalar(buf, u16Codec, a)
		if err != nil {
			t.Fatal(err)
		}
		if got != b {
			t.Fatalf("patch(%d, diff(%d,%d)) = %d, want %d", a, a, b, got, b)
		}
	}
}

func TestDiffPatchLawOptional(t *testing.T) {
	v1, v2 := uint16(1), uint16(2)
	cases := [][2]*uint16{{nil, nil}, {nil, &v1}, {&v1, nil}, {&v1, &v2}, {&v1, &v1}}
	for _, c := range cases {
		a, b := c[0], c[1]
		buf := make([]byte, DiffMeasureOptional(u16Codec, a, b))
		if _, err := DiffOptional(buf, u16Codec, a, b); err != nil {
			t.Fatal(err)
		}
		got, _, err := PatchOptional(buf, u16Codec, a)
		if err != nil {
			t.Fatal(err)
		}
		switch {
		case b == nil && got != nil:
			t.Fatalf("expected nil, got %v", *got)
		case b != nil && (got == nil || *got != *b):
			t.Fatalf("expected %v, got %v", *b, got)
		}
	}
}

func TestDiffPatchLawSequence(t *testing.T) {
	cases := [][2][]uint16{
		{{1, 2, 3}, {1, 2, 3}},
		{{1, 2, 3}, {1, 2, 3, 4}},
		{{1, 2, 3}, {1}},
		{{}, {1, 2}},
		{{1, 2}, {}},
		{{1, 2, 3}, {9, 9}},
	}
	for _, c := range cases {
		a, b := c[0], c[1]
		buf := make([]byte, DiffMeasureSeq(u16Codec, a, b))
		if _, err := DiffSeq(buf, u16Codec, a, b); err != nil {
			t.Fatal(err)
		}
		got, _, err := PatchSeq(buf, u16Codec, a)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(b) {
			t.Fatalf("patch(%v, diff(%v,%v)) = %v, want %v", a, a, b, got, b)
		}
		for i := range b {
			if got[i] != b[i] {
				t.Fatalf("patch(%v, diff(%v,%v)) = %v, want %v", a, a, b, got, b)
			}
		}
	}
}

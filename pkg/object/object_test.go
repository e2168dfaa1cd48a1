package object

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/dsgmesh/dsgcore/pkg/codec"
)

// stringCodec is a minimal desc/body content codec used across these
// tests: a plain u16-length-prefixed string.
var stringCodec = codec.ValueCodec[string]{
	Measure: func(s string, _ codec.Purpose) int { return codec.MeasureString(s) },
	Encode:  func(buf []byte, s string, _ codec.Purpose) ([]byte, error) { return codec.PutString(buf, s) },
	Decode:  func(buf []byte) (string, []byte, error) { return codec.GetString(buf) },
}

func sampleDesc(t *testing.T, objType uint16) Desc[string] {
	t.Helper()
	owner := ObjectId{0xAA}
	ts := [32]byte{1, 2, 3}
	createTime := uint64(1000)
	return Desc[string]{
		Context: NamedObjectContext{ObjType: objType},
		Owner:   &owner,
		CreateTimestamp: &ts,
		CreateTime:      &createTime,
		Version:         1,
		Format:          0,
		Content:         "hello contract desc",
	}
}

func TestDescRoundTrip(t *testing.T) {
	d := sampleDesc(t, 0x0001)
	buf := make([]byte, MeasureDesc(d, stringCodec, codec.Serialize, nil))
	if _, err := EncodeDesc(buf, d, stringCodec, codec.Serialize, nil); err != nil {
		t.Fatal(err)
	}
	got, rest, err := DecodeDesc(buf, stringCodec)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("leftover bytes: %d", len(rest))
	}
	if got.Content != d.Content {
		t.Fatalf("content mismatch: %q vs %q", got.Content, d.Content)
	}
	if got.Owner == nil || *got.Owner != *d.Owner {
		t.Fatalf("owner mismatch")
	}
	if got.CreateTime == nil || *got.CreateTime != *d.CreateTime {
		t.Fatalf("create_time mismatch")
	}
	if got.Context.Flags != flagsOf(d, false) {
		t.Fatalf("flags mismatch: got %v want %v", got.Context.Flags, flagsOf(d, false))
	}
}

func TestDescIdIgnoresBodyMutation(t *testing.T) {
	d := sampleDesc(t, 0x0002)
	body1 := Body[string]{Content: "v1"}
	obj := New(d, &body1)

	id1, err := IdOf(&obj, stringCodec)
	if err != nil {
		t.Fatal(err)
	}

	obj.Body.Content = "v2 - totally different body"
	id2, err := IdOf(&obj, stringCodec)
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("id changed after mutating body only: %v vs %v", id1, id2)
	}
}

func TestObjectRoundTrip(t *testing.T) {
	d := sampleDesc(t, 0x0003)
	body := Body[string]{Version: 1, Content: "mutable payload"}
	obj := New(d, &body)
	obj.DescSign = []Signature{{SignerIndex: 0, Sign: []byte("sig-desc")}}
	obj.Nonce = []byte{0xDE, 0xAD}

	buf := make([]byte, MeasureObject(obj, stringCodec, stringCodec))
	if _, err := EncodeObject(buf, obj, stringCodec, stringCodec); err != nil {
		t.Fatal(err)
	}
	got, rest, err := DecodeObject(buf, stringCodec, stringCodec)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("leftover bytes: %d", len(rest))
	}
	if !got.HasBody || got.Body.Content != "mutable payload" {
		t.Fatalf("body mismatch: %+v", got.Body)
	}
	if !bytes.Equal(got.Nonce, obj.Nonce) {
		t.Fatalf("nonce mismatch")
	}
	if len(got.DescSign) != 1 || got.DescSign[0].SignerIndex != 0 {
		t.Fatalf("sign mismatch: %+v", got.DescSign)
	}
}

func TestTypelessRoundTripPreservesId(t *testing.T) {
	d := sampleDesc(t, 0x0004)
	body := Body[string]{Content: "body-content"}
	obj := New(d, &body)

	wantId, err := IdOf(&obj, stringCodec)
	if err != nil {
		t.Fatal(err)
	}

	typeless, err := ConvertToTypeless(obj, CategoryStandard, stringCodec, stringCodec)
	if err != nil {
		t.Fatal(err)
	}
	if typeless.CalculateId() != wantId {
		t.Fatalf("typeless id mismatch: %v vs %v", typeless.CalculateId(), wantId)
	}

	reified, err := ConvertFromTypeless[string, string](typeless, 0x0004, stringCodec, stringCodec)
	if err != nil {
		t.Fatal(err)
	}
	gotId, err := IdOf(&reified, stringCodec)
	if err != nil {
		t.Fatal(err)
	}
	if gotId != wantId {
		t.Fatalf("reified id mismatch: %v vs %v", gotId, wantId)
	}
}

func TestConvertToTypelessRejectsWrongCategory(t *testing.T) {
	d := sampleDesc(t, 0x0005) // below coreTypeBase -> Standard
	obj := New[string, string](d, nil)
	if _, err := ConvertToTypeless(obj, CategoryCore, stringCodec, stringCodec); err == nil {
		t.Fatal("expected category mismatch error")
	}
}

func TestConvertFromTypelessRejectsWrongObjType(t *testing.T) {
	d := sampleDesc(t, 0x0006)
	obj := New[string, string](d, nil)
	typeless, err := ConvertToTypeless(obj, CategoryStandard, stringCodec, stringCodec)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ConvertFromTypeless[string, string](typeless, 0x9999, stringCodec, stringCodec); err == nil {
		t.Fatal("expected obj_type mismatch error")
	}
}

func TestPublicKeyRoundTripSingleAndMulti(t *testing.T) {
	single := NewSinglePublicKey([]byte("ed25519-pub-key-bytes-000000000"))
	buf := make([]byte, MeasurePublicKey(single))
	if _, err := PutPublicKey(buf, single); err != nil {
		t.Fatal(err)
	}
	got, _, err := GetPublicKey(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KeyKindSingle || !bytes.Equal(got.Single.Key, single.Single.Key) {
		t.Fatalf("single key round trip failed")
	}

	multi := NewMultiPublicKey(2, toKeys("k1", "k2", "k3"))
	buf2 := make([]byte, MeasurePublicKey(multi))
	if _, err := PutPublicKey(buf2, multi); err != nil {
		t.Fatal(err)
	}
	got2, _, err := GetPublicKey(buf2)
	if err != nil {
		t.Fatal(err)
	}
	if got2.Kind != KeyKindMulti || got2.Multi.Threshold != 2 || len(got2.Multi.Keys) != 3 {
		t.Fatalf("multi key round trip failed: %+v", got2.Multi)
	}
}

func toKeys(ss ...string) []ed25519.PublicKey {
	out := make([]ed25519.PublicKey, len(ss))
	for i, s := range ss {
		out[i] = ed25519.PublicKey(s)
	}
	return out
}

func TestGetPublicKeyRejectsUnknownDiscriminator(t *testing.T) {
	buf := []byte{0x09}
	if _, _, err := GetPublicKey(buf); err == nil {
		t.Fatal("expected decode error for unknown key discriminator")
	}
}

func TestCategoryOf(t *testing.T) {
	cases := []struct {
		objType uint16
		want    Category
	}{
		{0x0001, CategoryStandard},
		{0x7FFF, CategoryStandard},
		{0x8000, CategoryCore},
		{0xBFFF, CategoryCore},
		{0xC000, CategoryDecApp},
		{0xFFFF, CategoryDecApp},
	}
	for _, c := range cases {
		if got := CategoryOf(c.objType); got != c.want {
			t.Errorf("CategoryOf(%#x) = %v, want %v", c.objType, got, c.want)
		}
	}
}

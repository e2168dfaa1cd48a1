package challenge

import (
	"bytes"
	"crypto/rand"
	mathrand "math/rand"
	"testing"

	"github.com/dsgmesh/dsgcore/pkg/transform"
)

func TestGenerateSamplesWithinBounds(t *testing.T) {
	lens := ChunkLens{100, 200, 50}
	samples, err := GenerateSamples(rand.Reader, lens, 20, 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 20 {
		t.Fatalf("sample count mismatch: %d", len(samples))
	}
	for _, s := range samples {
		if int(s.ChunkIndex) >= len(lens) {
			t.Fatalf("chunk index out of range: %d", s.ChunkIndex)
		}
		if s.Offset+uint64(s.Length) > uint64(lens[s.ChunkIndex]) {
			t.Fatalf("sample window exceeds chunk length")
		}
	}
}

func TestGenerateSamplesIsDeterministicUnderSeededReader(t *testing.T) {
	lens := ChunkLens{100, 200, 50}
	seed := func() *mathrand.Rand { return mathrand.New(mathrand.NewSource(42)) }

	first, err := GenerateSamples(seed(), lens, 10, 16)
	if err != nil {
		t.Fatal(err)
	}
	second, err := GenerateSamples(seed(), lens, 10, 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("sample count mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d diverged across identically-seeded runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGenerateSamplesRejectsAllChunksTooShort(t *testing.T) {
	lens := ChunkLens{4, 8}
	if _, err := GenerateSamples(rand.Reader, lens, 1, 16); err == nil {
		t.Fatal("expected error when no chunk is long enough")
	}
}

func TestGenerateAndVerifyProofRoundTrip(t *testing.T) {
	sources := [][]byte{
		bytes.Repeat([]byte{1}, 50),
		bytes.Repeat([]byte{2}, 70),
	}
	lens := []uint32{50, 70}
	stub := transform.PlanMerge(lens, 32, nil)

	stored, err := transform.Apply(sources, stub)
	if err != nil {
		t.Fatal(err)
	}
	storedLens := make(ChunkLens, len(stored))
	for i, c := range stored {
		storedLens[i] = uint32(len(c))
	}

	samples, err := GenerateSamples(rand.Reader, storedLens, 5, 8)
	if err != nil {
		t.Fatal(err)
	}

	responses, err := GenerateProof(stored, samples)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := VerifyProof(sources, stub, samples, responses)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected proof to verify")
	}
}

func TestVerifyProofRejectsTamperedResponse(t *testing.T) {
	sources := [][]byte{bytes.Repeat([]byte{9}, 64)}
	lens := []uint32{64}
	stub := transform.PlanMerge(lens, 32, nil)

	stored, err := transform.Apply(sources, stub)
	if err != nil {
		t.Fatal(err)
	}
	storedLens := make(ChunkLens, len(stored))
	for i, c := range stored {
		storedLens[i] = uint32(len(c))
	}
	samples, err := GenerateSamples(rand.Reader, storedLens, 2, 8)
	if err != nil {
		t.Fatal(err)
	}
	responses, err := GenerateProof(stored, samples)
	if err != nil {
		t.Fatal(err)
	}
	responses[0].Data = append([]byte(nil), responses[0].Data...)
	responses[0].Data[0] ^= 0xFF

	ok, err := VerifyProof(sources, stub, samples, responses)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected tampered proof to fail verification")
	}
}

func TestGenerateNonceIsNonZeroAndVaries(t *testing.T) {
	n1, err := GenerateNonce(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	n2, err := GenerateNonce(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	if n1 == n2 {
		t.Fatal("expected distinct nonces")
	}
}

func TestNextActionLifecycle(t *testing.T) {
	cases := []struct {
		name     string
		now      uint64
		createAt uint64
		expireAt uint64
		atomic   uint64
		want     Action
	}{
		{"within interval", 100, 100, 1000, 60, ActionWait},
		{"past atomic interval", 200, 100, 1000, 60, ActionRepost},
		{"expired", 1000, 100, 1000, 60, ActionBreak},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextAction(tc.now, tc.createAt, tc.expireAt, tc.atomic)
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

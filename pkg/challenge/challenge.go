// Package challenge implements the challenge/proof protocol's
// non-object-shape pieces (spec.md §4.5): sample generation, proof
// generation and verification against a stub, and the re-issue/expiry
// decision a contract tick makes. The wire objects themselves
// (ChallengeObject, ProofObject) live in pkg/dsgobj.
package challenge

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
	"github.com/dsgmesh/dsgcore/pkg/dsgobj"
	"github.com/dsgmesh/dsgcore/pkg/transform"
)

// ChunkLens reports the length of each stored chunk a sample set is
// drawn against.
type ChunkLens []uint32

// GenerateSamples draws sampleCount samples, each a (chunk_index,
// offset_in_chunk, sample_len) triple satisfying offset_in_chunk +
// sample_len <= chunks[chunk_index].len (spec.md §4.5 "Challenge
// generation"), from rng. Production callers pass crypto/rand.Reader;
// tests inject a seeded math/rand-backed io.Reader for a deterministic
// sample set, the same split the teacher's gossip/swim tests use to
// pin down `probeRandomMember`'s member pick without mocking
// crypto/rand itself.
func GenerateSamples(rng io.Reader, lens ChunkLens, sampleCount int, sampleLen uint32) ([]dsgobj.Sample, error) {
	if len(lens) == 0 {
		return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidInput), "no stored chunks to sample")
	}
	samples := make([]dsgobj.Sample, 0, sampleCount)
	for i := 0; i < sampleCount; i++ {
		idx, chunkLen, err := pickSampleableChunk(rng, lens, sampleLen)
		if err != nil {
			return nil, err
		}
		maxOffset := uint64(chunkLen) - uint64(sampleLen)
		offset, err := randUint64(rng, maxOffset+1)
		if err != nil {
			return nil, err
		}
		samples = append(samples, dsgobj.Sample{
			ChunkIndex: idx,
			Offset:     offset,
			Length:     sampleLen,
		})
	}
	return samples, nil
}

// pickSampleableChunk draws a uniformly random chunk index among those
// at least sampleLen bytes long.
func pickSampleableChunk(rng io.Reader, lens ChunkLens, sampleLen uint32) (uint32, uint32, error) {
	var candidates []uint32
	for i, l := range lens {
		if l >= sampleLen {
			candidates = append(candidates, uint32(i))
		}
	}
	if len(candidates) == 0 {
		return 0, 0, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidInput), "no stored chunk is long enough to sample")
	}
	pick, err := randUint64(rng, uint64(len(candidates)))
	if err != nil {
		return 0, 0, err
	}
	idx := candidates[pick]
	return idx, lens[idx], nil
}

func randUint64(rng io.Reader, n uint64) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	v, err := rand.Int(rng, new(big.Int).SetUint64(n))
	if err != nil {
		return 0, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.Failed), "draw random bound", err)
	}
	return v.Uint64(), nil
}

// GenerateNonce draws a fresh 32-byte challenge nonce from rng, the
// same injectable source GenerateSamples draws from so a test can pin
// down an entire challenge — nonce and samples alike — against one
// seeded reader.
func GenerateNonce(rng io.Reader) ([32]byte, error) {
	var nonce [32]byte
	if _, err := io.ReadFull(rng, nonce[:]); err != nil {
		return nonce, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.Failed), "draw challenge nonce", err)
	}
	return nonce, nil
}

// GenerateProof reads each sample's bytes from the stored chunks, ready
// to bundle into a ProofDesc via dsgobj.NewProof (spec.md §4.5 "Proof
// generation").
func GenerateProof(stored [][]byte, samples []dsgobj.Sample) ([]dsgobj.SampleResponse, error) {
	responses := make([]dsgobj.SampleResponse, len(samples))
	for i, s := range samples {
		data, err := transform.ReadStoredSample(stored, s.ChunkIndex, s.Offset, s.Length)
		if err != nil {
			return nil, err
		}
		responses[i] = dsgobj.SampleResponse{Data: data}
	}
	return responses, nil
}

// VerifyProof recomputes every sample's expected bytes by re-running the
// forward transform over the original source chunks (spec.md §4.5
// "Proof verification" step 3), and compares them bit-for-bit against
// the responses a miner submitted.
func VerifyProof(sources [][]byte, stub transform.DataSourceStub, samples []dsgobj.Sample, responses []dsgobj.SampleResponse) (bool, error) {
	if len(samples) != len(responses) {
		return false, nil
	}
	for i, s := range samples {
		want, err := transform.ReadExpectedSample(sources, stub, s.ChunkIndex, s.Offset, s.Length)
		if err != nil {
			return false, err
		}
		if len(want) != len(responses[i].Data) {
			return false, nil
		}
		for j := range want {
			if want[j] != responses[i].Data[j] {
				return false, nil
			}
		}
	}
	return true, nil
}

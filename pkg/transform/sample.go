package transform

import "github.com/dsgmesh/dsgcore/pkg/dsgerr"

// ReadStoredSample reads sample_len bytes from stored_chunks[chunk_index]
// at offset_in_chunk, the miner-side proof-generation read (spec.md §4.5
// "Proof generation").
func ReadStoredSample(stored [][]byte, chunkIndex uint32, offset uint64, length uint32) ([]byte, error) {
	if int(chunkIndex) >= len(stored) {
		return nil, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.OutOfLimit), "chunk index %d out of range", chunkIndex)
	}
	chunk := stored[chunkIndex]
	end := offset + uint64(length)
	if end > uint64(len(chunk)) {
		return nil, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.OutOfLimit), "sample window [%d,%d) exceeds chunk length %d", offset, end, len(chunk))
	}
	return chunk[offset:end], nil
}

// ReadExpectedSample recomputes the expected proof bytes for a sample by
// re-running the forward transform over the original source chunks and
// reading the same (chunk_index, offset, length) window (spec.md §4.5
// "Proof verification" step 3). Verifiers call this; it must return the
// same bytes bit-for-bit as the miner's ReadStoredSample over the chunks
// Apply actually produced.
func ReadExpectedSample(sources [][]byte, stub DataSourceStub, chunkIndex uint32, offset uint64, length uint32) ([]byte, error) {
	stored, err := Apply(sources, stub)
	if err != nil {
		return nil, err
	}
	return ReadStoredSample(stored, chunkIndex, offset, length)
}

package transform

import "github.com/dsgmesh/dsgcore/pkg/dsgerr"

// PlanMerge builds the simplest valid merge stub for a Backup contract:
// a single ChunkFunctionMerge spanning every source chunk in order, with
// no first_range/last_range carry-over. A single function trivially
// satisfies §4.4's boundary rule (there is no function i+1 to align to),
// and still exercises the full header/split/encrypt/restore pipeline.
// Multi-function planning (splitting across key-rotation or alignment
// boundaries) is left unimplemented — see DESIGN.md.
func PlanMerge(sourceLens []uint32, split uint32, key *AesKey) DataSourceStub {
	indices := make([]uint32, len(sourceLens))
	copy(indices, sourceLens)
	return DataSourceStub{Functions: []ChunkFunctionMerge{{
		Key:    key,
		Chunks: MergeStub{Indices: indices},
		Split:  split,
	}}}
}

func concatAll(chunks [][]byte) []byte {
	var total int
	for _, c := range chunks {
		total += len(c)
	}
	out := make([]byte, 0, total)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// Apply runs the forward transform over source chunks, producing the
// stored chunk list (spec.md §4.4). For an unchanged (Cache) stub it
// returns the sources unmodified.
func Apply(sources [][]byte, stub DataSourceStub) ([][]byte, error) {
	if stub.IsUnchanged() {
		out := make([][]byte, len(sources))
		copy(out, sources)
		return out, nil
	}

	flat := concatAll(sources)
	var offset uint64
	var result [][]byte

	for _, fn := range stub.Functions {
		if fn.Split == 0 {
			return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidInput), "merge function split size is zero")
		}
		buckets := fn.Chunks.buckets()
		total := bucketsTotalLen(buckets)
		if offset+total > uint64(len(flat)) {
			return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.OutOfLimit), "merge function reads past end of source stream")
		}
		raw := flat[offset : offset+total]
		offset += total

		hdr := header{hasKey: fn.Key != nil, ranges: cumulativeRanges(buckets)}
		if fn.Key != nil {
			hdr.key = *fn.Key
		}
		hdrBytes := encodeHeader(hdr)

		rawPadded := padToBlock(append([]byte(nil), raw...))
		payload := make([]byte, 0, len(hdrBytes)+len(rawPadded))
		payload = append(payload, hdrBytes...)
		payload = append(payload, rawPadded...)

		if fn.Key != nil {
			if err := EncryptCBC(*fn.Key, payload); err != nil {
				return nil, err
			}
		}

		split := int(fn.Split)
		for i := 0; i < len(payload); i += split {
			end := i + split
			if end > len(payload) {
				end = len(payload)
			}
			chunk := make([]byte, end-i)
			copy(chunk, payload[i:end])
			result = append(result, chunk)
		}
	}
	return result, nil
}

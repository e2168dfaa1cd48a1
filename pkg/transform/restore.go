package transform

import "github.com/dsgmesh/dsgcore/pkg/dsgerr"

func ceilDiv(a, b int) int {
	if a == 0 {
		return 0
	}
	return (a-1)/b + 1
}

// Restore inverts Apply: given the stored chunks and the same stub that
// produced them, it reconstructs the original source chunks byte-for-byte
// (spec.md §4.4 "Restore"). For an unchanged stub it returns the stored
// chunks unmodified.
func Restore(stored [][]byte, stub DataSourceStub) ([][]byte, error) {
	if stub.IsUnchanged() {
		out := make([][]byte, len(stored))
		copy(out, stored)
		return out, nil
	}

	var sources [][]byte
	pendingTail := false
	idx := 0

	for _, fn := range stub.Functions {
		if fn.Split == 0 {
			return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidInput), "merge function split size is zero")
		}
		buckets := fn.Chunks.buckets()
		rawLen := int(bucketsTotalLen(buckets))
		hdrLen := headerEncodedLen(fn.Key != nil, len(buckets))
		rawPaddedLen := rawLen
		if rem := rawLen % EncBlockLen; rem != 0 {
			rawPaddedLen += EncBlockLen - rem
		}
		payloadLen := hdrLen + rawPaddedLen
		numChunks := ceilDiv(payloadLen, int(fn.Split))

		if idx+numChunks > len(stored) {
			return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.OutOfLimit), "not enough stored chunks for function")
		}
		payload := make([]byte, 0, payloadLen)
		for i := 0; i < numChunks; i++ {
			payload = append(payload, stored[idx+i]...)
		}
		idx += numChunks
		if len(payload) != payloadLen {
			return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "stored chunk total length mismatch")
		}

		if fn.Key != nil {
			if err := DecryptCBC(*fn.Key, payload); err != nil {
				return nil, err
			}
		}

		_, rest, err := decodeHeader(payload, fn.Key != nil)
		if err != nil {
			return nil, err
		}
		if len(rest) < rawLen {
			return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "truncated payload after header")
		}
		raw := rest[:rawLen]

		pos := 0
		for _, b := range buckets {
			piece := raw[pos : pos+int(b.length)]
			pos += int(b.length)
			switch b.kind {
			case bucketFirst:
				if !pendingTail || len(sources) == 0 {
					return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "first_range bucket with no pending tail")
				}
				sources[len(sources)-1] = append(sources[len(sources)-1], piece...)
				pendingTail = false
			case bucketLast:
				sources = append(sources, append([]byte(nil), piece...))
				pendingTail = true
			default:
				sources = append(sources, append([]byte(nil), piece...))
			}
		}
	}
	return sources, nil
}

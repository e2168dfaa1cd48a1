package transform

import (
	"github.com/dsgmesh/dsgcore/pkg/codec"
	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
)

// header is the self-describing block spec.md §4.4 prefixes onto the
// first output chunk of a merge function: a tag byte, an optional key
// block, and the bucket range table, all zero-padded to a CBC block
// boundary. The key block would carry the per-contract AES key
// encrypted to the miner's public key in the original design; this
// implementation has no keystore/PKI abstraction to encrypt against
// (spec.md §6.1's ObjectStack.keystore is consumed, not modeled here),
// so it carries the raw key bytes instead — documented in DESIGN.md.
type header struct {
	hasKey bool
	key    AesKey
	ranges []Range
}

const headerTag = 0

func encodeHeader(h header) []byte {
	n := 1
	if h.hasKey {
		n += 1 + len(h.key)
	}
	n += 1 + len(h.ranges)*8
	buf := make([]byte, n)
	rest, _ := codec.PutU8(buf, headerTag)
	if h.hasKey {
		rest, _ = codec.PutBlob8(rest, h.key[:])
	}
	rest, _ = codec.PutU8(rest, uint8(len(h.ranges)))
	for _, r := range h.ranges {
		rest, _ = codec.PutU32(rest, uint32(r.Start))
		rest, _ = codec.PutU32(rest, uint32(r.End))
	}
	return padToBlock(buf)
}

// decodeHeader decodes a header whose caller already knows (from the
// DataSourceStub's ChunkFunctionMerge.Key) whether a key block is
// present, removing the tag-byte-only ambiguity a fully self-describing
// decode would otherwise have to resolve heuristically.
func decodeHeader(buf []byte, hasKey bool) (header, []byte, error) {
	var h header
	tag, rest, err := codec.GetU8(buf)
	if err != nil {
		return h, nil, err
	}
	if tag != headerTag {
		return h, nil, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.InvalidData), "unknown header tag %d", tag)
	}
	h.hasKey = hasKey
	if hasKey {
		keyBytes, r2, err := codec.GetBlob8(rest)
		if err != nil {
			return h, nil, err
		}
		if len(keyBytes) != len(h.key) {
			return h, nil, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.InvalidData), "bad key block length %d", len(keyBytes))
		}
		copy(h.key[:], keyBytes)
		rest = r2
	}
	count, rest, err := codec.GetU8(rest)
	if err != nil {
		return h, nil, err
	}
	h.ranges = make([]Range, count)
	for i := range h.ranges {
		var start, end uint32
		start, rest, err = codec.GetU32(rest)
		if err != nil {
			return h, nil, err
		}
		end, rest, err = codec.GetU32(rest)
		if err != nil {
			return h, nil, err
		}
		h.ranges[i] = Range{Start: uint64(start), End: uint64(end)}
	}

	consumed := headerEncodedLen(hasKey, len(h.ranges))
	if len(buf) < consumed {
		return h, nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.OutOfLimit), "truncated header")
	}
	// rest points right after the range table; skip ahead to the block
	// boundary encodeHeader zero-padded the header out to.
	return h, buf[consumed:], nil
}

// headerEncodedLen returns the padded byte length encodeHeader produces
// for a header with the given key presence and bucket count, letting
// restore derive stored-chunk counts without decoding first.
func headerEncodedLen(hasKey bool, bucketCount int) int {
	n := 1
	if hasKey {
		n += 1 + len(AesKey{})
	}
	n += 1 + bucketCount*8
	if rem := n % EncBlockLen; rem != 0 {
		n += EncBlockLen - rem
	}
	return n
}

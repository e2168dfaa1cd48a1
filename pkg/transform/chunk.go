// Package transform implements the data-source transform pipeline
// (spec.md §4.4): splitting and merging source chunks into encrypted,
// size-bounded stored chunks, and losslessly restoring them.
package transform

import (
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"

	"github.com/dsgmesh/dsgcore/pkg/codec"
	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
)

// ChunkId identifies a chunk by (SHA-256, length), the same way the rest
// of the retrieved pack content-addresses blobs, via go-cid/go-multihash
// rather than pkg/object's raw sha256.Sum256 ObjectId: chunks are meant to
// be self-describing and to leave the process (handed to an external
// ObjectStack/NDN layer), unlike an ObjectId, which is a fixed in-place
// field inside a pinned-layout wire envelope.
type ChunkId struct {
	Cid cid.Cid
	Len uint64
}

// ComputeChunkId hashes data with SHA-256 and wraps it as a CIDv1/raw.
func ComputeChunkId(data []byte) (ChunkId, error) {
	sum, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return ChunkId{}, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.Failed), "hash chunk", err)
	}
	return ChunkId{Cid: cid.NewCidV1(cid.Raw, sum), Len: uint64(len(data))}, nil
}

// VerifyChunkId reports whether data hashes to id, the MUST check spec.md
// §4.4 places on every put-chunk operation.
func VerifyChunkId(id ChunkId, data []byte) (bool, error) {
	got, err := ComputeChunkId(data)
	if err != nil {
		return false, err
	}
	return got.Cid.Equals(id.Cid) && got.Len == id.Len, nil
}

func (id ChunkId) String() string { return id.Cid.String() }

// PutChunkId/GetChunkId encode a ChunkId into a pkg/dsgobj wire layout
// as a self-describing CID blob followed by the fixed-width length,
// rather than pkg/object's PutObjectId — a ChunkId is variable-length
// and multicodec-tagged, so it cannot share ObjectId's fixed-32-byte
// framing.
func PutChunkId(buf []byte, id ChunkId) ([]byte, error) {
	rest, err := codec.PutBlob8(buf, id.Cid.Bytes())
	if err != nil {
		return nil, err
	}
	return codec.PutU64(rest, id.Len)
}

func GetChunkId(buf []byte) (ChunkId, []byte, error) {
	var id ChunkId
	cidBytes, rest, err := codec.GetBlob8(buf)
	if err != nil {
		return id, nil, err
	}
	parsed, err := cid.Cast(cidBytes)
	if err != nil {
		return id, nil, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.InvalidData), "parse chunk cid", err)
	}
	length, rest, err := codec.GetU64(rest)
	if err != nil {
		return id, nil, err
	}
	return ChunkId{Cid: parsed, Len: length}, rest, nil
}

func MeasureChunkId(id ChunkId) int {
	return codec.MeasureBlob8(id.Cid.Bytes()) + codec.MeasureU64()
}

// ChunkIdCodec lets dsgobj sequences of ChunkId plug into
// codec.PutSeq/GetSeq/MeasureSeq the same way pkg/dsgobj's
// objectIdCodec does for object.ObjectId sequences.
var ChunkIdCodec = codec.ValueCodec[ChunkId]{
	Measure: func(v ChunkId, _ codec.Purpose) int { return MeasureChunkId(v) },
	Encode:  func(buf []byte, v ChunkId, _ codec.Purpose) ([]byte, error) { return PutChunkId(buf, v) },
	Decode:  func(buf []byte) (ChunkId, []byte, error) { return GetChunkId(buf) },
}

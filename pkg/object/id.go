// Package object implements the named-object model: a polymorphic object
// with an identity-producing Desc, an optional mutable Body, a context
// header carrying which optional subfields are present, and a typeless
// variant that preserves raw bytes for later typed reification.
package object

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dsgmesh/dsgcore/pkg/codec"
	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
)

// ObjectId is a 256-bit content-addressed identifier, computed from a
// Desc's canonical Hash-purpose encoding. It is a raw digest embedded
// directly in the wire format (fixed 32 bytes, no multicodec framing),
// so it is produced with stdlib crypto/sha256 rather than go-cid/
// go-multihash — those are reserved for the chunk-addressing layer in
// pkg/transform/pkg/chunkstore, which does need a self-describing,
// multicodec-tagged identifier (see DESIGN.md).
type ObjectId [32]byte

// ZeroObjectId is the all-zero id, used as a sentinel for "no id yet".
var ZeroObjectId ObjectId

// CalculateId hashes the canonical Hash-purpose encoding of a desc.
func CalculateId(hashBytes []byte) ObjectId {
	return ObjectId(sha256.Sum256(hashBytes))
}

func (id ObjectId) String() string { return hex.EncodeToString(id[:]) }

func (id ObjectId) Bytes() []byte { return id[:] }

func (id ObjectId) IsZero() bool { return id == ZeroObjectId }

// ObjectIdFromBytes copies 32 raw bytes into an ObjectId.
func ObjectIdFromBytes(b []byte) (ObjectId, error) {
	if len(b) != 32 {
		return ObjectId{}, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.InvalidData), "object id must be 32 bytes, got %d", len(b))
	}
	var id ObjectId
	copy(id[:], b)
	return id, nil
}

// ParseObjectId decodes a hex-encoded id string.
func ParseObjectId(s string) (ObjectId, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ObjectId{}, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.InvalidData), "malformed object id", err)
	}
	if len(b) != 32 {
		return ObjectId{}, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.InvalidData), "object id must be 32 bytes, got %d", len(b))
	}
	var id ObjectId
	copy(id[:], b)
	return id, nil
}

// PutObjectId writes a fixed 32-byte id with no length prefix.
func PutObjectId(buf []byte, id ObjectId) ([]byte, error) {
	return codec.PutFixed(buf, id[:])
}

// GetObjectId reads a fixed 32-byte id.
func GetObjectId(buf []byte) (ObjectId, []byte, error) {
	raw, rest, err := codec.GetFixed(buf, 32)
	if err != nil {
		return ObjectId{}, nil, err
	}
	var id ObjectId
	copy(id[:], raw)
	return id, rest, nil
}

func MeasureObjectId() int { return 32 }

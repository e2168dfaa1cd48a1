// Package chunkstore implements the narrow chunk-storage boundary DSG
// needs locally: exists/get/read_ext plus put-by-id. Everything past
// that boundary — how a chunk actually moves between a consumer and a
// miner — is BDT/SN transport and stays out of this module; chunkstore
// only has to give pkg/contract and pkg/challenge somewhere to put and
// read chunks during tests and single-host runs.
package chunkstore

import (
	"context"

	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
	"github.com/dsgmesh/dsgcore/pkg/transform"
)

// Reader is the read side a miner or verifier needs: check presence,
// fetch a whole chunk, or read a byte range out of one without paying
// for the full chunk (used by ReadStoredSample's miner-side callers).
type Reader interface {
	Exists(ctx context.Context, id transform.ChunkId) (bool, error)
	Get(ctx context.Context, id transform.ChunkId) ([]byte, error)
	ReadExt(ctx context.Context, id transform.ChunkId, offset uint64, length uint32) ([]byte, error)
}

// Writer is the write side: put a chunk, content-address-verified.
type Writer interface {
	Put(ctx context.Context, data []byte) (transform.ChunkId, error)
}

// Store is the full read/write surface pkg/contract depends on.
type Store interface {
	Reader
	Writer
}

// verifyChunkReadBack re-hashes data on every read and rejects it if the
// content no longer matches id, the §4.4 "computed id equals the
// asserted id" check applied on the read side of the boundary: a Store
// only ever hands content back out under the id that content actually
// hashes to, whether the mismatch came from disk corruption or a bug
// upstream that stored the wrong bytes under an id.
func verifyChunkReadBack(id transform.ChunkId, data []byte) error {
	ok, err := transform.VerifyChunkId(id, data)
	if err != nil {
		return err
	}
	if !ok {
		return dsgerr.Newf(dsgerr.SystemVariant(dsgerr.NotMatch), "chunk %s failed content-address verification on read", id)
	}
	return nil
}

func readExtFromWhole(whole []byte, offset uint64, length uint32) ([]byte, error) {
	end := offset + uint64(length)
	if offset > uint64(len(whole)) || end > uint64(len(whole)) {
		return nil, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.OutOfLimit),
			"read_ext [%d,%d) out of range for %d-byte chunk", offset, end, len(whole))
	}
	out := make([]byte, length)
	copy(out, whole[offset:end])
	return out, nil
}

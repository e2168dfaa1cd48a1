package chunkstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
	"github.com/dsgmesh/dsgcore/pkg/transform"
)

// DiskStore writes one file per chunk, named after its CID, under dir —
// the same "content-addressed blob at dir/<cid>" shape as
// orbas1-Synnergy's diskLRU, minus the LRU eviction: a contract's
// stored chunks are kept for the life of the contract, not recycled
// under cache pressure, so there is no eviction policy to model.
type DiskStore struct {
	dir string
	mu  sync.Mutex
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.IoError), "create chunk store dir", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) path(id transform.ChunkId) string {
	return filepath.Join(s.dir, id.Cid.String())
}

func (s *DiskStore) Put(_ context.Context, data []byte) (transform.ChunkId, error) {
	id, err := transform.ComputeChunkId(data)
	if err != nil {
		return transform.ChunkId{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.path(id)
	if _, err := os.Stat(p); err == nil {
		return id, nil
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return transform.ChunkId{}, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.IoError), "write chunk file", err)
	}
	return id, nil
}

func (s *DiskStore) Exists(_ context.Context, id transform.ChunkId) (bool, error) {
	_, err := os.Stat(s.path(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.IoError), "stat chunk file", err)
}

func (s *DiskStore) Get(_ context.Context, id transform.ChunkId) ([]byte, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.NotFound), "chunk %s not found", id)
		}
		return nil, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.IoError), "read chunk file", err)
	}
	if err := verifyChunkReadBack(id, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *DiskStore) ReadExt(_ context.Context, id transform.ChunkId, offset uint64, length uint32) ([]byte, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.NotFound), "chunk %s not found", id)
		}
		return nil, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.IoError), "read chunk file", err)
	}
	if err := verifyChunkReadBack(id, data); err != nil {
		return nil, err
	}
	return readExtFromWhole(data, offset, length)
}

package chunkstore

import (
	"context"
	"sync"

	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
	"github.com/dsgmesh/dsgcore/pkg/transform"
)

// MemoryStore is a map-backed Store keyed by CID string, for tests and
// in-process demos.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, data []byte) (transform.ChunkId, error) {
	id, err := transform.ComputeChunkId(data)
	if err != nil {
		return transform.ChunkId{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.chunks[id.String()] = cp
	return id, nil
}

func (s *MemoryStore) Exists(_ context.Context, id transform.ChunkId) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chunks[id.String()]
	return ok, nil
}

func (s *MemoryStore) Get(_ context.Context, id transform.ChunkId) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.chunks[id.String()]
	if !ok {
		return nil, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.NotFound), "chunk %s not found", id)
	}
	if err := verifyChunkReadBack(id, data); err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryStore) ReadExt(_ context.Context, id transform.ChunkId, offset uint64, length uint32) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.chunks[id.String()]
	if !ok {
		return nil, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.NotFound), "chunk %s not found", id)
	}
	if err := verifyChunkReadBack(id, data); err != nil {
		return nil, err
	}
	return readExtFromWhole(data, offset, length)
}

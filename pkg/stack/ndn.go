package stack

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
)

// memoryNdn is an in-process chunk transport keyed by hex-encoded
// chunk id bytes, standing in for spec.md §6.1's "ndn() -> Ndn" (which
// this module otherwise only consumes as an abstraction).
type memoryNdn struct {
	mu     sync.Mutex
	chunks map[string][]byte
}

func newMemoryNdn() *memoryNdn {
	return &memoryNdn{chunks: make(map[string][]byte)}
}

func (n *memoryNdn) PutData(_ context.Context, chunkId []byte, length uint64, data []byte) error {
	if uint64(len(data)) != length {
		return dsgerr.Newf(dsgerr.SystemVariant(dsgerr.InvalidData), "declared length %d does not match %d bytes", length, len(data))
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	n.chunks[hex.EncodeToString(chunkId)] = cp
	return nil
}

func (n *memoryNdn) GetData(_ context.Context, chunkId []byte) ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	data, ok := n.chunks[hex.EncodeToString(chunkId)]
	if !ok {
		return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.NotFound), "chunk not found")
	}
	return data, nil
}

// Package stack defines the external interfaces a DSG service is
// hosted against (spec.md §6.1) and provides two concrete
// implementations: an in-memory one for tests and a bbolt-backed one
// for a standalone daemon.
package stack

import (
	"context"

	"github.com/dsgmesh/dsgcore/pkg/object"
)

// Level names which object pool a get_object call should consult
// (spec.md §6.1: NOC = local cache, NON = local network, Router =
// routed to whichever device holds the object).
type Level int

const (
	LevelNOC Level = iota
	LevelNON
	LevelRouter
)

// ObjectInfo is the result of a get_object/post_object call: the
// decoded object's raw bytes plus which device actually answered.
type ObjectInfo struct {
	Id     object.ObjectId
	Bytes  []byte
	Source object.ObjectId
}

// Ndn is the chunk transport: put/get by content-addressed ChunkId
// bytes (spec.md §6.1 "ndn() -> Ndn").
type Ndn interface {
	PutData(ctx context.Context, chunkId []byte, length uint64, data []byte) error
	GetData(ctx context.Context, chunkId []byte) ([]byte, error)
}

// Keystore exposes the local device's signing identity.
type Keystore interface {
	PrivateKey() []byte
	Sign(data []byte) ([]byte, error)
}

// ObjectStack is the host environment a DSG service runs against
// (spec.md §6.1). Handlers and the tick loop depend only on this
// interface, never on a concrete stack implementation.
type ObjectStack interface {
	LocalDeviceId() object.ObjectId
	GetObject(ctx context.Context, level Level, id object.ObjectId, innerPath string) (ObjectInfo, error)
	PutObject(ctx context.Context, level Level, id object.ObjectId, bytes []byte) error
	PostObject(ctx context.Context, target object.ObjectId, id object.ObjectId, bytes []byte) (ObjectInfo, error)
	RootStateStub(dec *object.ObjectId) RootState
	Ndn() Ndn
	Keystore() Keystore
}

// RootState opens transactional path op-envs against the per-dec
// key/value store (spec.md §6.1 "RootState").
type RootState interface {
	CreatePathOpEnv() PathOpEnv
}

// PathOpEnv is a single optimistic-concurrency transaction over the
// path key/value store (spec.md §6.1 "PathOpEnv"). expectedPrev == nil
// means "no prior value expected"; a non-nil mismatch at commit time
// aborts with dsgerr's NotMatch.
type PathOpEnv interface {
	GetByKey(ctx context.Context, path, key string) (*object.ObjectId, error)
	InsertWithKey(ctx context.Context, path, key string, id object.ObjectId) error
	SetWithKey(ctx context.Context, path, key string, id object.ObjectId, expectedPrev *object.ObjectId, createIfMissing bool) (*object.ObjectId, error)
	RemoveWithKey(ctx context.Context, path, key string, expected *object.ObjectId) (*object.ObjectId, error)
	Commit(ctx context.Context) error
}

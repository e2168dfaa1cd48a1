package stack

import (
	"context"
	"sync"

	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
	"github.com/dsgmesh/dsgcore/pkg/object"
)

// MemoryStack is an in-process ObjectStack backed by mutex-guarded
// maps, for tests and single-process demos.
type MemoryStack struct {
	localDevice object.ObjectId
	keystore    Keystore

	mu      sync.Mutex
	objects map[object.ObjectId][]byte
	paths   map[string]map[string]object.ObjectId
	ndn     *memoryNdn
}

// NewMemoryStack builds an empty MemoryStack for the given local device.
func NewMemoryStack(localDevice object.ObjectId, ks Keystore) *MemoryStack {
	return &MemoryStack{
		localDevice: localDevice,
		keystore:    ks,
		objects:     make(map[object.ObjectId][]byte),
		paths:       make(map[string]map[string]object.ObjectId),
		ndn:         newMemoryNdn(),
	}
}

func (s *MemoryStack) LocalDeviceId() object.ObjectId { return s.localDevice }

func (s *MemoryStack) GetObject(_ context.Context, _ Level, id object.ObjectId, _ string) (ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[id]
	if !ok {
		return ObjectInfo{}, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.NotFound), "object %s not found", id)
	}
	return ObjectInfo{Id: id, Bytes: b, Source: s.localDevice}, nil
}

func (s *MemoryStack) PutObject(_ context.Context, _ Level, id object.ObjectId, bytes []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(bytes))
	copy(cp, bytes)
	s.objects[id] = cp
	return nil
}

// PostObject on MemoryStack behaves like a local put followed by a
// get — there is no remote device to RPC to in a single-process stack.
func (s *MemoryStack) PostObject(ctx context.Context, _ object.ObjectId, id object.ObjectId, bytes []byte) (ObjectInfo, error) {
	if err := s.PutObject(ctx, LevelNOC, id, bytes); err != nil {
		return ObjectInfo{}, err
	}
	return s.GetObject(ctx, LevelNOC, id, "")
}

func (s *MemoryStack) RootStateStub(_ *object.ObjectId) RootState {
	return &memoryRootState{store: s}
}

func (s *MemoryStack) Ndn() Ndn           { return s.ndn }
func (s *MemoryStack) Keystore() Keystore { return s.keystore }

type memoryRootState struct {
	store *MemoryStack
}

func (r *memoryRootState) CreatePathOpEnv() PathOpEnv {
	return &memoryPathOpEnv{store: r.store}
}

type pendingWrite struct {
	path, key      string
	id             *object.ObjectId // nil means remove
	expectedPrev   *object.ObjectId
	checkExpected  bool
	requireAbsence bool
}

// memoryPathOpEnv buffers writes and applies them all under one lock
// on Commit, checking every expectation against the then-current state
// (spec.md §5 "Shared state": each set_with_key carries an
// expected_prev and returns a conflict error on mismatch).
type memoryPathOpEnv struct {
	store   *MemoryStack
	pending []pendingWrite
}

func (e *memoryPathOpEnv) GetByKey(_ context.Context, path, key string) (*object.ObjectId, error) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	return e.store.lookupLocked(path, key), nil
}

func (e *memoryPathOpEnv) InsertWithKey(_ context.Context, path, key string, id object.ObjectId) error {
	e.pending = append(e.pending, pendingWrite{path: path, key: key, id: &id, requireAbsence: true})
	return nil
}

// SetWithKey's expectation rule (spec.md §6.1, §5): a non-nil
// expectedPrev is always checked against the current value at commit
// time. A nil expectedPrev means "no prior value expected" unless
// createIfMissing relaxes that into an unconditional upsert.
func (e *memoryPathOpEnv) SetWithKey(_ context.Context, path, key string, id object.ObjectId, expectedPrev *object.ObjectId, createIfMissing bool) (*object.ObjectId, error) {
	e.pending = append(e.pending, pendingWrite{
		path: path, key: key, id: &id,
		expectedPrev:   expectedPrev,
		checkExpected:  expectedPrev != nil || !createIfMissing,
		requireAbsence: false,
	})
	return expectedPrev, nil
}

func (e *memoryPathOpEnv) RemoveWithKey(_ context.Context, path, key string, expected *object.ObjectId) (*object.ObjectId, error) {
	e.pending = append(e.pending, pendingWrite{path: path, key: key, id: nil, expectedPrev: expected, checkExpected: true})
	return expected, nil
}

func (e *memoryPathOpEnv) Commit(_ context.Context) error {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	for _, w := range e.pending {
		current := e.store.lookupLocked(w.path, w.key)
		if w.requireAbsence && current != nil {
			return dsgerr.Newf(dsgerr.SystemVariant(dsgerr.AlreadyExists), "key %s/%s already exists", w.path, w.key)
		}
		if w.checkExpected && !expectationMatches(w.expectedPrev, current) {
			return dsgerr.Newf(dsgerr.SystemVariant(dsgerr.NotMatch), "key %s/%s expectation mismatch", w.path, w.key)
		}
	}

	for _, w := range e.pending {
		bucket := e.store.paths[w.path]
		if bucket == nil {
			bucket = make(map[string]object.ObjectId)
			e.store.paths[w.path] = bucket
		}
		if w.id == nil {
			delete(bucket, w.key)
			continue
		}
		bucket[w.key] = *w.id
	}
	e.pending = nil
	return nil
}

func (s *MemoryStack) lookupLocked(path, key string) *object.ObjectId {
	bucket, ok := s.paths[path]
	if !ok {
		return nil
	}
	id, ok := bucket[key]
	if !ok {
		return nil
	}
	cp := id
	return &cp
}

// expectationMatches compares an expected previous id (nil meaning
// "no prior value") against the actually stored value.
func expectationMatches(expected, current *object.ObjectId) bool {
	if expected == nil {
		return current == nil
	}
	if current == nil {
		return false
	}
	return *expected == *current
}

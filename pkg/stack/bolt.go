package stack

import (
	"context"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
	"github.com/dsgmesh/dsgcore/pkg/object"
)

var (
	bucketObjects = []byte("objects_by_id")
	bucketChunks  = []byte("chunks_by_id")
	bucketPaths   = []byte("paths_by_path_key")
)

// BoltStack is a durable single-process ObjectStack backed by bbolt,
// the way the pack's own node/store packages key a local daemon's
// state off one bbolt file (see DESIGN.md).
type BoltStack struct {
	localDevice object.ObjectId
	keystore    Keystore
	db          *bolt.DB
}

// OpenBoltStack opens (creating if absent) a bbolt-backed stack at path.
func OpenBoltStack(path string, localDevice object.ObjectId, ks Keystore) (*BoltStack, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.IoError), "open bbolt store", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketObjects, bucketChunks, bucketPaths} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.IoError), "create bbolt buckets", err)
	}
	return &BoltStack{localDevice: localDevice, keystore: ks, db: db}, nil
}

func (s *BoltStack) Close() error { return s.db.Close() }

func (s *BoltStack) LocalDeviceId() object.ObjectId { return s.localDevice }

func (s *BoltStack) GetObject(_ context.Context, _ Level, id object.ObjectId, _ string) (ObjectInfo, error) {
	var out ObjectInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketObjects).Get(id.Bytes())
		if b == nil {
			return dsgerr.Newf(dsgerr.SystemVariant(dsgerr.NotFound), "object %s not found", id)
		}
		out = ObjectInfo{Id: id, Bytes: append([]byte(nil), b...), Source: s.localDevice}
		return nil
	})
	return out, err
}

func (s *BoltStack) PutObject(_ context.Context, _ Level, id object.ObjectId, bytes []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketObjects).Put(id.Bytes(), bytes)
	})
}

func (s *BoltStack) PostObject(ctx context.Context, _ object.ObjectId, id object.ObjectId, bytes []byte) (ObjectInfo, error) {
	if err := s.PutObject(ctx, LevelNOC, id, bytes); err != nil {
		return ObjectInfo{}, err
	}
	return s.GetObject(ctx, LevelNOC, id, "")
}

func (s *BoltStack) RootStateStub(_ *object.ObjectId) RootState {
	return &boltRootState{db: s.db}
}

func (s *BoltStack) Ndn() Ndn           { return &boltNdn{db: s.db} }
func (s *BoltStack) Keystore() Keystore { return s.keystore }

type boltRootState struct{ db *bolt.DB }

func (r *boltRootState) CreatePathOpEnv() PathOpEnv {
	return &boltPathOpEnv{db: r.db}
}

func pathKey(path, key string) []byte {
	return []byte(path + "\x00" + key)
}

type boltPathOpEnv struct {
	db      *bolt.DB
	pending []pendingWrite
}

func (e *boltPathOpEnv) GetByKey(_ context.Context, path, key string) (*object.ObjectId, error) {
	var out *object.ObjectId
	err := e.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketPaths).Get(pathKey(path, key))
		if v == nil {
			return nil
		}
		id, err := object.ObjectIdFromBytes(v)
		if err != nil {
			return err
		}
		out = &id
		return nil
	})
	return out, err
}

func (e *boltPathOpEnv) InsertWithKey(_ context.Context, path, key string, id object.ObjectId) error {
	e.pending = append(e.pending, pendingWrite{path: path, key: key, id: &id, requireAbsence: true})
	return nil
}

func (e *boltPathOpEnv) SetWithKey(_ context.Context, path, key string, id object.ObjectId, expectedPrev *object.ObjectId, createIfMissing bool) (*object.ObjectId, error) {
	e.pending = append(e.pending, pendingWrite{
		path: path, key: key, id: &id,
		expectedPrev:  expectedPrev,
		checkExpected: expectedPrev != nil || !createIfMissing,
	})
	return expectedPrev, nil
}

func (e *boltPathOpEnv) RemoveWithKey(_ context.Context, path, key string, expected *object.ObjectId) (*object.ObjectId, error) {
	e.pending = append(e.pending, pendingWrite{path: path, key: key, id: nil, expectedPrev: expected, checkExpected: true})
	return expected, nil
}

// Commit applies every buffered write inside a single bbolt.Update
// transaction, the same "acquired per transaction, released on
// commit/abort" shape spec.md §5 describes for the op-env.
func (e *boltPathOpEnv) Commit(_ context.Context) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketPaths)
		for _, w := range e.pending {
			raw := bucket.Get(pathKey(w.path, w.key))
			var current *object.ObjectId
			if raw != nil {
				id, err := object.ObjectIdFromBytes(raw)
				if err != nil {
					return err
				}
				current = &id
			}
			if w.requireAbsence && current != nil {
				return dsgerr.Newf(dsgerr.SystemVariant(dsgerr.AlreadyExists), "key %s/%s already exists", w.path, w.key)
			}
			if w.checkExpected && !expectationMatches(w.expectedPrev, current) {
				return dsgerr.Newf(dsgerr.SystemVariant(dsgerr.NotMatch), "key %s/%s expectation mismatch", w.path, w.key)
			}
		}
		for _, w := range e.pending {
			k := pathKey(w.path, w.key)
			if w.id == nil {
				if err := bucket.Delete(k); err != nil {
					return err
				}
				continue
			}
			if err := bucket.Put(k, w.id.Bytes()); err != nil {
				return err
			}
		}
		e.pending = nil
		return nil
	})
}

type boltNdn struct{ db *bolt.DB }

func (n *boltNdn) PutData(_ context.Context, chunkId []byte, length uint64, data []byte) error {
	if uint64(len(data)) != length {
		return dsgerr.Newf(dsgerr.SystemVariant(dsgerr.InvalidData), "declared length %d does not match %d bytes", length, len(data))
	}
	return n.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketChunks).Put(chunkId, data)
	})
}

func (n *boltNdn) GetData(_ context.Context, chunkId []byte) ([]byte, error) {
	var out []byte
	err := n.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketChunks).Get(chunkId)
		if v == nil {
			return dsgerr.New(dsgerr.SystemVariant(dsgerr.NotFound), "chunk not found")
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

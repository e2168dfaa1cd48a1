package stack

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dsgmesh/dsgcore/pkg/object"
)

type nullKeystore struct{}

func (nullKeystore) PrivateKey() []byte            { return nil }
func (nullKeystore) Sign(data []byte) ([]byte, error) { return data, nil }

func TestMemoryStackObjectRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStack(object.ObjectId{1}, nullKeystore{})
	id := object.ObjectId{2}

	if err := s.PutObject(ctx, LevelNOC, id, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	info, err := s.GetObject(ctx, LevelNOC, id, "")
	if err != nil {
		t.Fatal(err)
	}
	if string(info.Bytes) != "hello" {
		t.Fatalf("got %q", info.Bytes)
	}
	if _, err := s.GetObject(ctx, LevelNOC, object.ObjectId{9}, ""); err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestMemoryStackPathOpEnvOptimisticConcurrency(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStack(object.ObjectId{1}, nullKeystore{})
	root := s.RootStateStub(nil)

	env := root.CreatePathOpEnv()
	idA := object.ObjectId{0xA}
	if _, err := env.SetWithKey(ctx, "/contracts/c1", "state", idA, nil, true); err != nil {
		t.Fatal(err)
	}
	if err := env.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	got, err := root.CreatePathOpEnv().GetByKey(ctx, "/contracts/c1", "state")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || *got != idA {
		t.Fatalf("expected %v, got %v", idA, got)
	}

	idB := object.ObjectId{0xB}
	env2 := root.CreatePathOpEnv()
	if _, err := env2.SetWithKey(ctx, "/contracts/c1", "state", idB, &idA, false); err != nil {
		t.Fatal(err)
	}
	if err := env2.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	// A second racer using the now-stale idA expectation must be rejected.
	env3 := root.CreatePathOpEnv()
	idC := object.ObjectId{0xC}
	if _, err := env3.SetWithKey(ctx, "/contracts/c1", "state", idC, &idA, false); err != nil {
		t.Fatal(err)
	}
	if err := env3.Commit(ctx); err == nil {
		t.Fatal("expected conflict on stale expected_prev")
	}
}

func TestMemoryStackInsertRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStack(object.ObjectId{1}, nullKeystore{})
	root := s.RootStateStub(nil)

	env := root.CreatePathOpEnv()
	if err := env.InsertWithKey(ctx, "/contracts/c1", "challenge", object.ObjectId{0xD}); err != nil {
		t.Fatal(err)
	}
	if err := env.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	env2 := root.CreatePathOpEnv()
	if err := env2.InsertWithKey(ctx, "/contracts/c1", "challenge", object.ObjectId{0xE}); err != nil {
		t.Fatal(err)
	}
	if err := env2.Commit(ctx); err == nil {
		t.Fatal("expected duplicate-insert rejection")
	}
}

func TestMemoryStackNdnRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStack(object.ObjectId{1}, nullKeystore{})
	ndn := s.Ndn()
	chunkId := []byte("chunk-id-bytes")
	if err := ndn.PutData(ctx, chunkId, 5, []byte("abcde")); err != nil {
		t.Fatal(err)
	}
	got, err := ndn.GetData(ctx, chunkId)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "abcde" {
		t.Fatalf("got %q", got)
	}
}

func TestBoltStackObjectAndPathRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenBoltStack(filepath.Join(dir, "dsg.db"), object.ObjectId{1}, nullKeystore{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	id := object.ObjectId{7}
	if err := s.PutObject(ctx, LevelNOC, id, []byte("payload")); err != nil {
		t.Fatal(err)
	}
	info, err := s.GetObject(ctx, LevelNOC, id, "")
	if err != nil {
		t.Fatal(err)
	}
	if string(info.Bytes) != "payload" {
		t.Fatalf("got %q", info.Bytes)
	}

	root := s.RootStateStub(nil)
	env := root.CreatePathOpEnv()
	if _, err := env.SetWithKey(ctx, "/contracts/c1", "state", id, nil, true); err != nil {
		t.Fatal(err)
	}
	if err := env.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	got, err := root.CreatePathOpEnv().GetByKey(ctx, "/contracts/c1", "state")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || *got != id {
		t.Fatalf("expected %v, got %v", id, got)
	}
}

package contract

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/dsgmesh/dsgcore/pkg/challenge"
	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
	"github.com/dsgmesh/dsgcore/pkg/dsglog"
	"github.com/dsgmesh/dsgcore/pkg/dsgobj"
	"github.com/dsgmesh/dsgcore/pkg/object"
	"github.com/dsgmesh/dsgcore/pkg/stack"
	"github.com/dsgmesh/dsgcore/pkg/transform"
)

// SyncContractState validates and applies a proposed state transition for
// a contract, then dispatches whichever post-commit hook the new state's
// kind implies (spec.md §4.6). It is the single entry point both the
// PreRouter handler (a remote SyncContractState post) and the Prepare/Sync
// hooks themselves (recursing with their own produced state) go through.
func (s *Service) SyncContractState(ctx context.Context, contractId object.ObjectId, newState dsgobj.ContractStateObject) (dsgobj.ContractStateObject, error) {
	path := contractPath(contractId)
	env := s.stack.RootStateStub(nil).CreatePathOpEnv()

	oldId, err := env.GetByKey(ctx, path, stateKey)
	if err != nil {
		return dsgobj.ContractStateObject{}, err
	}

	newId, err := object.IdOf(&newState, dsgobj.ContractStateDescCodec)
	if err != nil {
		return dsgobj.ContractStateObject{}, err
	}

	if newState.Desc.Prev == nil {
		if oldId != nil {
			return s.currentState(ctx, contractId)
		}
		if _, err := s.obtainContract(ctx, contractId); err != nil {
			dsglog.With(dsglog.Fields{"contract": contractId}).WithError(err).Warn("initial contract not obtainable")
			return s.currentState(ctx, contractId)
		}
		if err := env.InsertWithKey(ctx, path, stateKey, newId); err != nil {
			return s.currentState(ctx, contractId)
		}
	} else {
		if oldId == nil || *oldId != *newState.Desc.Prev {
			return s.currentState(ctx, contractId)
		}
		if _, err := env.SetWithKey(ctx, path, stateKey, newId, oldId, false); err != nil {
			return s.currentState(ctx, contractId)
		}
	}

	if err := env.Commit(ctx); err != nil {
		return s.currentState(ctx, contractId)
	}

	if _, err := putState(ctx, s.stack, newState); err != nil {
		return newState, err
	}
	s.RegisterContract(contractId)

	switch newState.Desc.Content.Kind {
	case dsgobj.StateDataSourceChanged:
		return s.prepare(ctx, contractId, newState)
	case dsgobj.StateDataSourcePrepared:
		return s.sync(ctx, contractId, newState)
	default:
		return newState, nil
	}
}

// currentState re-reads whatever state is actually stored for a contract,
// the value every failed-precondition branch of SyncContractState returns
// unchanged (spec.md §4.6 "on failure return current stored state").
func (s *Service) currentState(ctx context.Context, contractId object.ObjectId) (dsgobj.ContractStateObject, error) {
	env := s.stack.RootStateStub(nil).CreatePathOpEnv()
	id, err := env.GetByKey(ctx, contractPath(contractId), stateKey)
	if err != nil {
		return dsgobj.ContractStateObject{}, err
	}
	if id == nil {
		return dsgobj.ContractStateObject{}, dsgerr.New(dsgerr.SystemVariant(dsgerr.NotFound), "contract has no stored state")
	}
	return getState(ctx, s.stack, *id)
}

// obtainContract resolves a Contract object needed for the very first
// state transition: local noc first, then the object stack's router level
// (spec.md §4.6 "the referenced contract object must be obtainable, noc or
// RPC to peer device, and is put to noc").
func (s *Service) obtainContract(ctx context.Context, contractId object.ObjectId) (dsgobj.ContractObject, error) {
	if c, err := getContract(ctx, s.stack, contractId); err == nil {
		return c, nil
	}
	info, err := s.stack.GetObject(ctx, stack.LevelRouter, contractId, "")
	if err != nil {
		return dsgobj.ContractObject{}, err
	}
	c, _, err := object.DecodeObject(info.Bytes, dsgobj.ContractDescCodec, object.EmptyCodec)
	if err != nil {
		return dsgobj.ContractObject{}, err
	}
	if _, err := putContract(ctx, s.stack, c); err != nil {
		return dsgobj.ContractObject{}, err
	}
	return c, nil
}

// prepare runs the §4.6.1 hook: choose a transform by storage kind, apply
// it over the source chunks the DataSourceChanged state names, publish the
// stored chunks, and recurse with the produced DataSourcePrepared state.
// changed.Desc.Content.Chunks carries the source chunk list for this state
// kind (the same field holds stored chunk ids once Kind is
// DataSourcePrepared — see dsgobj.ContractStateDesc).
func (s *Service) prepare(ctx context.Context, contractId object.ObjectId, changed dsgobj.ContractStateObject) (dsgobj.ContractStateObject, error) {
	c, err := s.obtainContract(ctx, contractId)
	if err != nil {
		return changed, err
	}

	sourceIds := changed.Desc.Content.Chunks
	sources := make([][]byte, len(sourceIds))
	for i, id := range sourceIds {
		data, err := s.chunks.Get(ctx, id)
		if err != nil {
			return changed, err
		}
		sources[i] = data
	}

	var stub transform.DataSourceStub
	if c.Desc.Content.StorageKind == dsgobj.StorageBackup {
		key, err := transform.GenerateAesKey()
		if err != nil {
			return changed, err
		}
		lens := make([]uint32, len(sources))
		for i, src := range sources {
			lens[i] = uint32(len(src))
		}
		stub = transform.PlanMerge(lens, s.cfg.SplitSize, &key)
	} else {
		stub = transform.Unchanged()
	}

	storedBytes, err := transform.Apply(sources, stub)
	if err != nil {
		return changed, err
	}

	storedIds := make([]transform.ChunkId, len(storedBytes))
	for i, b := range storedBytes {
		id, err := s.chunks.Put(ctx, b)
		if err != nil {
			return changed, err
		}
		storedIds[i] = id
	}

	stubObj := dsgobj.NewDataSourceStub(contractId, stub)
	stubId, err := putStub(ctx, s.stack, stubObj)
	if err != nil {
		return changed, err
	}

	changedId, err := object.IdOf(&changed, dsgobj.ContractStateDescCodec)
	if err != nil {
		return changed, err
	}

	prepared := dsgobj.NewContractState(contractId, dsgobj.StateDataSourcePrepared, &changedId, uint64(time.Now().Unix()))
	prepared.Desc.Content.Chunks = storedIds
	prepared.Desc.Content.DataSourceStub = &stubId

	return s.SyncContractState(ctx, contractId, prepared)
}

// sync runs the §4.6.2 hook: reuse or create the challenge that will audit
// a prepared state, post it to the miner, and recurse with the produced
// DataSourceSyncing state.
func (s *Service) sync(ctx context.Context, contractId object.ObjectId, prepared dsgobj.ContractStateObject) (dsgobj.ContractStateObject, error) {
	preparedId, err := object.IdOf(&prepared, dsgobj.ContractStateDescCodec)
	if err != nil {
		return prepared, err
	}

	path := contractPath(contractId)
	env := s.stack.RootStateStub(nil).CreatePathOpEnv()

	existingId, err := env.GetByKey(ctx, path, challengeKey)
	if err != nil {
		return prepared, err
	}

	if existingId != nil {
		existing, err := getChallenge(ctx, s.stack, *existingId)
		if err != nil {
			return prepared, err
		}
		if existing.Desc.Content.StateId != preparedId {
			return prepared, dsgerr.New(dsgerr.SystemVariant(dsgerr.AlreadyExists), "a challenge already tracks a different prepared state")
		}
	} else {
		samples, err := challenge.GenerateSamples(rand.Reader, chunkLensOf(prepared.Desc.Content.Chunks), s.cfg.SampleCount, s.cfg.SampleLen)
		if err != nil {
			return prepared, err
		}
		nonce, err := challenge.GenerateNonce(rand.Reader)
		if err != nil {
			return prepared, err
		}
		now := uint64(time.Now().Unix())
		expireAt := now + uint64(s.cfg.InitialChallengeLiveTime.Seconds())
		chal := dsgobj.NewChallenge(contractId, preparedId, nonce, samples, now, expireAt)
		newId, err := putChallenge(ctx, s.stack, chal)
		if err != nil {
			return prepared, err
		}
		if err := env.InsertWithKey(ctx, path, challengeKey, newId); err != nil {
			return prepared, err
		}
		if err := env.Commit(ctx); err != nil {
			return prepared, err
		}
		s.postChallenge(ctx, contractId, chal)
	}

	syncing := dsgobj.NewContractState(contractId, dsgobj.StateDataSourceSyncing, &preparedId, uint64(time.Now().Unix()))
	return s.SyncContractState(ctx, contractId, syncing)
}

// postChallenge ships a freshly created challenge to the contract's miner.
// A delivery failure is logged and swallowed: Tick re-posts any challenge
// that is still pending past atomic_interval, so a dropped post here is
// not fatal to the protocol (spec.md §5 "handler tasks ... partial work
// idempotent or transactional").
func (s *Service) postChallenge(ctx context.Context, contractId object.ObjectId, chal dsgobj.ChallengeObject) {
	c, err := getContract(ctx, s.stack, contractId)
	if err != nil {
		dsglog.With(dsglog.Fields{"contract": contractId}).WithError(err).Warn("cannot resolve miner to post challenge")
		return
	}
	id, err := object.IdOf(&chal, dsgobj.ChallengeDescCodec)
	if err != nil {
		return
	}
	buf := make([]byte, object.MeasureObject(chal, dsgobj.ChallengeDescCodec, object.EmptyCodec))
	if _, err := object.EncodeObject(buf, chal, dsgobj.ChallengeDescCodec, object.EmptyCodec); err != nil {
		return
	}

	// Every object that crosses from this device to the miner travels as
	// a signed Envelope, never as bare bytes (spec.md §6.2) — the
	// signature is what lets a receiving miner trust the challenge came
	// from the contract's actual consumer rather than an impersonator
	// racing the real post.
	env := dsgobj.NewEnvelope(dsgobj.KindChallenge, s.stack.LocalDeviceId().String(), s.nextEnvelopeSeq(), buf)
	if err := env.Sign(s.stack.Keystore().Sign); err != nil {
		dsglog.With(dsglog.Fields{"contract": contractId, "challenge": id}).WithError(err).Warn("failed to sign challenge envelope")
		return
	}
	envBytes, err := env.Marshal()
	if err != nil {
		dsglog.With(dsglog.Fields{"contract": contractId, "challenge": id}).WithError(err).Warn("failed to marshal challenge envelope")
		return
	}

	if _, err := s.stack.PostObject(ctx, c.Desc.Content.Miner, id, envBytes); err != nil {
		dsglog.With(dsglog.Fields{"contract": contractId, "challenge": id}).WithError(err).Warn("challenge post failed, tick will retry")
	}
}

func chunkLensOf(chunks []transform.ChunkId) challenge.ChunkLens {
	lens := make(challenge.ChunkLens, len(chunks))
	for i, c := range chunks {
		lens[i] = uint32(c.Len)
	}
	return lens
}

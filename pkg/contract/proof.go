package contract

import (
	"context"
	"time"

	"github.com/dsgmesh/dsgcore/pkg/challenge"
	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
	"github.com/dsgmesh/dsgcore/pkg/dsglog"
	"github.com/dsgmesh/dsgcore/pkg/dsgobj"
	"github.com/dsgmesh/dsgcore/pkg/object"
)

// HandleProof verifies a submitted proof against its challenge and, on
// success, signs it and advances the contract to DataSourceStored (spec.md
// §4.6 "Proof handler"). It is idempotent: if a signed proof already sits
// under the same id, it is returned verbatim rather than reverified.
func (s *Service) HandleProof(ctx context.Context, contractId object.ObjectId, proof dsgobj.ProofObject) (dsgobj.ProofObject, error) {
	proofId, err := object.IdOf(&proof, dsgobj.ProofDescCodec)
	if err != nil {
		return dsgobj.ProofObject{}, err
	}

	if existing, err := getProof(ctx, s.stack, proofId); err == nil && dsgobj.IsAccepted(existing) {
		return existing, nil
	}

	chal, err := getChallenge(ctx, s.stack, proof.Desc.Content.ChallengeId)
	if err != nil {
		return dsgobj.ProofObject{}, err
	}

	// A challenge's StateId names either the DataSourcePrepared state it
	// audits for an initial commit, or the DataSourceStored state it
	// re-audits as a periodic heartbeat (spec.md §4.6 Tick "heartbeat
	// audit"). For a prepared state the chain's current head must be the
	// DataSourceSyncing state directly on top of it; for a stored state
	// the head must be that state itself. Otherwise the proof is rejected
	// with ErrorState (spec.md §5 "Proof
	// arriving before the referenced state is persisted is rejected with
	// ErrorState, client retries").
	refState, err := getState(ctx, s.stack, chal.Desc.Content.StateId)
	if err != nil {
		return dsgobj.ProofObject{}, err
	}
	if refState.Desc.Content.DataSourceStub == nil {
		return dsgobj.ProofObject{}, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "referenced state has no data source stub")
	}

	head, err := s.currentState(ctx, contractId)
	if err != nil {
		return dsgobj.ProofObject{}, err
	}
	headId, err := object.IdOf(&head, dsgobj.ContractStateDescCodec)
	if err != nil {
		return dsgobj.ProofObject{}, err
	}

	switch refState.Desc.Content.Kind {
	case dsgobj.StateDataSourcePrepared:
		if head.Desc.Content.Kind != dsgobj.StateDataSourceSyncing || head.Desc.Prev == nil || *head.Desc.Prev != chal.Desc.Content.StateId {
			return dsgobj.ProofObject{}, dsgerr.New(dsgerr.SystemVariant(dsgerr.ErrorState),
				"proof received before its contract reached DataSourceSyncing")
		}
	case dsgobj.StateDataSourceStored:
		if headId != chal.Desc.Content.StateId {
			return dsgobj.ProofObject{}, dsgerr.New(dsgerr.SystemVariant(dsgerr.ErrorState),
				"heartbeat proof no longer matches the contract's current stored state")
		}
	default:
		return dsgobj.ProofObject{}, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "challenge references an unexpected state kind")
	}

	stubObj, err := getStub(ctx, s.stack, *refState.Desc.Content.DataSourceStub)
	if err != nil {
		return dsgobj.ProofObject{}, err
	}

	sources, err := s.readSources(ctx, contractId)
	if err != nil {
		return dsgobj.ProofObject{}, err
	}

	ok, err := challenge.VerifyProof(sources, stubObj.Desc.Content.Stub, chal.Desc.Content.Samples, proof.Desc.Content.Responses)
	if err != nil {
		return dsgobj.ProofObject{}, err
	}
	if !ok {
		return dsgobj.ProofObject{}, dsgerr.New(dsgerr.SystemVariant(dsgerr.NotMatch), "proof does not match expected sample bytes")
	}

	sig, err := s.stack.Keystore().Sign(proofId[:])
	if err != nil {
		return dsgobj.ProofObject{}, err
	}
	proof.DescSign = append(proof.DescSign, object.Signature{SignerIndex: 0, Sign: sig})

	if _, err := putProof(ctx, s.stack, proof); err != nil {
		return dsgobj.ProofObject{}, err
	}

	stored := dsgobj.NewContractState(contractId, dsgobj.StateDataSourceStored, &headId, uint64(time.Now().Unix()))
	stored.Desc.Content.Chunks = refState.Desc.Content.Chunks
	stored.Desc.Content.DataSourceStub = refState.Desc.Content.DataSourceStub
	if _, err := s.SyncContractState(ctx, contractId, stored); err != nil {
		return dsgobj.ProofObject{}, err
	}

	// The fulfilled challenge no longer tracks anything pending; clear it
	// so Tick does not mistake its now-stale expire_at for an unanswered
	// challenge and break a contract that just proved itself.
	env := s.stack.RootStateStub(nil).CreatePathOpEnv()
	challengeId := proof.Desc.Content.ChallengeId
	if _, err := env.RemoveWithKey(ctx, contractPath(contractId), challengeKey, &challengeId); err != nil {
		dsglog.With(dsglog.Fields{"contract": contractId}).WithError(err).Warn("failed to clear fulfilled challenge")
	} else if err := env.Commit(ctx); err != nil {
		dsglog.With(dsglog.Fields{"contract": contractId}).WithError(err).Warn("failed to commit challenge removal")
	}

	return proof, nil
}

// readSources reconstructs a contract's original source chunks from the
// DataSourceChanged state that preceded its current DataSourcePrepared
// link in the chain, the inputs VerifyProof re-derives expected sample
// bytes from (spec.md §4.5 "Proof verification" step 3 re-runs the
// forward transform over the original source chunks, not the stored
// ones, so a miner cannot forge a proof by tampering with its own copy).
func (s *Service) readSources(ctx context.Context, contractId object.ObjectId) ([][]byte, error) {
	changed, err := s.dataSourceChangedState(ctx, contractId)
	if err != nil {
		return nil, err
	}
	sources := make([][]byte, len(changed.Desc.Content.Chunks))
	for i, id := range changed.Desc.Content.Chunks {
		data, err := s.chunks.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		sources[i] = data
	}
	return sources, nil
}

// dataSourceChangedState walks the append-only state chain backward from
// the current state until it finds the DataSourceChanged link that names
// the source chunks in effect for the contract's current data.
func (s *Service) dataSourceChangedState(ctx context.Context, contractId object.ObjectId) (dsgobj.ContractStateObject, error) {
	cur, err := s.currentState(ctx, contractId)
	if err != nil {
		return dsgobj.ContractStateObject{}, err
	}
	for {
		if cur.Desc.Content.Kind == dsgobj.StateDataSourceChanged {
			return cur, nil
		}
		if cur.Desc.Prev == nil {
			return dsgobj.ContractStateObject{}, dsgerr.New(dsgerr.SystemVariant(dsgerr.NotFound), "no DataSourceChanged state in chain")
		}
		cur, err = getState(ctx, s.stack, *cur.Desc.Prev)
		if err != nil {
			return dsgobj.ContractStateObject{}, err
		}
	}
}

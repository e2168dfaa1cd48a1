package contract

import (
	"context"

	"github.com/dsgmesh/dsgcore/pkg/dsgobj"
	"github.com/dsgmesh/dsgcore/pkg/object"
)

// ContractSnapshot is one contract's point-in-time status for operator
// inspection, the Go analogue of the teacher's `cmd/bee status` output.
type ContractSnapshot struct {
	ContractId   object.ObjectId
	StateId      object.ObjectId
	StateKind    dsgobj.StateKind
	HasChallenge bool
	ChallengeId  object.ObjectId
}

// DebugSnapshot reports every known contract's current state kind and
// whether it has a pending challenge, without mutating anything — grounded
// on the original service's debug status dump (original_source/service/dsg/
// service/src/service.rs), reworked here as a read-only query a `status`
// subcommand or an admin handler can call directly.
func (s *Service) DebugSnapshot(ctx context.Context) ([]ContractSnapshot, error) {
	env := s.stack.RootStateStub(nil).CreatePathOpEnv()
	ids := s.knownContracts()
	out := make([]ContractSnapshot, 0, len(ids))

	for _, id := range ids {
		path := contractPath(id)
		stateId, err := env.GetByKey(ctx, path, stateKey)
		if err != nil {
			return nil, err
		}
		if stateId == nil {
			continue
		}
		state, err := getState(ctx, s.stack, *stateId)
		if err != nil {
			return nil, err
		}

		snap := ContractSnapshot{ContractId: id, StateId: *stateId, StateKind: state.Desc.Content.Kind}
		challengeId, err := env.GetByKey(ctx, path, challengeKey)
		if err != nil {
			return nil, err
		}
		if challengeId != nil {
			snap.HasChallenge = true
			snap.ChallengeId = *challengeId
		}
		out = append(out, snap)
	}
	return out, nil
}

package contract

import (
	"context"
	"sort"

	"github.com/dsgmesh/dsgcore/pkg/dsgobj"
	"github.com/dsgmesh/dsgcore/pkg/object"
)

// HandleQuery answers either of the Query handler's two request shapes
// (spec.md §4.6 "Query handler"): QueryContracts pages through this
// service's known contracts, QueryStates reports which of a caller's
// expected states have since diverged. Both are read-only, taken as one
// snapshot over a single op-env the way the teacher's read-only RPC
// handlers never mutate state.
func (s *Service) HandleQuery(ctx context.Context, q dsgobj.Query) (interface{}, error) {
	switch q.Kind.Tag {
	case dsgobj.QueryKindContracts:
		return s.queryContracts(ctx, q.Kind.Skip, q.Kind.Limit)
	case dsgobj.QueryKindStates:
		return s.queryStates(ctx, q.Kind.Contracts)
	default:
		return nil, nil
	}
}

func (s *Service) queryContracts(ctx context.Context, skip uint32, limit *uint32) ([]dsgobj.ContractsPageEntry, error) {
	ids := s.knownContracts()
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	if int(skip) >= len(ids) {
		return nil, nil
	}
	ids = ids[skip:]
	if limit != nil && uint32(len(ids)) > *limit {
		ids = ids[:*limit]
	}

	env := s.stack.RootStateStub(nil).CreatePathOpEnv()
	page := make([]dsgobj.ContractsPageEntry, 0, len(ids))
	for _, id := range ids {
		stateId, err := env.GetByKey(ctx, contractPath(id), stateKey)
		if err != nil {
			return nil, err
		}
		if stateId == nil {
			continue
		}
		page = append(page, dsgobj.ContractsPageEntry{ContractId: id, StateId: *stateId})
	}
	return page, nil
}

func (s *Service) queryStates(ctx context.Context, expected []dsgobj.ExpectedState) ([]dsgobj.ExpectedState, error) {
	env := s.stack.RootStateStub(nil).CreatePathOpEnv()
	var diverged []dsgobj.ExpectedState
	for _, e := range expected {
		current, err := env.GetByKey(ctx, contractPath(e.ContractId), stateKey)
		if err != nil {
			return nil, err
		}
		if statesDiffer(e.ExpectedState, current) {
			diverged = append(diverged, dsgobj.ExpectedState{ContractId: e.ContractId, ExpectedState: current})
		}
	}
	return diverged, nil
}

func statesDiffer(expected, current *object.ObjectId) bool {
	if expected == nil {
		return current != nil
	}
	if current == nil {
		return true
	}
	return *expected != *current
}

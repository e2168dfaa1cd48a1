// Package contract implements the DSG contract state machine (spec.md
// §4.6): the SyncContractState/Proof/Query handlers, the Prepare/Sync
// post-commit hooks, and the periodic Tick that ages challenges and
// drives terminal-state transitions. It is the integration point that
// wires pkg/dsgobj's wire objects, pkg/transform's data-source
// pipeline, pkg/challenge's sampling/verification, and pkg/stack's
// ObjectStack together into one running service, the way the teacher's
// pkg/swim wires gossip, membership and failure detection around one
// Node.
package contract

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dsgmesh/dsgcore/pkg/chunkstore"
	"github.com/dsgmesh/dsgcore/pkg/dsgconfig"
	"github.com/dsgmesh/dsgcore/pkg/object"
	"github.com/dsgmesh/dsgcore/pkg/stack"
)

// Service runs the DSG contract protocol against one ObjectStack.
// Exactly one Service exists per local device: a miner and a consumer
// each run their own, talking to each other only through posted
// objects (spec.md §4.6 "State transitions are driven exclusively by
// a remote SyncContractState post, a remote Proof post, and a
// periodic tick").
type Service struct {
	stack  stack.ObjectStack
	chunks chunkstore.Store
	cfg    dsgconfig.Config

	mu    sync.Mutex
	known map[object.ObjectId]struct{}

	envelopeSeq uint64
}

// NewService wires a Service against a stack and a chunk store.
func NewService(st stack.ObjectStack, chunks chunkstore.Store, cfg dsgconfig.Config) *Service {
	return &Service{
		stack:  st,
		chunks: chunks,
		cfg:    cfg,
		known:  make(map[object.ObjectId]struct{}),
	}
}

// RegisterContract adds a contract to this service's known set so Tick
// and the Query handler's QueryContracts can enumerate it. spec.md's
// ObjectStack/PathOpEnv deliberately exposes no "list keys" operation
// (§6.1), so a service-local index is the only way to answer "which
// contracts exist" without scanning every possible id; SyncContractState
// also calls this whenever it observes a contract's very first
// (Initial, prev=nil) state.
func (s *Service) RegisterContract(id object.ObjectId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.known[id] = struct{}{}
}

// knownContracts returns a snapshot of every registered contract id.
func (s *Service) knownContracts() []object.ObjectId {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]object.ObjectId, 0, len(s.known))
	for id := range s.known {
		out = append(out, id)
	}
	return out
}

// contractPath is the path-store prefix spec.md §4.6 names:
//
//	/dsg-service/contracts/{contract_id}/state
//	/dsg-service/contracts/{contract_id}/challenge
func contractPath(contractId object.ObjectId) string {
	return fmt.Sprintf("/dsg-service/contracts/%s", contractId)
}

const (
	stateKey     = "state"
	challengeKey = "challenge"
)

// nextEnvelopeSeq returns this service's next outbound envelope sequence
// number, the per-sender counter a receiver's replay bookkeeping would
// track against (spec.md §6.2).
func (s *Service) nextEnvelopeSeq() uint64 {
	return atomic.AddUint64(&s.envelopeSeq, 1)
}

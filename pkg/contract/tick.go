package contract

import (
	"context"
	"crypto/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dsgmesh/dsgcore/pkg/challenge"
	"github.com/dsgmesh/dsgcore/pkg/dsglog"
	"github.com/dsgmesh/dsgcore/pkg/dsgobj"
	"github.com/dsgmesh/dsgcore/pkg/object"
)

// Tick ages every known contract's pending challenge and drives the
// terminal/heartbeat transitions spec.md §4.6 names: re-post a challenge
// past atomic_interval, break a contract whose challenge expired, execute
// one whose end_at has passed, or raise a fresh heartbeat challenge once
// challenge_interval has elapsed on a DataSourceStored contract. Each
// contract is independent, op-env writes are already serialized per key
// by the store, so the work fans out with an errgroup rather than a
// sequential loop the way the teacher's pkg/swim dispatches per-peer
// probes concurrently.
func (s *Service) Tick(ctx context.Context) error {
	now := uint64(time.Now().Unix())
	atomicSeconds := uint64(s.cfg.AtomicInterval.Seconds())

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range s.knownContracts() {
		id := id
		g.Go(func() error {
			if err := s.tickContract(gctx, id, now, atomicSeconds); err != nil {
				dsglog.With(dsglog.Fields{"contract": id}).WithError(err).Warn("tick step failed")
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) tickContract(ctx context.Context, contractId object.ObjectId, now, atomicSeconds uint64) error {
	env := s.stack.RootStateStub(nil).CreatePathOpEnv()
	challengeId, err := env.GetByKey(ctx, contractPath(contractId), challengeKey)
	if err != nil {
		return err
	}

	if challengeId != nil {
		return s.tickPendingChallenge(ctx, contractId, *challengeId, now, atomicSeconds)
	}
	return s.tickNoChallenge(ctx, contractId, now)
}

func (s *Service) tickPendingChallenge(ctx context.Context, contractId, challengeId object.ObjectId, now, atomicSeconds uint64) error {
	chal, err := getChallenge(ctx, s.stack, challengeId)
	if err != nil {
		return err
	}

	switch challenge.NextAction(now, chal.Desc.Content.CreateAt, chal.Desc.Content.ExpireAt, atomicSeconds) {
	case challenge.ActionRepost:
		s.postChallenge(ctx, contractId, chal)
		return nil
	case challenge.ActionBreak:
		return s.breakContract(ctx, contractId)
	default:
		return nil
	}
}

// breakContract transitions a non-terminal contract to ContractBroken
// after its pending challenge's expire_at has passed with no proof.
func (s *Service) breakContract(ctx context.Context, contractId object.ObjectId) error {
	cur, err := s.currentState(ctx, contractId)
	if err != nil {
		return err
	}
	if cur.Desc.Content.Kind.IsTerminal() {
		return nil
	}
	curId, err := object.IdOf(&cur, dsgobj.ContractStateDescCodec)
	if err != nil {
		return err
	}
	broken := dsgobj.NewContractState(contractId, dsgobj.StateContractBroken, &curId, uint64(time.Now().Unix()))
	_, err = s.SyncContractState(ctx, contractId, broken)
	return err
}

// tickNoChallenge handles a contract with nothing outstanding: either it
// has run past its end date and should be marked executed, or it has sat
// quietly in DataSourceStored long enough to warrant a heartbeat audit.
func (s *Service) tickNoChallenge(ctx context.Context, contractId object.ObjectId, now uint64) error {
	cur, err := s.currentState(ctx, contractId)
	if err != nil {
		return err
	}
	if cur.Desc.Content.Kind != dsgobj.StateDataSourceStored {
		return nil
	}

	c, err := getContract(ctx, s.stack, contractId)
	if err != nil {
		return err
	}
	if now > c.Desc.Content.EndAt {
		curId, err := object.IdOf(&cur, dsgobj.ContractStateDescCodec)
		if err != nil {
			return err
		}
		executed := dsgobj.NewContractState(contractId, dsgobj.StateContractExecuted, &curId, now)
		_, err = s.SyncContractState(ctx, contractId, executed)
		return err
	}

	if cur.Desc.CreateTime != nil && now-*cur.Desc.CreateTime > uint64(s.cfg.ChallengeInterval.Seconds()) {
		return s.createHeartbeatChallenge(ctx, contractId, cur)
	}
	return nil
}

// createHeartbeatChallenge audits a contract already at rest in
// DataSourceStored, re-sampling the same stored chunks with a
// shorter-lived (store_challenge) challenge (spec.md §4.6 Tick).
func (s *Service) createHeartbeatChallenge(ctx context.Context, contractId object.ObjectId, cur dsgobj.ContractStateObject) error {
	curId, err := object.IdOf(&cur, dsgobj.ContractStateDescCodec)
	if err != nil {
		return err
	}
	samples, err := challenge.GenerateSamples(rand.Reader, chunkLensOf(cur.Desc.Content.Chunks), s.cfg.SampleCount, s.cfg.SampleLen)
	if err != nil {
		return err
	}
	nonce, err := challenge.GenerateNonce(rand.Reader)
	if err != nil {
		return err
	}
	now := uint64(time.Now().Unix())
	expireAt := now + uint64(s.cfg.StoreChallengeLiveTime.Seconds())
	chal := dsgobj.NewChallenge(contractId, curId, nonce, samples, now, expireAt)
	newId, err := putChallenge(ctx, s.stack, chal)
	if err != nil {
		return err
	}

	env := s.stack.RootStateStub(nil).CreatePathOpEnv()
	if err := env.InsertWithKey(ctx, contractPath(contractId), challengeKey, newId); err != nil {
		return err
	}
	if err := env.Commit(ctx); err != nil {
		return err
	}
	s.postChallenge(ctx, contractId, chal)
	return nil
}

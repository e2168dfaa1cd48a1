package contract

import (
	"context"

	"github.com/dsgmesh/dsgcore/pkg/dsgobj"
	"github.com/dsgmesh/dsgcore/pkg/object"
	"github.com/dsgmesh/dsgcore/pkg/stack"
)

// Each putX below computes an object's id, encodes it and writes it to
// the local object cache; each getX reads and decodes it back. The five
// pairs are the generic object.Encode/DecodeObject plumbing specialised
// per dsgobj wire type, since Go generics don't
// let a single helper close over "which DescT/BodyT this call needs"
// the way a Rust trait object would.

func putContract(ctx context.Context, st stack.ObjectStack, c dsgobj.ContractObject) (object.ObjectId, error) {
	id, err := object.IdOf(&c, dsgobj.ContractDescCodec)
	if err != nil {
		return object.ObjectId{}, err
	}
	buf := make([]byte, object.MeasureObject(c, dsgobj.ContractDescCodec, object.EmptyCodec))
	if _, err := object.EncodeObject(buf, c, dsgobj.ContractDescCodec, object.EmptyCodec); err != nil {
		return object.ObjectId{}, err
	}
	if err := st.PutObject(ctx, stack.LevelNOC, id, buf); err != nil {
		return object.ObjectId{}, err
	}
	return id, nil
}

func getContract(ctx context.Context, st stack.ObjectStack, id object.ObjectId) (dsgobj.ContractObject, error) {
	info, err := st.GetObject(ctx, stack.LevelNOC, id, "")
	if err != nil {
		return dsgobj.ContractObject{}, err
	}
	obj, _, err := object.DecodeObject(info.Bytes, dsgobj.ContractDescCodec, object.EmptyCodec)
	return obj, err
}

func putState(ctx context.Context, st stack.ObjectStack, s dsgobj.ContractStateObject) (object.ObjectId, error) {
	id, err := object.IdOf(&s, dsgobj.ContractStateDescCodec)
	if err != nil {
		return object.ObjectId{}, err
	}
	buf := make([]byte, object.MeasureObject(s, dsgobj.ContractStateDescCodec, object.EmptyCodec))
	if _, err := object.EncodeObject(buf, s, dsgobj.ContractStateDescCodec, object.EmptyCodec); err != nil {
		return object.ObjectId{}, err
	}
	if err := st.PutObject(ctx, stack.LevelNOC, id, buf); err != nil {
		return object.ObjectId{}, err
	}
	return id, nil
}

func getState(ctx context.Context, st stack.ObjectStack, id object.ObjectId) (dsgobj.ContractStateObject, error) {
	info, err := st.GetObject(ctx, stack.LevelNOC, id, "")
	if err != nil {
		return dsgobj.ContractStateObject{}, err
	}
	obj, _, err := object.DecodeObject(info.Bytes, dsgobj.ContractStateDescCodec, object.EmptyCodec)
	return obj, err
}

func putChallenge(ctx context.Context, st stack.ObjectStack, c dsgobj.ChallengeObject) (object.ObjectId, error) {
	id, err := object.IdOf(&c, dsgobj.ChallengeDescCodec)
	if err != nil {
		return object.ObjectId{}, err
	}
	buf := make([]byte, object.MeasureObject(c, dsgobj.ChallengeDescCodec, object.EmptyCodec))
	if _, err := object.EncodeObject(buf, c, dsgobj.ChallengeDescCodec, object.EmptyCodec); err != nil {
		return object.ObjectId{}, err
	}
	if err := st.PutObject(ctx, stack.LevelNOC, id, buf); err != nil {
		return object.ObjectId{}, err
	}
	return id, nil
}

func getChallenge(ctx context.Context, st stack.ObjectStack, id object.ObjectId) (dsgobj.ChallengeObject, error) {
	info, err := st.GetObject(ctx, stack.LevelNOC, id, "")
	if err != nil {
		return dsgobj.ChallengeObject{}, err
	}
	obj, _, err := object.DecodeObject(info.Bytes, dsgobj.ChallengeDescCodec, object.EmptyCodec)
	return obj, err
}

func putProof(ctx context.Context, st stack.ObjectStack, p dsgobj.ProofObject) (object.ObjectId, error) {
	id, err := object.IdOf(&p, dsgobj.ProofDescCodec)
	if err != nil {
		return object.ObjectId{}, err
	}
	buf := make([]byte, object.MeasureObject(p, dsgobj.ProofDescCodec, object.EmptyCodec))
	if _, err := object.EncodeObject(buf, p, dsgobj.ProofDescCodec, object.EmptyCodec); err != nil {
		return object.ObjectId{}, err
	}
	if err := st.PutObject(ctx, stack.LevelNOC, id, buf); err != nil {
		return object.ObjectId{}, err
	}
	return id, nil
}

func getProof(ctx context.Context, st stack.ObjectStack, id object.ObjectId) (dsgobj.ProofObject, error) {
	info, err := st.GetObject(ctx, stack.LevelNOC, id, "")
	if err != nil {
		return dsgobj.ProofObject{}, err
	}
	obj, _, err := object.DecodeObject(info.Bytes, dsgobj.ProofDescCodec, object.EmptyCodec)
	return obj, err
}

func putStub(ctx context.Context, st stack.ObjectStack, s dsgobj.DataSourceStubObject) (object.ObjectId, error) {
	id, err := object.IdOf(&s, dsgobj.DataSourceStubDescCodec)
	if err != nil {
		return object.ObjectId{}, err
	}
	buf := make([]byte, object.MeasureObject(s, dsgobj.DataSourceStubDescCodec, object.EmptyCodec))
	if _, err := object.EncodeObject(buf, s, dsgobj.DataSourceStubDescCodec, object.EmptyCodec); err != nil {
		return object.ObjectId{}, err
	}
	if err := st.PutObject(ctx, stack.LevelNOC, id, buf); err != nil {
		return object.ObjectId{}, err
	}
	return id, nil
}

func getStub(ctx context.Context, st stack.ObjectStack, id object.ObjectId) (dsgobj.DataSourceStubObject, error) {
	info, err := st.GetObject(ctx, stack.LevelNOC, id, "")
	if err != nil {
		return dsgobj.DataSourceStubObject{}, err
	}
	obj, _, err := object.DecodeObject(info.Bytes, dsgobj.DataSourceStubDescCodec, object.EmptyCodec)
	return obj, err
}

package dsgobj

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/dsgmesh/dsgcore/pkg/object"
)

func TestContractRoundTrip(t *testing.T) {
	consumer := object.ObjectId{1}
	miner := object.ObjectId{2}
	c := NewContract(consumer, miner, StorageBackup, 1000, 2000, []byte("witness"))

	buf := make([]byte, object.MeasureObject(c, ContractDescCodec, object.EmptyCodec))
	if _, err := object.EncodeObject(buf, c, ContractDescCodec, object.EmptyCodec); err != nil {
		t.Fatal(err)
	}
	got, rest, err := object.DecodeObject(buf, ContractDescCodec, object.EmptyCodec)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("leftover bytes: %d", len(rest))
	}
	if got.Desc.Content.StorageKind != StorageBackup {
		t.Fatalf("storage kind mismatch: %v", got.Desc.Content.StorageKind)
	}
	if got.Desc.Content.Consumer != consumer || got.Desc.Content.Miner != miner {
		t.Fatalf("party mismatch")
	}
	if !bytes.Equal(got.Desc.Content.Witness, []byte("witness")) {
		t.Fatalf("witness mismatch")
	}
}

func TestContractStateChainPrevLinksById(t *testing.T) {
	contractId := object.ObjectId{9}
	initial := NewContractState(contractId, StateInitial, nil, 1000)
	initialId, err := object.IdOf(&initial, ContractStateDescCodec)
	if err != nil {
		t.Fatal(err)
	}

	next := NewContractState(contractId, StateDataSourceChanged, &initialId, 1001)
	if next.Desc.Prev == nil || *next.Desc.Prev != initialId {
		t.Fatalf("prev link mismatch")
	}

	buf := make([]byte, object.MeasureObject(next, ContractStateDescCodec, object.EmptyCodec))
	if _, err := object.EncodeObject(buf, next, ContractStateDescCodec, object.EmptyCodec); err != nil {
		t.Fatal(err)
	}
	got, _, err := object.DecodeObject(buf, ContractStateDescCodec, object.EmptyCodec)
	if err != nil {
		t.Fatal(err)
	}
	if got.Desc.Content.Kind != StateDataSourceChanged {
		t.Fatalf("kind mismatch: %v", got.Desc.Content.Kind)
	}
	if got.Desc.Prev == nil || *got.Desc.Prev != initialId {
		t.Fatalf("prev round trip mismatch")
	}
}

func TestChallengeRoundTrip(t *testing.T) {
	var nonce [32]byte
	copy(nonce[:], []byte("0123456789abcdef0123456789abcdef"))
	ch := NewChallenge(object.ObjectId{1}, object.ObjectId{2}, nonce,
		[]Sample{{ChunkIndex: 0, Offset: 10, Length: 100}, {ChunkIndex: 3, Offset: 0, Length: 16}},
		1000, 2000)

	buf := make([]byte, object.MeasureObject(ch, ChallengeDescCodec, object.EmptyCodec))
	if _, err := object.EncodeObject(buf, ch, ChallengeDescCodec, object.EmptyCodec); err != nil {
		t.Fatal(err)
	}
	got, _, err := object.DecodeObject(buf, ChallengeDescCodec, object.EmptyCodec)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Desc.Content.Samples) != 2 {
		t.Fatalf("sample count mismatch: %d", len(got.Desc.Content.Samples))
	}
	if got.Desc.Content.Samples[1].ChunkIndex != 3 {
		t.Fatalf("sample content mismatch")
	}
	if got.Desc.Content.Samples[0].Offset != 10 {
		t.Fatalf("offset mismatch: %d", got.Desc.Content.Samples[0].Offset)
	}
	if got.Desc.Content.Nonce != nonce {
		t.Fatalf("nonce mismatch")
	}
}

func TestProofIdStableAcrossAcceptance(t *testing.T) {
	p := NewProof(object.ObjectId{7}, []SampleResponse{{Data: []byte("abc")}})
	id1, err := object.IdOf(&p, ProofDescCodec)
	if err != nil {
		t.Fatal(err)
	}
	if IsAccepted(p) {
		t.Fatal("fresh proof should not be accepted")
	}
	p.DescSign = append(p.DescSign, object.Signature{SignerIndex: 0, Sign: []byte("verifier-sig")})
	if !IsAccepted(p) {
		t.Fatal("proof with a signature should be accepted")
	}
	id2, err := object.IdOf(&p, ProofDescCodec)
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("proof id changed after acceptance: %v vs %v", id1, id2)
	}
}

func TestQueryContractsRoundTrip(t *testing.T) {
	limit := uint32(50)
	q := NewQueryContracts(10, &limit)
	buf := make([]byte, QueryCodec.Measure(q, 0))
	if _, err := QueryCodec.Encode(buf, q, 0); err != nil {
		t.Fatal(err)
	}
	got, _, err := QueryCodec.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind.Tag != QueryKindContracts || got.Kind.Skip != 10 || got.Kind.Limit == nil || *got.Kind.Limit != 50 {
		t.Fatalf("query contracts round trip failed: %+v", got.Kind)
	}
}

func TestQueryStatesRoundTrip(t *testing.T) {
	expected := object.ObjectId{5}
	q := NewQueryStates([]ExpectedState{
		{ContractId: object.ObjectId{1}, ExpectedState: &expected},
		{ContractId: object.ObjectId{2}, ExpectedState: nil},
	})
	buf := make([]byte, QueryCodec.Measure(q, 0))
	if _, err := QueryCodec.Encode(buf, q, 0); err != nil {
		t.Fatal(err)
	}
	got, _, err := QueryCodec.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Kind.Contracts) != 2 {
		t.Fatalf("contract count mismatch")
	}
	if got.Kind.Contracts[0].ExpectedState == nil || *got.Kind.Contracts[0].ExpectedState != expected {
		t.Fatalf("expected state mismatch")
	}
	if got.Kind.Contracts[1].ExpectedState != nil {
		t.Fatalf("expected nil state for second entry")
	}
}

func TestEnvelopeSignAndVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	env := NewEnvelope(KindProof, "consumer-id-hex", 1, []byte("payload-bytes"))
	sign := func(data []byte) ([]byte, error) { return ed25519.Sign(priv, data), nil }
	if err := env.Sign(sign); err != nil {
		t.Fatal(err)
	}
	data, err := env.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	got, err := UnmarshalEnvelope(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := got.Verify(pub); err != nil {
		t.Fatalf("verification failed: %v", err)
	}
	if !bytes.Equal(got.Payload, env.Payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestEnvelopeVerifyRejectsTamperedPayload(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	env := NewEnvelope(KindQuery, "consumer-id-hex", 1, []byte("original"))
	sign := func(data []byte) ([]byte, error) { return ed25519.Sign(priv, data), nil }
	if err := env.Sign(sign); err != nil {
		t.Fatal(err)
	}
	env.Payload = []byte("tampered")
	if err := env.Verify(pub); err == nil {
		t.Fatal("expected verification failure on tampered payload")
	}
}

package dsgobj

import (
	"crypto/ed25519"
	"fmt"
	"sort"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
)

// MessageKind discriminates an Envelope's payload, mirroring the
// service's three handlers plus their responses (spec.md §4.6).
type MessageKind uint16

const (
	KindSyncContractState MessageKind = iota + 1
	KindSyncContractStateReply
	KindProof
	KindProofReply
	KindQuery
	KindQueryReply
	KindChallenge
)

var canonicalMode cbor.EncMode

func init() {
	var err error
	canonicalMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dsgobj: failed to build canonical CBOR mode: %v", err))
	}
}

// Envelope is the signed transport wrapper every consumer<->miner
// message travels in, the DSG analogue of Beenet's BaseFrame: a kind,
// a sender id, a sequence number and timestamp for replay bookkeeping,
// an opaque payload (an already codec-encoded NamedObject or Query),
// and an Ed25519 signature over everything else.
type Envelope struct {
	V       uint16      `cbor:"v"`
	Kind    MessageKind `cbor:"kind"`
	From    string      `cbor:"from"`
	Seq     uint64      `cbor:"seq"`
	TS      uint64      `cbor:"ts"`
	Payload []byte      `cbor:"payload"`
	Sig     []byte      `cbor:"sig"`
}

const envelopeVersion uint16 = 1

// NewEnvelope builds an unsigned envelope stamped with the current time.
func NewEnvelope(kind MessageKind, from string, seq uint64, payload []byte) *Envelope {
	return &Envelope{
		V:       envelopeVersion,
		Kind:    kind,
		From:    from,
		Seq:     seq,
		TS:      uint64(time.Now().UnixMilli()),
		Payload: payload,
	}
}

// encodeForSigning canonically encodes the envelope with "sig" excluded,
// the same field-deletion-then-re-encode trick Beenet's cborcanon uses.
func (e *Envelope) encodeForSigning() ([]byte, error) {
	data, err := canonicalMode.Marshal(e)
	if err != nil {
		return nil, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.InvalidData), "cbor marshal for signing", err)
	}
	var m map[string]interface{}
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.InvalidData), "cbor unmarshal for signing", err)
	}
	delete(m, "sig")
	return marshalSorted(m)
}

func marshalSorted(m map[string]interface{}) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make(map[string]interface{}, len(m))
	for _, k := range keys {
		ordered[k] = m[k]
	}
	return canonicalMode.Marshal(ordered)
}

// Sign signs the envelope with the caller's signing function, matching
// pkg/stack.Keystore's Sign(data []byte) ([]byte, error) shape so a
// sender never has to expose its raw private key to this package.
func (e *Envelope) Sign(sign func([]byte) ([]byte, error)) error {
	data, err := e.encodeForSigning()
	if err != nil {
		return err
	}
	sig, err := sign(data)
	if err != nil {
		return dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.InvalidData), "signing envelope", err)
	}
	e.Sig = sig
	return nil
}

// Verify checks the envelope's signature against the sender's public key.
func (e *Envelope) Verify(pub ed25519.PublicKey) error {
	if len(e.Sig) == 0 {
		return dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "envelope has no signature")
	}
	data, err := e.encodeForSigning()
	if err != nil {
		return err
	}
	if !ed25519.Verify(pub, data, e.Sig) {
		return dsgerr.New(dsgerr.SystemVariant(dsgerr.PermissionDenied), "envelope signature verification failed")
	}
	return nil
}

// Marshal encodes the envelope to canonical CBOR for the wire.
func (e *Envelope) Marshal() ([]byte, error) {
	data, err := canonicalMode.Marshal(e)
	if err != nil {
		return nil, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.InvalidData), "cbor marshal envelope", err)
	}
	return data, nil
}

// UnmarshalEnvelope decodes canonical CBOR bytes into an Envelope.
func UnmarshalEnvelope(data []byte) (*Envelope, error) {
	var e Envelope
	if err := cbor.Unmarshal(data, &e); err != nil {
		return nil, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.InvalidData), "cbor unmarshal envelope", err)
	}
	return &e, nil
}

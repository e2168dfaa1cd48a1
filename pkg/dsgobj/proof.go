package dsgobj

import (
	"github.com/dsgmesh/dsgcore/pkg/codec"
	"github.com/dsgmesh/dsgcore/pkg/object"
)

// SampleResponse is the bytes read for one challenge sample.
type SampleResponse struct {
	Data []byte
}

var SampleResponseCodec = codec.ValueCodec[SampleResponse]{
	Measure: func(v SampleResponse, _ codec.Purpose) int { return codec.MeasureBlob32(v.Data) },
	Encode: func(buf []byte, v SampleResponse, _ codec.Purpose) ([]byte, error) {
		return codec.PutBlob32(buf, v.Data)
	},
	Decode: func(buf []byte) (SampleResponse, []byte, error) {
		data, rest, err := codec.GetBlob32(buf)
		return SampleResponse{Data: data}, rest, err
	},
}

// ProofDesc is a proof's identity-producing content: which challenge it
// answers and the per-sample responses (spec.md §3 "Proof", §4.5). The
// verifier's acceptance signature is attached at the Object level
// (DescSign) once all samples are confirmed to match, not stored here,
// so that an unsigned (pending) and signed (accepted) proof share the
// same id.
type ProofDesc struct {
	ChallengeId object.ObjectId
	Responses   []SampleResponse
}

var ProofDescCodec = codec.ValueCodec[ProofDesc]{
	Measure: func(v ProofDesc, p codec.Purpose) int {
		return object.MeasureObjectId() + codec.MeasureSeq(SampleResponseCodec, v.Responses, p)
	},
	Encode: func(buf []byte, v ProofDesc, p codec.Purpose) ([]byte, error) {
		rest, err := object.PutObjectId(buf, v.ChallengeId)
		if err != nil {
			return nil, err
		}
		return codec.PutSeq(rest, SampleResponseCodec, v.Responses, p)
	},
	Decode: func(buf []byte) (ProofDesc, []byte, error) {
		var v ProofDesc
		rest, err := buf, error(nil)
		if v.ChallengeId, rest, err = object.GetObjectId(rest); err != nil {
			return v, nil, err
		}
		if v.Responses, rest, err = codec.GetSeq(rest, SampleResponseCodec); err != nil {
			return v, nil, err
		}
		return v, rest, nil
	},
}

// ProofObject is a Proof's full named-object form. Acceptance is
// recorded by appending a Signature to DescSign; the Proof handler
// (spec.md §4.6 "Proof handler") is idempotent by looking up an
// existing signed proof under the same id before reverifying.
type ProofObject = object.Object[ProofDesc, struct{}]

func NewProof(challengeId object.ObjectId, responses []SampleResponse) ProofObject {
	desc := object.Desc[ProofDesc]{
		Context: object.NamedObjectContext{ObjType: ObjTypeProof},
		Content: ProofDesc{ChallengeId: challengeId, Responses: responses},
	}
	return object.New[ProofDesc, struct{}](desc, nil)
}

// IsAccepted reports whether a verifier has signed this proof.
func IsAccepted(p ProofObject) bool { return len(p.DescSign) > 0 }

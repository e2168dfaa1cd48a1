package dsgobj

import (
	"github.com/dsgmesh/dsgcore/pkg/codec"
	"github.com/dsgmesh/dsgcore/pkg/object"
)

// Sample is one (chunk_index, offset, length) challenge sample. Offset
// is u64 and nonce is a fixed 32-byte array to match the wire schema
// spec.md §6.2 names explicitly for ChallengeObject
// ("samples:[(u32,u64,u32)], nonce:[u8;32]").
type Sample struct {
	ChunkIndex uint32
	Offset     uint64
	Length     uint32
}

var SampleCodec = codec.ValueCodec[Sample]{
	Measure: func(Sample, codec.Purpose) int { return codec.MeasureU32() + codec.MeasureU64() + codec.MeasureU32() },
	Encode: func(buf []byte, v Sample, _ codec.Purpose) ([]byte, error) {
		rest, err := codec.PutU32(buf, v.ChunkIndex)
		if err != nil {
			return nil, err
		}
		rest, err = codec.PutU64(rest, v.Offset)
		if err != nil {
			return nil, err
		}
		return codec.PutU32(rest, v.Length)
	},
	Decode: func(buf []byte) (Sample, []byte, error) {
		var v Sample
		rest, err := buf, error(nil)
		if v.ChunkIndex, rest, err = codec.GetU32(rest); err != nil {
			return v, nil, err
		}
		if v.Offset, rest, err = codec.GetU64(rest); err != nil {
			return v, nil, err
		}
		if v.Length, rest, err = codec.GetU32(rest); err != nil {
			return v, nil, err
		}
		return v, rest, nil
	},
}

// ChallengeDesc is a challenge's identity-producing content: which
// contract and prepared state it audits, the sample set, and its
// validity window (spec.md §3 "Challenge", §4.5, §6.2).
type ChallengeDesc struct {
	ContractId object.ObjectId
	StateId    object.ObjectId
	Nonce      [32]byte
	Samples    []Sample
	CreateAt   uint64
	ExpireAt   uint64
}

var ChallengeDescCodec = codec.ValueCodec[ChallengeDesc]{
	Measure: func(v ChallengeDesc, p codec.Purpose) int {
		return object.MeasureObjectId()*2 + 32 +
			codec.MeasureSeq(SampleCodec, v.Samples, p) + codec.MeasureU64()*2
	},
	Encode: func(buf []byte, v ChallengeDesc, p codec.Purpose) ([]byte, error) {
		rest, err := object.PutObjectId(buf, v.ContractId)
		if err != nil {
			return nil, err
		}
		rest, err = object.PutObjectId(rest, v.StateId)
		if err != nil {
			return nil, err
		}
		rest, err = codec.PutFixed(rest, v.Nonce[:])
		if err != nil {
			return nil, err
		}
		rest, err = codec.PutSeq(rest, SampleCodec, v.Samples, p)
		if err != nil {
			return nil, err
		}
		rest, err = codec.PutU64(rest, v.CreateAt)
		if err != nil {
			return nil, err
		}
		return codec.PutU64(rest, v.ExpireAt)
	},
	Decode: func(buf []byte) (ChallengeDesc, []byte, error) {
		var v ChallengeDesc
		rest, err := buf, error(nil)
		if v.ContractId, rest, err = object.GetObjectId(rest); err != nil {
			return v, nil, err
		}
		if v.StateId, rest, err = object.GetObjectId(rest); err != nil {
			return v, nil, err
		}
		var nonce []byte
		if nonce, rest, err = codec.GetFixed(rest, 32); err != nil {
			return v, nil, err
		}
		copy(v.Nonce[:], nonce)
		if v.Samples, rest, err = codec.GetSeq(rest, SampleCodec); err != nil {
			return v, nil, err
		}
		if v.CreateAt, rest, err = codec.GetU64(rest); err != nil {
			return v, nil, err
		}
		if v.ExpireAt, rest, err = codec.GetU64(rest); err != nil {
			return v, nil, err
		}
		return v, rest, nil
	},
}

// ChallengeObject is a Challenge's full named-object form.
type ChallengeObject = object.Object[ChallengeDesc, struct{}]

func NewChallenge(contractId, stateId object.ObjectId, nonce [32]byte, samples []Sample, createAt, expireAt uint64) ChallengeObject {
	desc := object.Desc[ChallengeDesc]{
		Context: object.NamedObjectContext{ObjType: ObjTypeChallenge},
		Content: ChallengeDesc{
			ContractId: contractId,
			StateId:    stateId,
			Nonce:      nonce,
			Samples:    samples,
			CreateAt:   createAt,
			ExpireAt:   expireAt,
		},
	}
	return object.New[ChallengeDesc, struct{}](desc, nil)
}

package dsgobj

import (
	"github.com/dsgmesh/dsgcore/pkg/codec"
	"github.com/dsgmesh/dsgcore/pkg/object"
)

// ContractDesc is the immutable record a consumer creates before any
// state exists for it: who the parties are, what storage plan applies,
// and the window it covers (spec.md §3 "Contract").
type ContractDesc struct {
	Consumer    object.ObjectId
	Miner       object.ObjectId
	StorageKind StorageKind
	StartAt     uint64
	EndAt       uint64
	Witness     []byte
}

var ContractDescCodec = codec.ValueCodec[ContractDesc]{
	Measure: func(v ContractDesc, _ codec.Purpose) int {
		return object.MeasureObjectId()*2 + codec.MeasureU8() + codec.MeasureU64()*2 + codec.MeasureBlob16(v.Witness)
	},
	Encode: func(buf []byte, v ContractDesc, _ codec.Purpose) ([]byte, error) {
		rest, err := object.PutObjectId(buf, v.Consumer)
		if err != nil {
			return nil, err
		}
		rest, err = object.PutObjectId(rest, v.Miner)
		if err != nil {
			return nil, err
		}
		rest, err = codec.PutU8(rest, uint8(v.StorageKind))
		if err != nil {
			return nil, err
		}
		rest, err = codec.PutU64(rest, v.StartAt)
		if err != nil {
			return nil, err
		}
		rest, err = codec.PutU64(rest, v.EndAt)
		if err != nil {
			return nil, err
		}
		return codec.PutBlob16(rest, v.Witness)
	},
	Decode: func(buf []byte) (ContractDesc, []byte, error) {
		var v ContractDesc
		rest, err := buf, error(nil)
		if v.Consumer, rest, err = object.GetObjectId(rest); err != nil {
			return v, nil, err
		}
		if v.Miner, rest, err = object.GetObjectId(rest); err != nil {
			return v, nil, err
		}
		var kind uint8
		if kind, rest, err = codec.GetU8(rest); err != nil {
			return v, nil, err
		}
		v.StorageKind = StorageKind(kind)
		if v.StartAt, rest, err = codec.GetU64(rest); err != nil {
			return v, nil, err
		}
		if v.EndAt, rest, err = codec.GetU64(rest); err != nil {
			return v, nil, err
		}
		if v.Witness, rest, err = codec.GetBlob16(rest); err != nil {
			return v, nil, err
		}
		return v, rest, nil
	},
}

// ContractObject is a Contract's full named-object form: no body, since
// a contract is never mutated after creation.
type ContractObject = object.Object[ContractDesc, struct{}]

// NewContract builds a fresh, unsigned ContractObject. Owner/Author are
// left to the caller to fill in through the returned Desc before
// computing an id, mirroring how pkg/object's generic constructor stays
// agnostic of identity policy.
func NewContract(consumer, miner object.ObjectId, kind StorageKind, startAt, endAt uint64, witness []byte) ContractObject {
	desc := object.Desc[ContractDesc]{
		Context: object.NamedObjectContext{ObjType: ObjTypeContract},
		Content: ContractDesc{
			Consumer:    consumer,
			Miner:       miner,
			StorageKind: kind,
			StartAt:     startAt,
			EndAt:       endAt,
			Witness:     witness,
		},
	}
	return object.New[ContractDesc, struct{}](desc, nil)
}

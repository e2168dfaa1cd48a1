package dsgobj

import (
	"github.com/dsgmesh/dsgcore/pkg/codec"
	"github.com/dsgmesh/dsgcore/pkg/object"
	"github.com/dsgmesh/dsgcore/pkg/transform"
)

// ContractStateDesc is one link of the append-only state chain
// (spec.md §3 "ContractState"). The chain itself is expressed through
// the generic Desc.Prev field (the previous state's id), so this
// content type only carries what is specific to a state node: which
// contract it belongs to, which state kind it is, and the kind-specific
// payload attached by Prepare (§4.6.1) or Sync (§4.6.2).
type ContractStateDesc struct {
	ContractId object.ObjectId
	Kind       StateKind

	// Chunks is overloaded by Kind: for DataSourceChanged it is the source
	// chunk list a consumer committed; for DataSourcePrepared it is the
	// stored chunk ids Prepare produced from those sources. Either way it
	// carries transform.ChunkId rather than object.ObjectId: chunks are
	// content-addressed via go-cid, self-describing and variable-length,
	// not the fixed 32-byte envelope identifier.
	Chunks []transform.ChunkId

	// DataSourceStub is set for DataSourcePrepared and for the
	// DataSourceStored state an accepted proof produces (which copies it,
	// with Chunks, from the audited state): the id of the DataSourceStub
	// object Prepare published alongside the stored chunks.
	DataSourceStub *object.ObjectId
}

var ContractStateDescCodec = codec.ValueCodec[ContractStateDesc]{
	Measure: func(v ContractStateDesc, p codec.Purpose) int {
		n := object.MeasureObjectId() + codec.MeasureU8()
		n += codec.MeasureSeq(transform.ChunkIdCodec, v.Chunks, p)
		n += codec.MeasureBool()
		if v.DataSourceStub != nil {
			n += object.MeasureObjectId()
		}
		return n
	},
	Encode: func(buf []byte, v ContractStateDesc, p codec.Purpose) ([]byte, error) {
		rest, err := object.PutObjectId(buf, v.ContractId)
		if err != nil {
			return nil, err
		}
		rest, err = codec.PutU8(rest, uint8(v.Kind))
		if err != nil {
			return nil, err
		}
		rest, err = codec.PutSeq(rest, transform.ChunkIdCodec, v.Chunks, p)
		if err != nil {
			return nil, err
		}
		hasStub := v.DataSourceStub != nil
		rest, err = codec.PutBool(rest, hasStub)
		if err != nil {
			return nil, err
		}
		if hasStub {
			rest, err = object.PutObjectId(rest, *v.DataSourceStub)
			if err != nil {
				return nil, err
			}
		}
		return rest, nil
	},
	Decode: func(buf []byte) (ContractStateDesc, []byte, error) {
		var v ContractStateDesc
		rest, err := buf, error(nil)
		if v.ContractId, rest, err = object.GetObjectId(rest); err != nil {
			return v, nil, err
		}
		var kind uint8
		if kind, rest, err = codec.GetU8(rest); err != nil {
			return v, nil, err
		}
		v.Kind = StateKind(kind)
		if v.Chunks, rest, err = codec.GetSeq(rest, transform.ChunkIdCodec); err != nil {
			return v, nil, err
		}
		var hasStub bool
		if hasStub, rest, err = codec.GetBool(rest); err != nil {
			return v, nil, err
		}
		if hasStub {
			var stub object.ObjectId
			if stub, rest, err = object.GetObjectId(rest); err != nil {
				return v, nil, err
			}
			v.DataSourceStub = &stub
		}
		return v, rest, nil
	},
}

// ContractStateObject is a ContractState's full named-object form; no
// body, the object itself is already append-only immutable history.
type ContractStateObject = object.Object[ContractStateDesc, struct{}]

// NewContractState builds the next state in the chain. prev is nil only
// for the very first (Initial) state of a contract. createAt lets Tick
// measure how long a contract has sat in its current state (spec.md §4.6
// "DataSourceStored and now - state.create_at > challenge_interval").
func NewContractState(contractId object.ObjectId, kind StateKind, prev *object.ObjectId, createAt uint64) ContractStateObject {
	desc := object.Desc[ContractStateDesc]{
		Context:    object.NamedObjectContext{ObjType: ObjTypeContractState},
		Prev:       prev,
		CreateTime: &createAt,
		Content:    ContractStateDesc{ContractId: contractId, Kind: kind},
	}
	return object.New[ContractStateDesc, struct{}](desc, nil)
}

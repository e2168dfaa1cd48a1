package dsgobj

import (
	"github.com/dsgmesh/dsgcore/pkg/codec"
	"github.com/dsgmesh/dsgcore/pkg/object"
)

// QueryKind discriminates the Query handler's two request shapes
// (spec.md §4.6 "Query handler").
type QueryKind uint8

const (
	QueryKindContracts QueryKind = iota
	QueryKindStates
)

// ContractsPageEntry is one (contract_id -> state_id) row of a
// QueryContracts response page.
type ContractsPageEntry struct {
	ContractId object.ObjectId
	StateId    object.ObjectId
}

// ExpectedState is one entry of a QueryStates request: the caller's
// last-known state id for a contract, or nil if it has none yet.
type ExpectedState struct {
	ContractId     object.ObjectId
	ExpectedState  *object.ObjectId
}

// Query is the tagged union of the two supported request shapes.
type Query struct {
	Kind Kind
}

// Kind holds whichever variant is populated, selected by QueryKind.
type Kind struct {
	Tag QueryKind

	// QueryKindContracts
	Skip  uint32
	Limit *uint32

	// QueryKindStates
	Contracts []ExpectedState
}

var expectedStateCodec = codec.ValueCodec[ExpectedState]{
	Measure: func(v ExpectedState, _ codec.Purpose) int {
		n := object.MeasureObjectId() + codec.MeasureBool()
		if v.ExpectedState != nil {
			n += object.MeasureObjectId()
		}
		return n
	},
	Encode: func(buf []byte, v ExpectedState, _ codec.Purpose) ([]byte, error) {
		rest, err := object.PutObjectId(buf, v.ContractId)
		if err != nil {
			return nil, err
		}
		has := v.ExpectedState != nil
		rest, err = codec.PutBool(rest, has)
		if err != nil {
			return nil, err
		}
		if has {
			return object.PutObjectId(rest, *v.ExpectedState)
		}
		return rest, nil
	},
	Decode: func(buf []byte) (ExpectedState, []byte, error) {
		var v ExpectedState
		rest, err := buf, error(nil)
		if v.ContractId, rest, err = object.GetObjectId(rest); err != nil {
			return v, nil, err
		}
		var has bool
		if has, rest, err = codec.GetBool(rest); err != nil {
			return v, nil, err
		}
		if has {
			var id object.ObjectId
			if id, rest, err = object.GetObjectId(rest); err != nil {
				return v, nil, err
			}
			v.ExpectedState = &id
		}
		return v, rest, nil
	},
}

var QueryCodec = codec.ValueCodec[Query]{
	Measure: func(v Query, p codec.Purpose) int {
		n := codec.MeasureU8()
		switch v.Kind.Tag {
		case QueryKindContracts:
			n += codec.MeasureU32() + codec.MeasureBool()
			if v.Kind.Limit != nil {
				n += codec.MeasureU32()
			}
		case QueryKindStates:
			n += codec.MeasureSeq(expectedStateCodec, v.Kind.Contracts, p)
		}
		return n
	},
	Encode: func(buf []byte, v Query, p codec.Purpose) ([]byte, error) {
		rest, err := codec.PutU8(buf, uint8(v.Kind.Tag))
		if err != nil {
			return nil, err
		}
		switch v.Kind.Tag {
		case QueryKindContracts:
			rest, err = codec.PutU32(rest, v.Kind.Skip)
			if err != nil {
				return nil, err
			}
			has := v.Kind.Limit != nil
			rest, err = codec.PutBool(rest, has)
			if err != nil {
				return nil, err
			}
			if has {
				return codec.PutU32(rest, *v.Kind.Limit)
			}
			return rest, nil
		case QueryKindStates:
			return codec.PutSeq(rest, expectedStateCodec, v.Kind.Contracts, p)
		default:
			return rest, nil
		}
	},
	Decode: func(buf []byte) (Query, []byte, error) {
		var v Query
		tag, rest, err := codec.GetU8(buf)
		if err != nil {
			return v, nil, err
		}
		v.Kind.Tag = QueryKind(tag)
		switch v.Kind.Tag {
		case QueryKindContracts:
			if v.Kind.Skip, rest, err = codec.GetU32(rest); err != nil {
				return v, nil, err
			}
			var has bool
			if has, rest, err = codec.GetBool(rest); err != nil {
				return v, nil, err
			}
			if has {
				var limit uint32
				if limit, rest, err = codec.GetU32(rest); err != nil {
					return v, nil, err
				}
				v.Kind.Limit = &limit
			}
		case QueryKindStates:
			if v.Kind.Contracts, rest, err = codec.GetSeq(rest, expectedStateCodec); err != nil {
				return v, nil, err
			}
		}
		return v, rest, nil
	},
}

// NewQueryContracts builds a QueryContracts request.
func NewQueryContracts(skip uint32, limit *uint32) Query {
	return Query{Kind: Kind{Tag: QueryKindContracts, Skip: skip, Limit: limit}}
}

// NewQueryStates builds a QueryStates request.
func NewQueryStates(contracts []ExpectedState) Query {
	return Query{Kind: Kind{Tag: QueryKindStates, Contracts: contracts}}
}

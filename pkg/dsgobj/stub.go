package dsgobj

import (
	"github.com/dsgmesh/dsgcore/pkg/codec"
	"github.com/dsgmesh/dsgcore/pkg/object"
	"github.com/dsgmesh/dsgcore/pkg/transform"
)

// DataSourceStubDesc is the wire form of a transform.DataSourceStub
// (spec.md "Contract-local data": "DataSourceStub — Records the
// transform functions applied to source chunks (key, merge layout,
// split size) — one per DataSourcePrepared state"). It is put once by
// Prepare (§4.6.1) and referenced by id from the DataSourcePrepared
// state's ContractStateDesc.DataSourceStub field.
type DataSourceStubDesc struct {
	ContractId object.ObjectId
	Stub       transform.DataSourceStub
}

var DataSourceStubDescCodec = codec.ValueCodec[DataSourceStubDesc]{
	Measure: func(v DataSourceStubDesc, p codec.Purpose) int {
		return object.MeasureObjectId() + transform.DataSourceStubCodec.Measure(v.Stub, p)
	},
	Encode: func(buf []byte, v DataSourceStubDesc, p codec.Purpose) ([]byte, error) {
		rest, err := object.PutObjectId(buf, v.ContractId)
		if err != nil {
			return nil, err
		}
		return transform.DataSourceStubCodec.Encode(rest, v.Stub, p)
	},
	Decode: func(buf []byte) (DataSourceStubDesc, []byte, error) {
		var v DataSourceStubDesc
		rest, err := buf, error(nil)
		if v.ContractId, rest, err = object.GetObjectId(rest); err != nil {
			return v, nil, err
		}
		if v.Stub, rest, err = transform.DataSourceStubCodec.Decode(rest); err != nil {
			return v, nil, err
		}
		return v, rest, nil
	},
}

// DataSourceStubObject is a DataSourceStub's full named-object form.
type DataSourceStubObject = object.Object[DataSourceStubDesc, struct{}]

func NewDataSourceStub(contractId object.ObjectId, stub transform.DataSourceStub) DataSourceStubObject {
	desc := object.Desc[DataSourceStubDesc]{
		Context: object.NamedObjectContext{ObjType: ObjTypeDataSourceStub},
		Content: DataSourceStubDesc{ContractId: contractId, Stub: stub},
	}
	return object.New[DataSourceStubDesc, struct{}](desc, nil)
}

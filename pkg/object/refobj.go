package object

import "github.com/dsgmesh/dsgcore/pkg/codec"

// RefObject is one (type,id) entry of a Desc's ref_objs list.
type RefObject struct {
	ObjType uint16
	Id      ObjectId
}

var RefObjectCodec = codec.ValueCodec[RefObject]{
	Measure: func(RefObject, codec.Purpose) int { return codec.MeasureU16() + MeasureObjectId() },
	Encode: func(buf []byte, v RefObject, _ codec.Purpose) ([]byte, error) {
		rest, err := codec.PutU16(buf, v.ObjType)
		if err != nil {
			return nil, err
		}
		return PutObjectId(rest, v.Id)
	},
	Decode: func(buf []byte) (RefObject, []byte, error) {
		objType, rest, err := codec.GetU16(buf)
		if err != nil {
			return RefObject{}, nil, err
		}
		id, rest, err := GetObjectId(rest)
		if err != nil {
			return RefObject{}, nil, err
		}
		return RefObject{ObjType: objType, Id: id}, rest, nil
	},
}

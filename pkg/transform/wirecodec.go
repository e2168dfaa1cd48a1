package transform

import "github.com/dsgmesh/dsgcore/pkg/codec"

// The codecs in this file let a DataSourceStub travel inside a
// dsgobj.DataSourceStubObject (spec.md "Contract-local data":
// "DataSourceStub — Records the transform functions applied to source
// chunks (key, merge layout, split size) — one per DataSourcePrepared
// state"), using the same ValueCodec[T] shape as every other wire type
// in this module.

var u32OptCodec = codec.ValueCodec[*uint32]{
	Measure: func(v *uint32, _ codec.Purpose) int {
		n := codec.MeasureBool()
		if v != nil {
			n += codec.MeasureU32()
		}
		return n
	},
	Encode: func(buf []byte, v *uint32, _ codec.Purpose) ([]byte, error) {
		rest, err := codec.PutBool(buf, v != nil)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return codec.PutU32(rest, *v)
		}
		return rest, nil
	},
	Decode: func(buf []byte) (*uint32, []byte, error) {
		has, rest, err := codec.GetBool(buf)
		if err != nil {
			return nil, nil, err
		}
		if !has {
			return nil, rest, nil
		}
		n, rest, err := codec.GetU32(rest)
		if err != nil {
			return nil, nil, err
		}
		return &n, rest, nil
	},
}

var u32SeqCodec = codec.ValueCodec[uint32]{
	Measure: func(uint32, codec.Purpose) int { return codec.MeasureU32() },
	Encode:  func(buf []byte, v uint32, _ codec.Purpose) ([]byte, error) { return codec.PutU32(buf, v) },
	Decode:  func(buf []byte) (uint32, []byte, error) { return codec.GetU32(buf) },
}

// MergeStubCodec encodes a MergeStub's three fields in declaration order.
var MergeStubCodec = codec.ValueCodec[MergeStub]{
	Measure: func(v MergeStub, p codec.Purpose) int {
		return u32OptCodec.Measure(v.FirstRange, p) +
			codec.MeasureSeq(u32SeqCodec, v.Indices, p) +
			u32OptCodec.Measure(v.LastRange, p)
	},
	Encode: func(buf []byte, v MergeStub, p codec.Purpose) ([]byte, error) {
		rest, err := u32OptCodec.Encode(buf, v.FirstRange, p)
		if err != nil {
			return nil, err
		}
		rest, err = codec.PutSeq(rest, u32SeqCodec, v.Indices, p)
		if err != nil {
			return nil, err
		}
		return u32OptCodec.Encode(rest, v.LastRange, p)
	},
	Decode: func(buf []byte) (MergeStub, []byte, error) {
		var v MergeStub
		first, rest, err := u32OptCodec.Decode(buf)
		if err != nil {
			return v, nil, err
		}
		v.FirstRange = first
		indices, rest, err := codec.GetSeq(rest, u32SeqCodec)
		if err != nil {
			return v, nil, err
		}
		v.Indices = indices
		last, rest, err := u32OptCodec.Decode(rest)
		if err != nil {
			return v, nil, err
		}
		v.LastRange = last
		return v, rest, nil
	},
}

// AesKeyCodec encodes the fixed 48-byte key+IV bundle as raw fixed
// bytes (no length prefix needed — the length never varies).
var AesKeyCodec = codec.ValueCodec[AesKey]{
	Measure: func(AesKey, codec.Purpose) int { return len(AesKey{}) },
	Encode: func(buf []byte, v AesKey, _ codec.Purpose) ([]byte, error) {
		return codec.PutFixed(buf, v[:])
	},
	Decode: func(buf []byte) (AesKey, []byte, error) {
		var v AesKey
		raw, rest, err := codec.GetFixed(buf, len(AesKey{}))
		if err != nil {
			return v, nil, err
		}
		copy(v[:], raw)
		return v, rest, nil
	},
}

var aesKeyOptCodec = codec.ValueCodec[*AesKey]{
	Measure: func(v *AesKey, p codec.Purpose) int {
		n := codec.MeasureBool()
		if v != nil {
			n += AesKeyCodec.Measure(*v, p)
		}
		return n
	},
	Encode: func(buf []byte, v *AesKey, p codec.Purpose) ([]byte, error) {
		rest, err := codec.PutBool(buf, v != nil)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return AesKeyCodec.Encode(rest, *v, p)
		}
		return rest, nil
	},
	Decode: func(buf []byte) (*AesKey, []byte, error) {
		has, rest, err := codec.GetBool(buf)
		if err != nil {
			return nil, nil, err
		}
		if !has {
			return nil, rest, nil
		}
		k, rest, err := AesKeyCodec.Decode(rest)
		if err != nil {
			return nil, nil, err
		}
		return &k, rest, nil
	},
}

// ChunkFunctionMergeCodec encodes one merge function: optional key,
// merge layout, split size.
var ChunkFunctionMergeCodec = codec.ValueCodec[ChunkFunctionMerge]{
	Measure: func(v ChunkFunctionMerge, p codec.Purpose) int {
		return aesKeyOptCodec.Measure(v.Key, p) + MergeStubCodec.Measure(v.Chunks, p) + codec.MeasureU32()
	},
	Encode: func(buf []byte, v ChunkFunctionMerge, p codec.Purpose) ([]byte, error) {
		rest, err := aesKeyOptCodec.Encode(buf, v.Key, p)
		if err != nil {
			return nil, err
		}
		rest, err = MergeStubCodec.Encode(rest, v.Chunks, p)
		if err != nil {
			return nil, err
		}
		return codec.PutU32(rest, v.Split)
	},
	Decode: func(buf []byte) (ChunkFunctionMerge, []byte, error) {
		var v ChunkFunctionMerge
		key, rest, err := aesKeyOptCodec.Decode(buf)
		if err != nil {
			return v, nil, err
		}
		v.Key = key
		chunks, rest, err := MergeStubCodec.Decode(rest)
		if err != nil {
			return v, nil, err
		}
		v.Chunks = chunks
		split, rest, err := codec.GetU32(rest)
		if err != nil {
			return v, nil, err
		}
		v.Split = split
		return v, rest, nil
	},
}

// DataSourceStubCodec encodes the ordered function list.
var DataSourceStubCodec = codec.ValueCodec[DataSourceStub]{
	Measure: func(v DataSourceStub, p codec.Purpose) int {
		return codec.MeasureSeq(ChunkFunctionMergeCodec, v.Functions, p)
	},
	Encode: func(buf []byte, v DataSourceStub, p codec.Purpose) ([]byte, error) {
		return codec.PutSeq(buf, ChunkFunctionMergeCodec, v.Functions, p)
	},
	Decode: func(buf []byte) (DataSourceStub, []byte, error) {
		functions, rest, err := codec.GetSeq(buf, ChunkFunctionMergeCodec)
		if err != nil {
			return DataSourceStub{}, nil, err
		}
		return DataSourceStub{Functions: functions}, rest, nil
	},
}

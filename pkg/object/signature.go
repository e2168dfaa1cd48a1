package object

import "github.com/dsgmesh/dsgcore/pkg/codec"

// Signature is one entry of an object's signs set: a signature produced
// by one member of the object's public key (by index, to support m-of-n
// multi-key signer bitmaps) over either the desc or the body encoding.
type Signature struct {
	SignerIndex uint8
	Sign        []byte
}

var SignatureCodec = codec.ValueCodec[Signature]{
	Measure: func(v Signature, _ codec.Purpose) int {
		return codec.MeasureU8() + codec.MeasureBlob16(v.Sign)
	},
	Encode: func(buf []byte, v Signature, _ codec.Purpose) ([]byte, error) {
		rest, err := codec.PutU8(buf, v.SignerIndex)
		if err != nil {
			return nil, err
		}
		return codec.PutBlob16(rest, v.Sign)
	},
	Decode: func(buf []byte) (Signature, []byte, error) {
		idx, rest, err := codec.GetU8(buf)
		if err != nil {
			return Signature{}, nil, err
		}
		sig, rest, err := codec.GetBlob16(rest)
		if err != nil {
			return Signature{}, nil, err
		}
		return Signature{SignerIndex: idx, Sign: sig}, rest, nil
	},
}

// SignerBitmap packs which signer indices are present in a Signs slice,
// for m-of-n multi-key verification bookkeeping.
func SignerBitmap(signs []Signature) uint64 {
	var bm uint64
	for _, s := range signs {
		if s.SignerIndex < 64 {
			bm |= 1 << s.SignerIndex
		}
	}
	return bm
}

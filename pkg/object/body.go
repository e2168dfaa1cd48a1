package object

import "github.com/dsgmesh/dsgcore/pkg/codec"

// Body is the mutable half of a named object: changing it never changes
// the owning object's id (only Desc feeds calculate_id).
type Body[T any] struct {
	Version uint8
	Format  uint8
	Content T
}

func MeasureBody[T any](b Body[T], cc codec.ValueCodec[T], purpose codec.Purpose) int {
	return codec.MeasureU8() + codec.MeasureU8() + codec.MeasureU16() + cc.Measure(b.Content, purpose)
}

func EncodeBody[T any](buf []byte, b Body[T], cc codec.ValueCodec[T], purpose codec.Purpose) ([]byte, error) {
	rest, err := codec.PutU8(buf, b.Version)
	if err != nil {
		return nil, err
	}
	rest, err = codec.PutU8(rest, b.Format)
	if err != nil {
		return nil, err
	}
	contentBuf := make([]byte, cc.Measure(b.Content, purpose))
	if _, err := cc.Encode(contentBuf, b.Content, purpose); err != nil {
		return nil, err
	}
	return codec.PutBlob16(rest, contentBuf)
}

func DecodeBody[T any](buf []byte, cc codec.ValueCodec[T]) (Body[T], []byte, error) {
	var b Body[T]
	rest, err := buf, error(nil)
	if b.Version, rest, err = codec.GetU8(rest); err != nil {
		return b, nil, err
	}
	if b.Format, rest, err = codec.GetU8(rest); err != nil {
		return b, nil, err
	}
	contentBytes, rest, err := codec.GetBlob16(rest)
	if err != nil {
		return b, nil, err
	}
	content, _, err := cc.Decode(contentBytes)
	if err != nil {
		return b, nil, err
	}
	b.Content = content
	return b, rest, nil
}

package object

import "github.com/dsgmesh/dsgcore/pkg/codec"

// EmptyCodec is the content codec for object types with no body, such
// as Contract (immutable, never mutated after creation). Its functions
// are never actually invoked when Object.HasBody is false, but Go's
// generic instantiation still requires a concrete ValueCodec value.
var EmptyCodec = codec.ValueCodec[struct{}]{
	Measure: func(struct{}, codec.Purpose) int { return 0 },
	Encode:  func(buf []byte, _ struct{}, _ codec.Purpose) ([]byte, error) { return buf, nil },
	Decode:  func(buf []byte) (struct{}, []byte, error) { return struct{}{}, buf, nil },
}

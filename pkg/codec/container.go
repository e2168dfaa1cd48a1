package codec

import "github.com/dsgmesh/dsgcore/pkg/dsgerr"

// ValueCodec bundles the measure/encode/decode trio for some value type T,
// letting the generic container helpers below stay type-agnostic the way
// spec.md §4.1 requires every codec type to expose the same three
// operations.
type ValueCodec[T any] struct {
	Measure func(v T, purpose Purpose) int
	Encode  func(buf []byte, v T, purpose Purpose) ([]byte, error)
	Decode  func(buf []byte) (T, []byte, error)
}

// MeasureSeq returns the wire size of a u16 length-prefixed sequence.
func MeasureSeq[T any](vc ValueCodec[T], items []T, purpose Purpose) int {
	n := 2
	for _, it := range items {
		n += vc.Measure(it, purpose)
	}
	return n
}

// PutSeq encodes an ordered sequence of T as a u16 length prefix followed
// by each element in order.
func PutSeq[T any](buf []byte, vc ValueCodec[T], items []T, purpose Purpose) ([]byte, error) {
	if len(items) > 0xFFFF {
		return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "sequence too long for u16 prefix")
	}
	rest, err := PutU16(buf, uint16(len(items)))
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		rest, err = vc.Encode(rest, it, purpose)
		if err != nil {
			return nil, err
		}
	}
	return rest, nil
}

// GetSeq decodes an ordered sequence of T.
func GetSeq[T any](buf []byte, vc ValueCodec[T]) ([]T, []byte, error) {
	n, rest, err := GetU16(buf)
	if err != nil {
		return nil, nil, err
	}
	out := make([]T, 0, n)
	for i := uint16(0); i < n; i++ {
		var v T
		v, rest, err = vc.Decode(rest)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, v)
	}
	return out, rest, nil
}

// KV is one key/value pair of a Mapping.
type KV[K comparable, V any] struct {
	Key K
	Val V
}

// PutMapping encodes a K->V mapping as an ordered sequence of (K,V) pairs.
// Key uniqueness is a decode-time invariant, not checked on encode.
func PutMapping[K comparable, V any](buf []byte, kc ValueCodec[K], vc ValueCodec[V], m map[K]V, purpose Purpose, order []K) ([]byte, error) {
	pairs := make([]KV[K, V], 0, len(m))
	for _, k := range order {
		pairs = append(pairs, KV[K, V]{Key: k, Val: m[k]})
	}
	pairCodec := ValueCodec[KV[K, V]]{
		Measure: func(v KV[K, V], p Purpose) int { return kc.Measure(v.Key, p) + vc.Measure(v.Val, p) },
		Encode: func(buf []byte, v KV[K, V], p Purpose) ([]byte, error) {
			rest, err := kc.Encode(buf, v.Key, p)
			if err != nil {
				return nil, err
			}
			return vc.Encode(rest, v.Val, p)
		},
		Decode: func(buf []byte) (KV[K, V], []byte, error) {
			var zero KV[K, V]
			k, rest, err := kc.Decode(buf)
			if err != nil {
				return zero, nil, err
			}
			v, rest2, err := vc.Decode(rest)
			if err != nil {
				return zero, nil, err
			}
			return KV[K, V]{Key: k, Val: v}, rest2, nil
		},
	}
	return PutSeq(buf, pairCodec, pairs, purpose)
}

// GetMapping decodes a K->V mapping, rejecting duplicate keys with
// InvalidData per spec.md §4.1 ("key-uniqueness is a decode-time
// invariant").
func GetMapping[K comparable, V any](buf []byte, kc ValueCodec[K], vc ValueCodec[V]) (map[K]V, []K, []byte, error) {
	pairCodec := ValueCodec[KV[K, V]]{
		Decode: func(buf []byte) (KV[K, V], []byte, error) {
			var zero KV[K, V]
			k, rest, err := kc.Decode(buf)
			if err != nil {
				return zero, nil, err
			}
			v, rest2, err := vc.Decode(rest)
			if err != nil {
				return zero, nil, err
			}
			return KV[K, V]{Key: k, Val: v}, rest2, nil
		},
	}
	pairs, rest, err := GetSeq(buf, pairCodec)
	if err != nil {
		return nil, nil, nil, err
	}
	m := make(map[K]V, len(pairs))
	order := make([]K, 0, len(pairs))
	for _, kv := range pairs {
		if _, dup := m[kv.Key]; dup {
			return nil, nil, nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "duplicate mapping key")
		}
		m[kv.Key] = kv.Val
		order = append(order, kv.Key)
	}
	return m, order, rest, nil
}

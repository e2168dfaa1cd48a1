package codec

import "github.com/dsgmesh/dsgcore/pkg/dsgerr"

// Op is a diff/patch wire opcode (spec.md §4.1).
type Op uint8

const (
	OpNone    Op = 0
	OpSet     Op = 1
	OpSetNone Op = 2
	OpAdd     Op = 3
	OpRemove  Op = 4
	OpTrimEnd Op = 5
)

func invalidOp(op Op) error {
	return dsgerr.Newf(dsgerr.SystemVariant(dsgerr.InvalidData), "unexpected diff op %d", op)
}

// --- Scalar: {None, Set} -----------------------------------------------

// DiffMeasureScalar returns the wire size of a scalar diff.
func DiffMeasureScalar[T comparable](vc ValueCodec[T], a, b T) int {
	if a == b {
		return MeasureU8()
	}
	return MeasureU8() + vc.Measure(b, Serialize)
}

// DiffScalar emits {None} if a==b, else {Set, value}.
func DiffScalar[T comparable](buf []byte, vc ValueCodec[T], a, b T) ([]byte, error) {
	if a == b {
		return PutU8(buf, uint8(OpNone))
	}
	rest, err := PutU8(buf, uint8(OpSet))
	if err != nil {
		return nil, err
	}
	return vc.Encode(rest, b, Serialize)
}

// PatchScalar applies a scalar diff to a, returning the patched value.
func PatchScalar[T comparable](buf []byte, vc ValueCodec[T], a T) (T, []byte, error) {
	op, rest, err := GetU8(buf)
	if err != nil {
		var zero T
		return zero, nil, err
	}
	switch Op(op) {
	case OpNone:
		return a, rest, nil
	case OpSet:
		return vc.Decode(rest)
	default:
		var zero T
		return zero, nil, invalidOp(Op(op))
	}
}

// --- Optional: {None, Set, SetNone} -------------------------------------

// DiffMeasureOptional returns the wire size of an optional diff.
func DiffMeasureOptional[T comparable](vc ValueCodec[T], a, b *T) int {
	switch {
	case a == nil && b == nil:
		return MeasureU8()
	case b == nil:
		return MeasureU8()
	case a != nil && *a == *b:
		return MeasureU8()
	default:
		return MeasureU8() + vc.Measure(*b, Serialize)
	}
}

// DiffOptional emits None/SetNone/Set depending on the (a,b) transition.
func DiffOptional[T comparable](buf []byte, vc ValueCodec[T], a, b *T) ([]byte, error) {
	switch {
	case a == nil && b == nil:
		return PutU8(buf, uint8(OpNone))
	case b == nil:
		return PutU8(buf, uint8(OpSetNone))
	case a != nil && *a == *b:
		return PutU8(buf, uint8(OpNone))
	default:
		rest, err := PutU8(buf, uint8(OpSet))
		if err != nil {
			return nil, err
		}
		return vc.Encode(rest, *b, Serialize)
	}
}

// PatchOptional applies an optional diff to a.
func PatchOptional[T comparable](buf []byte, vc ValueCodec[T], a *T) (*T, []byte, error) {
	op, rest, err := GetU8(buf)
	if err != nil {
		return nil, nil, err
	}
	switch Op(op) {
	case OpNone:
		return a, rest, nil
	case OpSetNone:
		return nil, rest, nil
	case OpSet:
		v, rest2, err := vc.Decode(rest)
		if err != nil {
			return nil, nil, err
		}
		return &v, rest2, nil
	default:
		return nil, nil, invalidOp(Op(op))
	}
}

// --- Sequence: full op set ----------------------------------------------
//
// The diff is computed by finding the longest common prefix of a and b,
// then trimming a's tail beyond the prefix (TrimEnd) and appending b's
// remaining elements in order (Add). This does not attempt a minimal edit
// script (no mid-sequence Remove/Set pairing) but it satisfies the
// diff/patch law in every case: patch(a, diff(a,b)) == b.

type seqOp[T any] struct {
	op    Op
	index uint32
	value T
}

func commonPrefixLen[T comparable](a, b []T) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// DiffMeasureSeq returns the wire size of a sequence diff.
func DiffMeasureSeq[T comparable](vc ValueCodec[T], a, b []T) int {
	p := commonPrefixLen(a, b)
	n := 2 // u16 op count
	if len(a) > p {
		n += MeasureU8() + MeasureU32() // TrimEnd(p)
	}
	for _, v := range b[p:] {
		n += MeasureU8() + MeasureU32() + vc.Measure(v, Serialize)
	}
	return n
}

// DiffSeq encodes the (op, index, value?) triple stream.
func DiffSeq[T comparable](buf []byte, vc ValueCodec[T], a, b []T) ([]byte, error) {
	p := commonPrefixLen(a, b)

	var ops []seqOp[T]
	if len(a) > p {
		ops = append(ops, seqOp[T]{op: OpTrimEnd, index: uint32(p)})
	}
	for i, v := range b[p:] {
		ops = append(ops, seqOp[T]{op: OpAdd, index: uint32(p + i), value: v})
	}

	if len(ops) > 0xFFFF {
		return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "too many sequence diff ops")
	}
	rest, err := PutU16(buf, uint16(len(ops)))
	if err != nil {
		return nil, err
	}
	for _, o := range ops {
		rest, err = PutU8(rest, uint8(o.op))
		if err != nil {
			return nil, err
		}
		rest, err = PutU32(rest, o.index)
		if err != nil {
			return nil, err
		}
		if o.op == OpAdd {
			rest, err = vc.Encode(rest, o.value, Serialize)
			if err != nil {
				return nil, err
			}
		}
	}
	return rest, nil
}

// PatchSeq applies an op stream to a, returning the patched sequence.
// Indices refer to the state of the sequence at the moment the op is
// applied, as spec.md §4.1 requires.
func PatchSeq[T comparable](buf []byte, vc ValueCodec[T], a []T) ([]T, []byte, error) {
	count, rest, err := GetU16(buf)
	if err != nil {
		return nil, nil, err
	}

	out := make([]T, len(a))
	copy(out, a)

	for i := uint16(0); i < count; i++ {
		var op uint8
		op, rest, err = GetU8(rest)
		if err != nil {
			return nil, nil, err
		}
		var idx uint32
		idx, rest, err = GetU32(rest)
		if err != nil {
			return nil, nil, err
		}

		switch Op(op) {
		case OpTrimEnd:
			if int(idx) > len(out) {
				return nil, nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.OutOfLimit), "trim index beyond sequence length")
			}
			out = out[:idx]
		case OpAdd:
			var v T
			v, rest, err = vc.Decode(rest)
			if err != nil {
				return nil, nil, err
			}
			if int(idx) > len(out) {
				return nil, nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.OutOfLimit), "add index beyond sequence length")
			}
			out = append(out[:idx], append([]T{v}, out[idx:]...)...)
		case OpRemove:
			if int(idx) >= len(out) {
				return nil, nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.OutOfLimit), "remove index beyond sequence length")
			}
			out = append(out[:idx], out[idx+1:]...)
		case OpSet:
			var v T
			v, rest, err = vc.Decode(rest)
			if err != nil {
				return nil, nil, err
			}
			if int(idx) >= len(out) {
				return nil, nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.OutOfLimit), "set index beyond sequence length")
			}
			out[idx] = v
		case OpNone:
			// no-op, present only to keep index bookkeeping symmetric
		default:
			return nil, nil, invalidOp(Op(op))
		}
	}

	return out, rest, nil
}

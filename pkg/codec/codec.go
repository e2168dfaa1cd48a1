// Package codec implements the DSG named-object wire kernel: primitive
// measure/encode/decode with purpose-aware omission, length-prefixed
// container encodings, and a diff/patch primitive. The wire shapes are
// defined exactly (u16 length prefixes, explicit byte counts) rather than
// delegated to a general-purpose serialization library, because the exact
// byte layout is itself the thing being specified (see DESIGN.md).
package codec

import (
	"encoding/binary"

	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
)

// Purpose selects between the full wire encoding (Serialize) and the
// identity-computing encoding (Hash), under which some types omit fields
// such as signatures or nonces. Types that do so must document it.
type Purpose uint8

const (
	Serialize Purpose = iota
	Hash
)

func outOfLimit(need, have int) error {
	return dsgerr.Newf(dsgerr.SystemVariant(dsgerr.OutOfLimit),
		"need %d bytes, have %d", need, have)
}

// PutU8 writes a single byte and returns the remaining buffer.
func PutU8(buf []byte, v uint8) ([]byte, error) {
	if len(buf) < 1 {
		return nil, outOfLimit(1, len(buf))
	}
	buf[0] = v
	return buf[1:], nil
}

// GetU8 reads a single byte and returns the remaining buffer.
func GetU8(buf []byte) (uint8, []byte, error) {
	if len(buf) < 1 {
		return 0, nil, outOfLimit(1, len(buf))
	}
	return buf[0], buf[1:], nil
}

// PutU16 writes a big-endian uint16.
func PutU16(buf []byte, v uint16) ([]byte, error) {
	if len(buf) < 2 {
		return nil, outOfLimit(2, len(buf))
	}
	binary.BigEndian.PutUint16(buf, v)
	return buf[2:], nil
}

// GetU16 reads a big-endian uint16.
func GetU16(buf []byte) (uint16, []byte, error) {
	if len(buf) < 2 {
		return 0, nil, outOfLimit(2, len(buf))
	}
	return binary.BigEndian.Uint16(buf), buf[2:], nil
}

// PutU32 writes a big-endian uint32.
func PutU32(buf []byte, v uint32) ([]byte, error) {
	if len(buf) < 4 {
		return nil, outOfLimit(4, len(buf))
	}
	binary.BigEndian.PutUint32(buf, v)
	return buf[4:], nil
}

// GetU32 reads a big-endian uint32.
func GetU32(buf []byte) (uint32, []byte, error) {
	if len(buf) < 4 {
		return 0, nil, outOfLimit(4, len(buf))
	}
	return binary.BigEndian.Uint32(buf), buf[4:], nil
}

// PutU64 writes a big-endian uint64.
func PutU64(buf []byte, v uint64) ([]byte, error) {
	if len(buf) < 8 {
		return nil, outOfLimit(8, len(buf))
	}
	binary.BigEndian.PutUint64(buf, v)
	return buf[8:], nil
}

// GetU64 reads a big-endian uint64.
func GetU64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, outOfLimit(8, len(buf))
	}
	return binary.BigEndian.Uint64(buf), buf[8:], nil
}

// PutBool writes a single-byte boolean.
func PutBool(buf []byte, v bool) ([]byte, error) {
	var b uint8
	if v {
		b = 1
	}
	return PutU8(buf, b)
}

// GetBool reads a single-byte boolean.
func GetBool(buf []byte) (bool, []byte, error) {
	b, rest, err := GetU8(buf)
	if err != nil {
		return false, nil, err
	}
	return b != 0, rest, nil
}

// PutFixed writes exactly len(v) raw bytes with no length prefix, for
// fixed-size array fields whose length is known from the type alone.
func PutFixed(buf []byte, v []byte) ([]byte, error) {
	if len(buf) < len(v) {
		return nil, outOfLimit(len(v), len(buf))
	}
	copy(buf, v)
	return buf[len(v):], nil
}

// GetFixed reads exactly n raw bytes.
func GetFixed(buf []byte, n int) ([]byte, []byte, error) {
	if len(buf) < n {
		return nil, nil, outOfLimit(n, len(buf))
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, buf[n:], nil
}

// PutBlob8/16/32 write a size-prefixed byte blob, the prefix being a u8,
// u16 or u32 byte length as named in spec.md §4.1.
func PutBlob8(buf []byte, v []byte) ([]byte, error) {
	if len(v) > 0xFF {
		return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "blob too long for u8 prefix")
	}
	rest, err := PutU8(buf, uint8(len(v)))
	if err != nil {
		return nil, err
	}
	return PutFixed(rest, v)
}

func GetBlob8(buf []byte) ([]byte, []byte, error) {
	n, rest, err := GetU8(buf)
	if err != nil {
		return nil, nil, err
	}
	return GetFixed(rest, int(n))
}

func PutBlob16(buf []byte, v []byte) ([]byte, error) {
	if len(v) > 0xFFFF {
		return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "blob too long for u16 prefix")
	}
	rest, err := PutU16(buf, uint16(len(v)))
	if err != nil {
		return nil, err
	}
	return PutFixed(rest, v)
}

func GetBlob16(buf []byte) ([]byte, []byte, error) {
	n, rest, err := GetU16(buf)
	if err != nil {
		return nil, nil, err
	}
	return GetFixed(rest, int(n))
}

func PutBlob32(buf []byte, v []byte) ([]byte, error) {
	if uint64(len(v)) > 0xFFFFFFFF {
		return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "blob too long for u32 prefix")
	}
	rest, err := PutU32(buf, uint32(len(v)))
	if err != nil {
		return nil, err
	}
	return PutFixed(rest, v)
}

func GetBlob32(buf []byte) ([]byte, []byte, error) {
	n, rest, err := GetU32(buf)
	if err != nil {
		return nil, nil, err
	}
	return GetFixed(rest, int(n))
}

// PutString writes a u16 length-prefixed UTF-8 string (a byte blob whose
// bytes happen to be text).
func PutString(buf []byte, s string) ([]byte, error) {
	return PutBlob16(buf, []byte(s))
}

func GetString(buf []byte) (string, []byte, error) {
	b, rest, err := GetBlob16(buf)
	if err != nil {
		return "", nil, err
	}
	return string(b), rest, nil
}

// MeasureU8/U16/U32/U64/Bool return the fixed wire size of a primitive,
// independent of purpose.
func MeasureU8() int  { return 1 }
func MeasureU16() int { return 2 }
func MeasureU32() int { return 4 }
func MeasureU64() int { return 8 }
func MeasureBool() int { return 1 }

// MeasureBlob8/16/32 return the wire size of a size-prefixed blob.
func MeasureBlob8(v []byte) int  { return 1 + len(v) }
func MeasureBlob16(v []byte) int { return 2 + len(v) }
func MeasureBlob32(v []byte) int { return 4 + len(v) }

// MeasureString returns the wire size of a u16-prefixed string.
func MeasureString(s string) int { return MeasureBlob16([]byte(s)) }

// GetExtension decodes a has-ext-flagged trailing extension block: a u16
// byte length followed by that many bytes. Decoders must fail with
// OutOfLimit (not silently truncate) when the declared length exceeds the
// remaining buffer.
func GetExtension(buf []byte, hasExt bool) ([]byte, []byte, error) {
	if !hasExt {
		return nil, buf, nil
	}
	n, rest, err := GetU16(buf)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) < int(n) {
		return nil, nil, outOfLimit(int(n), len(rest))
	}
	return GetFixed(rest, int(n))
}

// PutExtension writes a has-ext-flagged trailing extension block.
func PutExtension(buf []byte, ext []byte) ([]byte, error) {
	return PutBlob16(buf, ext)
}

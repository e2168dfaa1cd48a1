package object

import (
	"github.com/dsgmesh/dsgcore/pkg/codec"
	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
)

// Desc is the identity-producing half of a named object: everything an
// ObjectId is computed from. Body is deliberately not part of this type
// (see Object in object.go) so that mutating a body can never change an
// id, per spec.md §3's central invariant.
type Desc[T any] struct {
	Context         NamedObjectContext
	DecId           *ObjectId
	RefObjs         []RefObject
	Prev            *ObjectId
	CreateTimestamp *[32]byte
	CreateTime      *uint64
	ExpiredTime     *uint64
	Owner           *ObjectId
	Area            *AreaTriple
	Author          *ObjectId
	PublicKey       *PublicKey
	Version         uint8
	Format          uint8
	Content         T
}

// flagsOf recomputes the context's presence bitfield from which optional
// fields are actually set, so callers never have to keep Flags in sync
// by hand.
func flagsOf[T any](d Desc[T], hasExt bool) ObjFlags {
	var f ObjFlags
	if d.DecId != nil {
		f |= FlagDecId
	}
	if len(d.RefObjs) > 0 {
		f |= FlagRefObjs
	}
	if d.Prev != nil {
		f |= FlagPrev
	}
	if d.CreateTimestamp != nil {
		f |= FlagCreateTimestamp
	}
	if d.CreateTime != nil {
		f |= FlagCreateTime
	}
	if d.ExpiredTime != nil {
		f |= FlagExpiredTime
	}
	if d.Owner != nil {
		f |= FlagOwner
	}
	if d.Area != nil {
		f |= FlagArea
	}
	if d.Author != nil {
		f |= FlagAuthor
	}
	if d.PublicKey != nil {
		f |= FlagPublicKey
	}
	if hasExt {
		f |= FlagExt
	}
	return f
}

// MeasureDesc returns the wire size of d under purpose, given the
// content codec for T.
func MeasureDesc[T any](d Desc[T], cc codec.ValueCodec[T], purpose codec.Purpose, ext []byte) int {
	flags := flagsOf(d, len(ext) > 0)
	n := MeasureContext()
	if flags.has(FlagDecId) {
		n += MeasureObjectId()
	}
	if flags.has(FlagRefObjs) {
		n += codec.MeasureSeq(RefObjectCodec, d.RefObjs, purpose)
	}
	if flags.has(FlagPrev) {
		n += MeasureObjectId()
	}
	if flags.has(FlagCreateTimestamp) {
		n += 32
	}
	if flags.has(FlagCreateTime) {
		n += codec.MeasureU64()
	}
	if flags.has(FlagExpiredTime) {
		n += codec.MeasureU64()
	}
	if flags.has(FlagOwner) {
		n += MeasureObjectId()
	}
	if flags.has(FlagArea) {
		n += MeasureArea()
	}
	if flags.has(FlagAuthor) {
		n += MeasureObjectId()
	}
	if flags.has(FlagPublicKey) {
		n += MeasurePublicKey(*d.PublicKey)
	}
	n += codec.MeasureU8() + codec.MeasureU8() // version, format
	n += codec.MeasureU16() + cc.Measure(d.Content, purpose) // desc_content length-prefixed
	if flags.has(FlagExt) {
		n += codec.MeasureU16() + len(ext)
	}
	return n
}

// EncodeDesc writes d in the exact field order spec.md §4.2 mandates:
// context, then every present subfield in §3's listed order, then
// (version,format), then the length-prefixed desc_content, then the
// extension block if present.
func EncodeDesc[T any](buf []byte, d Desc[T], cc codec.ValueCodec[T], purpose codec.Purpose, ext []byte) ([]byte, error) {
	flags := flagsOf(d, len(ext) > 0)
	d.Context.Flags = flags

	rest, err := PutContext(buf, d.Context)
	if err != nil {
		return nil, err
	}
	if flags.has(FlagDecId) {
		if rest, err = PutObjectId(rest, *d.DecId); err != nil {
			return nil, err
		}
	}
	if flags.has(FlagRefObjs) {
		if rest, err = codec.PutSeq(rest, RefObjectCodec, d.RefObjs, purpose); err != nil {
			return nil, err
		}
	}
	if flags.has(FlagPrev) {
		if rest, err = PutObjectId(rest, *d.Prev); err != nil {
			return nil, err
		}
	}
	if flags.has(FlagCreateTimestamp) {
		if rest, err = codec.PutFixed(rest, d.CreateTimestamp[:]); err != nil {
			return nil, err
		}
	}
	if flags.has(FlagCreateTime) {
		if rest, err = codec.PutU64(rest, *d.CreateTime); err != nil {
			return nil, err
		}
	}
	if flags.has(FlagExpiredTime) {
		if rest, err = codec.PutU64(rest, *d.ExpiredTime); err != nil {
			return nil, err
		}
	}
	if flags.has(FlagOwner) {
		if rest, err = PutObjectId(rest, *d.Owner); err != nil {
			return nil, err
		}
	}
	if flags.has(FlagArea) {
		if rest, err = PutArea(rest, *d.Area); err != nil {
			return nil, err
		}
	}
	if flags.has(FlagAuthor) {
		if rest, err = PutObjectId(rest, *d.Author); err != nil {
			return nil, err
		}
	}
	if flags.has(FlagPublicKey) {
		if rest, err = PutPublicKey(rest, *d.PublicKey); err != nil {
			return nil, err
		}
	}
	if rest, err = codec.PutU8(rest, d.Version); err != nil {
		return nil, err
	}
	if rest, err = codec.PutU8(rest, d.Format); err != nil {
		return nil, err
	}

	contentBuf := make([]byte, cc.Measure(d.Content, purpose))
	if _, err := cc.Encode(contentBuf, d.Content, purpose); err != nil {
		return nil, err
	}
	if rest, err = codec.PutBlob16(rest, contentBuf); err != nil {
		return nil, err
	}

	if flags.has(FlagExt) {
		if rest, err = codec.PutExtension(rest, ext); err != nil {
			return nil, err
		}
	}
	return rest, nil
}

// DecodeDesc reads a Desc[T] back out, refusing extension bytes longer
// than the remaining buffer with OutOfLimit per spec.md §3.
func DecodeDesc[T any](buf []byte, cc codec.ValueCodec[T]) (Desc[T], []byte, error) {
	var d Desc[T]

	ctx, rest, err := GetContext(buf)
	if err != nil {
		return d, nil, err
	}
	d.Context = ctx
	flags := ctx.Flags

	if flags.has(FlagDecId) {
		var id ObjectId
		if id, rest, err = GetObjectId(rest); err != nil {
			return d, nil, err
		}
		d.DecId = &id
	}
	if flags.has(FlagRefObjs) {
		if d.RefObjs, rest, err = codec.GetSeq(rest, RefObjectCodec); err != nil {
			return d, nil, err
		}
	}
	if flags.has(FlagPrev) {
		var id ObjectId
		if id, rest, err = GetObjectId(rest); err != nil {
			return d, nil, err
		}
		d.Prev = &id
	}
	if flags.has(FlagCreateTimestamp) {
		var raw []byte
		if raw, rest, err = codec.GetFixed(rest, 32); err != nil {
			return d, nil, err
		}
		var ts [32]byte
		copy(ts[:], raw)
		d.CreateTimestamp = &ts
	}
	if flags.has(FlagCreateTime) {
		var v uint64
		if v, rest, err = codec.GetU64(rest); err != nil {
			return d, nil, err
		}
		d.CreateTime = &v
	}
	if flags.has(FlagExpiredTime) {
		var v uint64
		if v, rest, err = codec.GetU64(rest); err != nil {
			return d, nil, err
		}
		d.ExpiredTime = &v
	}
	if flags.has(FlagOwner) {
		var id ObjectId
		if id, rest, err = GetObjectId(rest); err != nil {
			return d, nil, err
		}
		d.Owner = &id
	}
	if flags.has(FlagArea) {
		var a AreaTriple
		if a, rest, err = GetArea(rest); err != nil {
			return d, nil, err
		}
		d.Area = &a
	}
	if flags.has(FlagAuthor) {
		var id ObjectId
		if id, rest, err = GetObjectId(rest); err != nil {
			return d, nil, err
		}
		d.Author = &id
	}
	if flags.has(FlagPublicKey) {
		var pk PublicKey
		if pk, rest, err = GetPublicKey(rest); err != nil {
			return d, nil, err
		}
		d.PublicKey = &pk
	}

	if d.Version, rest, err = codec.GetU8(rest); err != nil {
		return d, nil, err
	}
	if d.Format, rest, err = codec.GetU8(rest); err != nil {
		return d, nil, err
	}

	contentBytes, rest, err := codec.GetBlob16(rest)
	if err != nil {
		return d, nil, err
	}
	content, leftover, err := cc.Decode(contentBytes)
	if err != nil {
		return d, nil, err
	}
	if len(leftover) != 0 {
		return d, nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "trailing bytes in desc_content")
	}
	d.Content = content

	if flags.has(FlagExt) {
		if _, rest, err = GetExtensionStrict(rest); err != nil {
			return d, nil, err
		}
	}

	return d, rest, nil
}

// GetExtensionStrict always expects a u16-length-prefixed extension
// block to be present (the caller has already checked the context flag).
func GetExtensionStrict(buf []byte) ([]byte, []byte, error) {
	return codec.GetExtension(buf, true)
}

package object

import "github.com/dsgmesh/dsgcore/pkg/codec"

// ObjFlags is the obj_flags bitfield in a NamedObjectContext, signalling
// presence of each optional Desc subfield (spec.md §4.2).
type ObjFlags uint16

const (
	FlagDecId ObjFlags = 1 << iota
	FlagRefObjs
	FlagPrev
	FlagCreateTimestamp
	FlagCreateTime
	FlagExpiredTime
	FlagOwner
	FlagArea
	FlagAuthor
	FlagPublicKey
	FlagExt
)

func (f ObjFlags) has(bit ObjFlags) bool { return f&bit != 0 }

// NamedObjectContext is the fixed-size header preceding every Desc's
// subfields: obj_type discriminator plus the presence bitfield.
type NamedObjectContext struct {
	ObjType uint16
	Flags   ObjFlags
}

func MeasureContext() int { return codec.MeasureU16() + codec.MeasureU16() }

func PutContext(buf []byte, c NamedObjectContext) ([]byte, error) {
	rest, err := codec.PutU16(buf, c.ObjType)
	if err != nil {
		return nil, err
	}
	return codec.PutU16(rest, uint16(c.Flags))
}

func GetContext(buf []byte) (NamedObjectContext, []byte, error) {
	objType, rest, err := codec.GetU16(buf)
	if err != nil {
		return NamedObjectContext{}, nil, err
	}
	flags, rest, err := codec.GetU16(rest)
	if err != nil {
		return NamedObjectContext{}, nil, err
	}
	return NamedObjectContext{ObjType: objType, Flags: ObjFlags(flags)}, rest, nil
}

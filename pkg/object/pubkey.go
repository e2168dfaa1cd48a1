package object

import (
	"crypto/ed25519"

	"github.com/dsgmesh/dsgcore/pkg/codec"
	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
)

// KeyKind tags the wire discriminator byte selecting between a single key
// and an m-of-n multi-key (spec.md §4.2: "first byte selects single(1) vs
// multi(2); any other value is a decode error").
type KeyKind uint8

const (
	KeyKindSingle KeyKind = 1
	KeyKindMulti  KeyKind = 2
)

// SinglePublicKey wraps one Ed25519 public key.
type SinglePublicKey struct {
	Key ed25519.PublicKey
}

// MultiPublicKey is an m-of-n key set; signatures carry a bitmap of which
// member indices actually signed (see SignerBitmap).
type MultiPublicKey struct {
	Threshold uint8
	Keys      []ed25519.PublicKey
}

// PublicKey is the tagged union stored in a Desc's optional public_key
// subfield.
type PublicKey struct {
	Kind   KeyKind
	Single *SinglePublicKey
	Multi  *MultiPublicKey
}

func NewSinglePublicKey(key ed25519.PublicKey) PublicKey {
	return PublicKey{Kind: KeyKindSingle, Single: &SinglePublicKey{Key: key}}
}

func NewMultiPublicKey(threshold uint8, keys []ed25519.PublicKey) PublicKey {
	return PublicKey{Kind: KeyKindMulti, Multi: &MultiPublicKey{Threshold: threshold, Keys: keys}}
}

func MeasurePublicKey(pk PublicKey) int {
	switch pk.Kind {
	case KeyKindSingle:
		return codec.MeasureU8() + codec.MeasureBlob8(pk.Single.Key)
	case KeyKindMulti:
		n := codec.MeasureU8() + codec.MeasureU8() + codec.MeasureU8()
		for _, k := range pk.Multi.Keys {
			n += codec.MeasureBlob8(k)
		}
		return n
	default:
		return codec.MeasureU8()
	}
}

func PutPublicKey(buf []byte, pk PublicKey) ([]byte, error) {
	switch pk.Kind {
	case KeyKindSingle:
		rest, err := codec.PutU8(buf, uint8(KeyKindSingle))
		if err != nil {
			return nil, err
		}
		return codec.PutBlob8(rest, pk.Single.Key)
	case KeyKindMulti:
		rest, err := codec.PutU8(buf, uint8(KeyKindMulti))
		if err != nil {
			return nil, err
		}
		rest, err = codec.PutU8(rest, pk.Multi.Threshold)
		if err != nil {
			return nil, err
		}
		if len(pk.Multi.Keys) > 0xFF {
			return nil, dsgerr.New(dsgerr.SystemVariant(dsgerr.InvalidData), "too many multi-key members")
		}
		rest, err = codec.PutU8(rest, uint8(len(pk.Multi.Keys)))
		if err != nil {
			return nil, err
		}
		for _, k := range pk.Multi.Keys {
			rest, err = codec.PutBlob8(rest, k)
			if err != nil {
				return nil, err
			}
		}
		return rest, nil
	default:
		return nil, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.InvalidData), "unknown public key kind %d", pk.Kind)
	}
}

func GetPublicKey(buf []byte) (PublicKey, []byte, error) {
	kind, rest, err := codec.GetU8(buf)
	if err != nil {
		return PublicKey{}, nil, err
	}
	switch KeyKind(kind) {
	case KeyKindSingle:
		key, rest, err := codec.GetBlob8(rest)
		if err != nil {
			return PublicKey{}, nil, err
		}
		return NewSinglePublicKey(ed25519.PublicKey(key)), rest, nil
	case KeyKindMulti:
		threshold, rest, err := codec.GetU8(rest)
		if err != nil {
			return PublicKey{}, nil, err
		}
		n, rest2, err := codec.GetU8(rest)
		if err != nil {
			return PublicKey{}, nil, err
		}
		keys := make([]ed25519.PublicKey, 0, n)
		for i := uint8(0); i < n; i++ {
			var k []byte
			k, rest2, err = codec.GetBlob8(rest2)
			if err != nil {
				return PublicKey{}, nil, err
			}
			keys = append(keys, ed25519.PublicKey(k))
		}
		return NewMultiPublicKey(threshold, keys), rest2, nil
	default:
		return PublicKey{}, nil, dsgerr.Newf(dsgerr.SystemVariant(dsgerr.InvalidData), "unknown public key discriminator %d", kind)
	}
}

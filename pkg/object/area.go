package object

import "github.com/dsgmesh/dsgcore/pkg/codec"

// AreaTriple is the lightweight geo/placement triple referenced alongside
// owner/author (spec.md §3: "owner, area, author | ObjectIds / area
// triple"). The source does not define Area's internal shape beyond
// calling it a triple; this implementation's Open Question decision
// (see DESIGN.md) models it as three u16 codes (country, carrier, city)
// in the style BuckyOS-derived systems use for placement hints, which is
// enough to round-trip through the codec and participate in id
// computation without inventing semantics the spec never asks for.
type AreaTriple struct {
	Country uint16
	Carrier uint16
	City    uint16
}

func MeasureArea() int { return 3 * codec.MeasureU16() }

func PutArea(buf []byte, a AreaTriple) ([]byte, error) {
	rest, err := codec.PutU16(buf, a.Country)
	if err != nil {
		return nil, err
	}
	rest, err = codec.PutU16(rest, a.Carrier)
	if err != nil {
		return nil, err
	}
	return codec.PutU16(rest, a.City)
}

func GetArea(buf []byte) (AreaTriple, []byte, error) {
	country, rest, err := codec.GetU16(buf)
	if err != nil {
		return AreaTriple{}, nil, err
	}
	carrier, rest, err := codec.GetU16(rest)
	if err != nil {
		return AreaTriple{}, nil, err
	}
	city, rest, err := codec.GetU16(rest)
	if err != nil {
		return AreaTriple{}, nil, err
	}
	return AreaTriple{Country: country, Carrier: carrier, City: city}, rest, nil
}

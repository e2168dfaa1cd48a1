// Package dsgerr implements the three-range error taxonomy shared by every
// DSG wire message: system codes, meta-chain codes, and dec-app codes, with
// bidirectional conversion between the compact u16 wire form and a tagged
// in-memory Variant that additionally carries an origin error and a message.
package dsgerr

import "fmt"

// SystemCode enumerates the fixed system error codes in range [0, 5000).
// Values not listed here still round-trip through the system range as
// Unknown rather than failing to decode.
type SystemCode uint16

const (
	Ok                SystemCode = 0
	Failed            SystemCode = 1
	InvalidParam      SystemCode = 2
	Timeout           SystemCode = 3
	NotFound          SystemCode = 4
	AlreadyExists     SystemCode = 5
	NotMatch          SystemCode = 6
	ErrorState        SystemCode = 7
	OutOfLimit        SystemCode = 8
	InvalidData       SystemCode = 9
	Reject            SystemCode = 10
	PermissionDenied  SystemCode = 11
	WouldBlock        SystemCode = 12
	InvalidInput      SystemCode = 13
	SqliteError       SystemCode = 14
	IoError           SystemCode = 15
	UnknownIOError    SystemCode = 16
	NotImplemented    SystemCode = 17
	ConnectionAborted SystemCode = 18
	Unknown           SystemCode = 4999
)

var systemNames = map[SystemCode]string{
	Ok:                "Ok",
	Failed:            "Failed",
	InvalidParam:      "InvalidParam",
	Timeout:           "Timeout",
	NotFound:          "NotFound",
	AlreadyExists:     "AlreadyExists",
	NotMatch:          "NotMatch",
	ErrorState:        "ErrorState",
	OutOfLimit:        "OutOfLimit",
	InvalidData:       "InvalidData",
	Reject:            "Reject",
	PermissionDenied:  "PermissionDenied",
	WouldBlock:        "WouldBlock",
	InvalidInput:      "InvalidInput",
	SqliteError:       "SqliteError",
	IoError:           "IoError",
	UnknownIOError:    "UnknownIOError",
	NotImplemented:    "NotImplemented",
	ConnectionAborted: "ConnectionAborted",
	Unknown:           "Unknown",
}

func (c SystemCode) String() string {
	if n, ok := systemNames[c]; ok {
		return n
	}
	return fmt.Sprintf("SystemCode(%d)", uint16(c))
}

// Kind tags which numeric range a Variant's code came from.
type Kind uint8

const (
	KindSystem Kind = iota
	KindMeta
	KindDec
)

const (
	metaBase    = 5000
	metaMax     = 999
	decBase     = 15000
	decMax      = 50534 // 65535 - 15000 - 1
	metaRangeHi = 6000
	decRangeLo  = 15000
)

// Variant is the in-memory tagged form of a wire error code: either a
// system enum value, or MetaError(subcode) with subcode in [0,999], or
// DecError(subcode) with subcode in [0,50534].
type Variant struct {
	Kind   Kind
	System SystemCode
	Sub    uint16
}

// SystemVariant wraps a system error code.
func SystemVariant(c SystemCode) Variant { return Variant{Kind: KindSystem, System: c} }

// MetaVariant wraps a meta-chain subcode, clamping to the valid range.
func MetaVariant(sub uint16) Variant {
	if sub > metaMax {
		logOverflow("meta", sub, metaMax)
		sub = metaMax
	}
	return Variant{Kind: KindMeta, Sub: sub}
}

// DecVariant wraps a dec-app subcode, clamping to the valid range.
func DecVariant(sub uint16) Variant {
	if sub > decMax {
		logOverflow("dec-app", sub, decMax)
		sub = decMax
	}
	return Variant{Kind: KindDec, Sub: sub}
}

// FromU16 decodes a wire code into its in-memory Variant by range.
func FromU16(code uint16) Variant {
	switch {
	case code < metaBase:
		if _, ok := systemNames[SystemCode(code)]; ok {
			return SystemVariant(SystemCode(code))
		}
		return SystemVariant(Unknown)
	case code < metaRangeHi:
		return Variant{Kind: KindMeta, Sub: code - metaBase}
	case code >= decRangeLo:
		return Variant{Kind: KindDec, Sub: code - decBase}
	default:
		// Gap between the meta and dec-app ranges: not assigned by spec,
		// treated the same way an unrecognized system code would be.
		return SystemVariant(Unknown)
	}
}

// ToU16 encodes a Variant back to its wire code.
func (v Variant) ToU16() uint16 {
	switch v.Kind {
	case KindMeta:
		sub := v.Sub
		if sub > metaMax {
			logOverflow("meta", sub, metaMax)
			sub = metaMax
		}
		return metaBase + sub
	case KindDec:
		sub := v.Sub
		if sub > decMax {
			logOverflow("dec-app", sub, decMax)
			sub = decMax
		}
		return decBase + sub
	default:
		return uint16(v.System)
	}
}

func (v Variant) String() string {
	switch v.Kind {
	case KindMeta:
		return fmt.Sprintf("MetaError(%d)", v.Sub)
	case KindDec:
		return fmt.Sprintf("DecError(%d)", v.Sub)
	default:
		return v.System.String()
	}
}

// Equal reports whether two variants denote the same code.
func (v Variant) Equal(o Variant) bool {
	return v.Kind == o.Kind && v.System == o.System && v.Sub == o.Sub
}

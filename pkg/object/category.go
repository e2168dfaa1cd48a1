package object

// Category tags which numeric obj_type range an object belongs to, used
// by convert_to_typeless to verify category membership (spec.md §4.2).
// The source does not pin exact numeric boundaries for this; the split
// below is this implementation's Open Question decision (see DESIGN.md):
// the top quarter of the u16 space is reserved for dec-app-defined
// types, the next quarter for core protocol types, and the bottom half
// for standard types, mirroring the same high-bits-partition idiom the
// error taxonomy uses for its own three ranges.
type Category uint8

const (
	CategoryStandard Category = iota
	CategoryCore
	CategoryDecApp
)

const (
	decAppTypeBase = 0xC000
	coreTypeBase   = 0x8000
)

// CategoryOf classifies an obj_type code into its owning category.
func CategoryOf(objType uint16) Category {
	switch {
	case objType >= decAppTypeBase:
		return CategoryDecApp
	case objType >= coreTypeBase:
		return CategoryCore
	default:
		return CategoryStandard
	}
}

func (c Category) String() string {
	switch c {
	case CategoryStandard:
		return "Standard"
	case CategoryCore:
		return "Core"
	case CategoryDecApp:
		return "DecApp"
	default:
		return "Unknown"
	}
}

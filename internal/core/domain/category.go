package domain

// Category is a coarse grouping derived from the AIS ship type code.
type Category string

const (
	CategoryCargo     Category = "Cargo"
	CategoryTanker    Category = "Tanker"
	CategoryPassenger Category = "Passenger"
	CategoryFishing   Category = "Fishing"
	CategoryOther     Category = "Other"
	CategoryUnknown   Category = "Unknown"
)

// Categories lists every category in a stable order. Zero-filling and
// serialization iterate this slice so output is deterministic.
var Categories = []Category{
	CategoryCargo,
	CategoryTanker,
	CategoryPassenger,
	CategoryFishing,
	CategoryOther,
	CategoryUnknown,
}

// TypeRange is a closed interval of AIS ship type codes.
type TypeRange struct {
	Category Category `json:"category"`
	Min      int      `json:"min"`
	Max      int      `json:"max"`
}

// TypeRanges maps numeric ship type codes to categories. Ranges are
// inclusive and must not overlap; the first matching range wins.
type TypeRanges []TypeRange

// DefaultTypeRanges returns the standard AIS ship type mapping.
func DefaultTypeRanges() TypeRanges {
	return TypeRanges{
		{Category: CategoryCargo, Min: 70, Max: 79},
		{Category: CategoryTanker, Min: 80, Max: 89},
		{Category: CategoryPassenger, Min: 60, Max: 69},
		{Category: CategoryFishing, Min: 30, Max: 39},
	}
}

// Classify maps a ship type code to its category. known reports whether a
// code has been observed for the vessel at all: without one the vessel is
// Unknown, with one outside every range it is Other.
func (tr TypeRanges) Classify(code int, known bool) Category {
	if !known {
		return CategoryUnknown
	}
	for _, r := range tr {
		if code >= r.Min && code <= r.Max {
			return r.Category
		}
	}
	return CategoryOther
}

package pricing

import "strings"

// ServiceType enumerates the services a garment can be priced for.
type ServiceType string

const (
	Wash     ServiceType = "wash"
	DryClean ServiceType = "dryClean"
	Iron     ServiceType = "iron"
)

// ServiceTypes lists every service in display order.
var ServiceTypes = []ServiceType{Wash, DryClean, Iron}

// ItemType enumerates the garment kinds the shop prices.
type ItemType string

const (
	Shirt    ItemType = "Shirt"
	Pants    ItemType = "Pants"
	Dress    ItemType = "Dress"
	Suit     ItemType = "Suit"
	Bedsheet ItemType = "Bedsheet"
	Towel    ItemType = "Towel"
	Jacket   ItemType = "Jacket"
	Skirt    ItemType = "Skirt"
)

// ItemTypes lists every item type in display order.
var ItemTypes = []ItemType{Shirt, Pants, Dress, Suit, Bedsheet, Towel, Jacket, Skirt}

func (s ServiceType) String() string { return string(s) }

// Valid reports whether s is one of ServiceTypes.
func (s ServiceType) Valid() bool {
	switch s {
	case Wash, DryClean, Iron:
		return true
	}
	return false
}

// Label is the human readable service name.
func (s ServiceType) Label() string {
	switch s {
	case Wash:
		return "Wash & Fold"
	case DryClean:
		return "Dry Clean"
	case Iron:
		return "Iron Only"
	}
	return string(s)
}

// UnmarshalText canonicalises known spellings and keeps unknown values as-is so that
// the lookup, not the decoder, reports them.
func (s *ServiceType) UnmarshalText(b []byte) error {
	*s = ParseServiceType(string(b))
	return nil
}

// ParseServiceType accepts "dryClean", "dry_clean", "dry-clean" and "dry clean" in any case.
func ParseServiceType(raw string) ServiceType {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	switch key {
	case "wash", "washfold":
		return Wash
	case "dryclean":
		return DryClean
	case "iron", "ironing", "irononly":
		return Iron
	}
	return ServiceType(strings.TrimSpace(raw))
}

func (t ItemType) String() string { return string(t) }

// Valid reports whether t is one of ItemTypes.
func (t ItemType) Valid() bool {
	for _, known := range ItemTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t *ItemType) UnmarshalText(b []byte) error {
	*t = ParseItemType(string(b))
	return nil
}

// ParseItemType matches item names case-insensitively.
func ParseItemType(raw string) ItemType {
	trimmed := strings.TrimSpace(raw)
	for _, known := range ItemTypes {
		if strings.EqualFold(trimmed, string(known)) {
			return known
		}
	}
	return ItemType(trimmed)
}

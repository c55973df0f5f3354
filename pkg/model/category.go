package model

import (
	"fmt"
	"strings"
)

// Category classifies a location for filtering and display.
// The set of valid values is closed; see AllCategories.
type Category string

// Emergency-services deployment.
const (
	CategoryGovernment Category = "government"
	CategoryPolice     Category = "police"
	CategoryFire       Category = "fire"
	CategoryHospital   Category = "hospital"
	CategoryLifeguard  Category = "lifeguard"
	CategoryPrison     Category = "prison"
	CategoryImpound    Category = "impound"
	CategoryEmergency  Category = "emergency"
)

// Commerce deployment.
const (
	CategoryGas        Category = "gas"
	CategoryBank       Category = "bank"
	CategoryClothing   Category = "clothing"
	CategoryAmmunation Category = "ammunation"
	CategoryPhone      Category = "phone"
	CategoryOther      Category = "other"
)

// Named category sets. A deployment picks exactly one.
const (
	SetEmergency = "emergency"
	SetCommerce  = "commerce"
)

var categorySets = map[string][]Category{
	SetEmergency: {
		CategoryGovernment, CategoryPolice, CategoryFire, CategoryHospital,
		CategoryLifeguard, CategoryPrison, CategoryImpound, CategoryEmergency,
	},
	SetCommerce: {
		CategoryGas, CategoryBank, CategoryClothing, CategoryAmmunation,
		CategoryPhone, CategoryOther,
	},
}

// AllCategories returns every known category, emergency set first.
func AllCategories() []Category {
	all := make([]Category, 0, len(categorySets[SetEmergency])+len(categorySets[SetCommerce]))
	all = append(all, categorySets[SetEmergency]...)
	all = append(all, categorySets[SetCommerce]...)
	return all
}

// CategorySet returns the ordered categories of a named set.
func CategorySet(name string) ([]Category, error) {
	set, ok := categorySets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown category set %q", name)
	}
	out := make([]Category, len(set))
	copy(out, set)
	return out, nil
}

// ParseCategory normalizes s and checks it against the known categories.
func ParseCategory(s string) (Category, error) {
	c := NormalizeCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// NormalizeCategory trims and lower-cases a raw category tag. It does not
// check membership.
func NormalizeCategory(s string) Category {
	return Category(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, set := range categorySets {
		for _, known := range set {
			if known == c {
				return true
			}
		}
	}
	return false
}

// In reports whether c is a member of set.
func (c Category) In(set []Category) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}

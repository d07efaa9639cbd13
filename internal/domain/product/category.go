package product

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCategory = errors.New("unknown product category")

// Category is the closed set of product kinds that govern purchase rules.
type Category string

const (
	CategoryPhysical     Category = "FISICO"
	CategoryDigital      Category = "DIGITAL"
	CategoryDLC          Category = "DLC"
	CategorySubscription Category = "SUSCRIPCION"
)

// Categories lists every known category in catalog order.
func Categories() []Category {
	return []Category{CategoryPhysical, CategoryDigital, CategoryDLC, CategorySubscription}
}

// ParseCategory maps an external tag (case-insensitive) onto a known category.
func ParseCategory(tag string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(tag)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, tag)
	}
	return c, nil
}

func (c Category) Valid() bool {
	switch c {
	case CategoryPhysical, CategoryDigital, CategoryDLC, CategorySubscription:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

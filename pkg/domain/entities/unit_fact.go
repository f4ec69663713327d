package entities

import (
	"fmt"
	"strings"
)

// HandlingUnit identifies a physical shipping container. Output always
// carries the 20-digit zero-padded form.
type HandlingUnit string

// ProductID represents a unique product identifier
type ProductID string

// Quantity represents an integer quantity of discrete units
type Quantity int64

// HandlingUnitWidth is the padded width of a handling unit identifier
const HandlingUnitWidth = 20

// NormalizeHandlingUnit left-pads a handling unit identifier with zeros to
// the canonical 20-digit width. Identifiers already at (or beyond) that
// width are returned unchanged.
func NormalizeHandlingUnit(raw string) HandlingUnit {
	s := strings.TrimSpace(raw)
	if len(s) >= HandlingUnitWidth {
		return HandlingUnit(s)
	}
	return HandlingUnit(strings.Repeat("0", HandlingUnitWidth-len(s)) + s)
}

// UnitFact is one per-handling-unit observation from the positional
// document: a single (handling unit, product) line with its counted
// quantity. Facts are created once per document parse and never mutated.
type UnitFact struct {
	HandlingUnit    HandlingUnit
	DeliveryNumber  string
	Product         ProductID
	CountryOfOrigin string
	Quantity        Quantity
}

// NewUnitFact creates a validated UnitFact
func NewUnitFact(hu, deliveryNumber string, product ProductID, country string, qty Quantity) (*UnitFact, error) {
	if hu == "" {
		return nil, fmt.Errorf("handling unit cannot be empty")
	}
	if product == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if len(country) != 2 {
		return nil, fmt.Errorf("country of origin must be a 2-letter code, got %q", country)
	}
	if qty < 0 {
		return nil, fmt.Errorf("quantity cannot be negative, got %d", qty)
	}

	return &UnitFact{
		HandlingUnit:    NormalizeHandlingUnit(hu),
		DeliveryNumber:  deliveryNumber,
		Product:         product,
		CountryOfOrigin: country,
		Quantity:        qty,
	}, nil
}

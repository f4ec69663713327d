package entities

// Allocation assigns part of an aggregated manifest row's quantity to a
// single handling unit. One output row is emitted per allocation.
type Allocation struct {
	HandlingUnit HandlingUnit
	Quantity     Quantity
}

// Mismatch records a conservation violation for one (handling unit, product)
// pair found by the verifier. Delta is actual minus expected: positive means
// the rewritten manifest carries too much, negative too little.
type Mismatch struct {
	HandlingUnit HandlingUnit
	Product      ProductID
	Delta        Quantity
}

// IsSurplus reports whether the rewritten manifest carries more than the
// positional document counted.
func (m Mismatch) IsSurplus() bool {
	return m.Delta > 0
}

// IsDeficit reports whether the rewritten manifest carries less than the
// positional document counted.
func (m Mismatch) IsDeficit() bool {
	return m.Delta < 0
}

// Magnitude returns the absolute size of the mismatch
func (m Mismatch) Magnitude() Quantity {
	if m.Delta < 0 {
		return -m.Delta
	}
	return m.Delta
}

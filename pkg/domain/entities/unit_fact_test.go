package entities

import "testing"

func TestNewUnitFact(t *testing.T) {
	fact, err := NewUnitFact("0000000001", "80001234", "P1", "NL", 5)
	if err != nil {
		t.Fatalf("Failed to create unit fact: %v", err)
	}
	if fact.HandlingUnit != "00000000000000000001" {
		t.Errorf("Expected padded handling unit, got %s", fact.HandlingUnit)
	}
	if fact.Quantity != 5 {
		t.Errorf("Expected quantity 5, got %d", fact.Quantity)
	}
}

func TestNewUnitFact_Validation(t *testing.T) {
	cases := []struct {
		name    string
		hu      string
		product ProductID
		country string
		qty     Quantity
	}{
		{"empty handling unit", "", "P1", "NL", 5},
		{"empty product", "0000000001", "", "NL", 5},
		{"bad country code", "0000000001", "P1", "NLD", 5},
		{"negative quantity", "0000000001", "P1", "NL", -1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewUnitFact(c.hu, "80001234", c.product, c.country, c.qty); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

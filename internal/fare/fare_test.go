package fare

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTotal_SinglePassenger(t *testing.T) {
	price := decimal.RequireFromString("499.50")

	total, err := Total(price, 1)
	if err != nil {
		t.Fatalf("Total failed: %v", err)
	}

	if !total.Equal(price) {
		t.Errorf("Expected %s, got %s", price.String(), total.String())
	}
}

func TestTotal_MultiplePassengers(t *testing.T) {
	price := decimal.RequireFromString("100.10")

	total, err := Total(price, 3)
	if err != nil {
		t.Fatalf("Total failed: %v", err)
	}

	expected := decimal.RequireFromString("300.30")
	if !total.Equal(expected) {
		t.Errorf("Expected %s, got %s", expected.String(), total.String())
	}
}

func TestTotal_ExactDecimalArithmetic(t *testing.T) {
	// 0.10 * 3 must be exactly 0.30, not a float approximation.
	price := decimal.RequireFromString("0.10")

	total, err := Total(price, 3)
	if err != nil {
		t.Fatalf("Total failed: %v", err)
	}

	if total.String() != "0.3" && total.String() != "0.30" {
		t.Errorf("Expected exact 0.30, got %s", total.String())
	}
	if !total.Equal(decimal.RequireFromString("0.30")) {
		t.Errorf("Expected 0.30, got %s", total.String())
	}
}

func TestTotal_InvalidCount(t *testing.T) {
	price := decimal.RequireFromString("100")

	if _, err := Total(price, 0); err == nil {
		t.Error("Expected error for zero passengers")
	}
	if _, err := Total(price, -1); err == nil {
		t.Error("Expected error for negative passengers")
	}
}

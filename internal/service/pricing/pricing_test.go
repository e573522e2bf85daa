package pricing

import (
	"errors"
	"testing"

	"vendorhub/internal/domain"
)

func TestCompute_ExampleScenario(t *testing.T) {
	// $20.00 product, qty 2, 15% fee, $9.99 shipping.
	totals, err := Compute(2000, 2, 0.15, 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.SubtotalCents != 4000 {
		t.Fatalf("subtotal = %d, want 4000", totals.SubtotalCents)
	}
	if totals.PlatformFeeCents != 600 {
		t.Fatalf("platform fee = %d, want 600", totals.PlatformFeeCents)
	}
	if totals.TotalCents != 5599 {
		t.Fatalf("total = %d, want 5599", totals.TotalCents)
	}
}

func TestCompute_TotalIsExactSum(t *testing.T) {
	cases := []struct {
		price    int64
		qty      int
		fee      float64
		shipping int64
	}{
		{1, 1, 0, 0},
		{999, 3, 0.15, 599},
		{123456, 7, 0.025, 0},
		{2000, 2, 0.999999, 999},
		{0, 5, 0.5, 100},
	}
	for _, c := range cases {
		totals, err := Compute(c.price, c.qty, c.fee, c.shipping)
		if err != nil {
			t.Fatalf("Compute(%d,%d,%v,%d): %v", c.price, c.qty, c.fee, c.shipping, err)
		}
		sum := totals.SubtotalCents + totals.PlatformFeeCents + totals.ShippingCostCents
		if totals.TotalCents != sum {
			t.Fatalf("Compute(%d,%d,%v,%d): total %d != sum of parts %d",
				c.price, c.qty, c.fee, c.shipping, totals.TotalCents, sum)
		}
	}
}

func TestCompute_InvalidInput(t *testing.T) {
	cases := []struct {
		name     string
		price    int64
		qty      int
		fee      float64
		shipping int64
	}{
		{"zero quantity", 100, 0, 0.1, 0},
		{"negative quantity", 100, -1, 0.1, 0},
		{"negative price", -100, 1, 0.1, 0},
		{"fee at 1", 100, 1, 1.0, 0},
		{"negative fee", 100, 1, -0.1, 0},
		{"negative shipping", 100, 1, 0.1, -5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Compute(c.price, c.qty, c.fee, c.shipping); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestComputeForProduct_BillingCyclePrice(t *testing.T) {
	monthly := int64(499)
	p := domain.Product{PriceCents: 4999, MonthlyPriceCents: &monthly, RequiresShipping: false}

	totals, err := ComputeForProduct(p, 1, domain.BillingMonthly, 0.15, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.SubtotalCents != 499 {
		t.Fatalf("subtotal = %d, want monthly price 499", totals.SubtotalCents)
	}

	// No yearly price defined: falls back to the one-time price.
	totals, err = ComputeForProduct(p, 1, domain.BillingYearly, 0.15, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.SubtotalCents != 4999 {
		t.Fatalf("subtotal = %d, want fallback 4999", totals.SubtotalCents)
	}
}

func TestComputeForProduct_DigitalIgnoresShipping(t *testing.T) {
	p := domain.Product{PriceCents: 1000, RequiresShipping: false}
	totals, err := ComputeForProduct(p, 1, domain.BillingOneTime, 0.1, 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.ShippingCostCents != 0 {
		t.Fatalf("shipping = %d, want 0 for non-shipping product", totals.ShippingCostCents)
	}
	if totals.TotalCents != 1100 {
		t.Fatalf("total = %d, want 1100", totals.TotalCents)
	}
}

func TestComputeForProduct_UnknownCycle(t *testing.T) {
	p := domain.Product{PriceCents: 1000}
	if _, err := ComputeForProduct(p, 1, "daily", 0.1, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

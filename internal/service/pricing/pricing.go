// Package pricing computes checkout money amounts. All arithmetic is done
// in integer minor units (cents) so repeated computation never drifts.
package pricing

import (
	"fmt"
	"math"

	"vendorhub/internal/domain"
)

type Totals struct {
	SubtotalCents     int64 `json:"subtotalCents"`
	PlatformFeeCents  int64 `json:"platformFeeCents"`
	ShippingCostCents int64 `json:"shippingCostCents"`
	TotalCents        int64 `json:"totalCents"`
}

// Compute derives the checkout totals from a unit price, quantity, platform
// fee fraction and shipping cost. The platform fee rounds half away from
// zero on the cent.
func Compute(unitPriceCents int64, quantity int, feePercent float64, shippingCents int64) (Totals, error) {
	if quantity <= 0 {
		return Totals{}, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	if unitPriceCents < 0 {
		return Totals{}, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	if feePercent < 0 || feePercent >= 1 {
		return Totals{}, fmt.Errorf("%w: platform fee percent must be in [0,1)", domain.ErrInvalidInput)
	}
	if shippingCents < 0 {
		return Totals{}, fmt.Errorf("%w: shipping cost must not be negative", domain.ErrInvalidInput)
	}

	subtotal := unitPriceCents * int64(quantity)
	fee := int64(math.Round(float64(subtotal) * feePercent))

	return Totals{
		SubtotalCents:     subtotal,
		PlatformFeeCents:  fee,
		ShippingCostCents: shippingCents,
		TotalCents:        subtotal + fee + shippingCents,
	}, nil
}

// ComputeForProduct resolves the billing-cycle unit price before computing
// totals. Non-shipping products always total with zero shipping.
func ComputeForProduct(p domain.Product, quantity int, cycle domain.BillingCycle, feePercent float64, shippingCents int64) (Totals, error) {
	if !cycle.Valid() {
		return Totals{}, fmt.Errorf("%w: unknown billing cycle %q", domain.ErrInvalidInput, cycle)
	}
	if !p.RequiresShipping {
		shippingCents = 0
	}
	return Compute(p.UnitPriceCentsFor(cycle), quantity, feePercent, shippingCents)
}

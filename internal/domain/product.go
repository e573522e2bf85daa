package domain

import "time"

type BillingCycle string

const (
	BillingOneTime BillingCycle = "one_time"
	BillingWeekly  BillingCycle = "weekly"
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// Valid reports whether c is a known billing cycle.
func (c BillingCycle) Valid() bool {
	switch c {
	case BillingOneTime, BillingWeekly, BillingMonthly, BillingYearly:
		return true
	}
	return false
}

// Recurring reports whether the cycle bills repeatedly.
func (c BillingCycle) Recurring() bool {
	return c.Valid() && c != BillingOneTime
}

type Product struct {
	ID                string                 `json:"id"`
	ShopID            string                 `json:"shopId"`
	Key               string                 `json:"key"`
	SKU               string                 `json:"sku"`
	Name              string                 `json:"name"`
	Description       string                 `json:"description,omitempty"`
	PriceCents        int64                  `json:"priceCents"`
	WeeklyPriceCents  *int64                 `json:"weeklyPriceCents,omitempty"`
	MonthlyPriceCents *int64                 `json:"monthlyPriceCents,omitempty"`
	YearlyPriceCents  *int64                 `json:"yearlyPriceCents,omitempty"`
	Currency          string                 `json:"currency"`
	RequiresShipping  bool                   `json:"requiresShipping"`
	Active            bool                   `json:"active"`
	Attributes        map[string]interface{} `json:"attributes,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
}

// UnitPriceCentsFor returns the unit price for the given billing cycle,
// falling back to the one-time price when the product defines no
// cycle-specific price.
func (p Product) UnitPriceCentsFor(cycle BillingCycle) int64 {
	switch cycle {
	case BillingWeekly:
		if p.WeeklyPriceCents != nil {
			return *p.WeeklyPriceCents
		}
	case BillingMonthly:
		if p.MonthlyPriceCents != nil {
			return *p.MonthlyPriceCents
		}
	case BillingYearly:
		if p.YearlyPriceCents != nil {
			return *p.YearlyPriceCents
		}
	}
	return p.PriceCents
}

package domain

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionPaused   SubscriptionStatus = "paused"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

type Subscription struct {
	ID               string             `json:"id"`
	CustomerID       string             `json:"customerId"`
	ProductID        string             `json:"productId"`
	ShopID           string             `json:"shopId"`
	BillingCycle     BillingCycle       `json:"billingCycle"`
	AmountCents      int64              `json:"amountCents"`
	Currency         string             `json:"currency"`
	Status           SubscriptionStatus `json:"status"`
	CurrentPeriodEnd time.Time          `json:"currentPeriodEnd"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// PeriodLength returns the duration of one billing period.
func (c BillingCycle) PeriodLength() time.Duration {
	switch c {
	case BillingWeekly:
		return 7 * 24 * time.Hour
	case BillingMonthly:
		return 30 * 24 * time.Hour
	case BillingYearly:
		return 365 * 24 * time.Hour
	}
	return 0
}

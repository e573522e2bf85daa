// Package notification sends transactional email. Each notification kind
// has its own typed payload so the template data is statically checked.
package notification

import (
	"context"

	"vendorhub/internal/domain"
)

type OrderConfirmationData struct {
	Order       domain.Order
	ShopName    string
	ProductName string
}

type SubscriptionWelcomeData struct {
	Email        string
	Name         string
	ShopName     string
	ProductName  string
	BillingCycle domain.BillingCycle
	AmountCents  int64
	Currency     string
}

// Sender delivers buyer-facing email. Failures are for the caller to log;
// they must never fail a checkout.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, data OrderConfirmationData) error
	SendSubscriptionWelcome(ctx context.Context, data SubscriptionWelcomeData) error
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) SendOrderConfirmation(context.Context, OrderConfirmationData) error   { return nil }
func (Nop) SendSubscriptionWelcome(context.Context, SubscriptionWelcomeData) error { return nil }

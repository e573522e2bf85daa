// Package payment wraps the payment provider: creating hosted checkout
// sessions and turning verified webhook deliveries into domain events.
package payment

import (
	"context"

	"vendorhub/internal/domain"
)

// Checkout is the provider-side session a buyer is redirected to.
type Checkout struct {
	RedirectURL       string
	ProviderSessionID string
}

type CheckoutRequest struct {
	Session domain.CheckoutSession
	Product domain.Product
	// SuccessURL and CancelURL are where the provider sends the buyer back.
	SuccessURL string
	CancelURL  string
}

type EventKind string

const (
	EventPaymentSucceeded EventKind = "payment_succeeded"
	EventPaymentFailed    EventKind = "payment_failed"
	EventSessionExpired   EventKind = "session_expired"
	EventRefunded         EventKind = "refunded"
	// EventIgnored marks deliveries we verify but do not act on.
	EventIgnored EventKind = "ignored"
)

// WebhookEvent is a verified provider notification. Depending on the event
// type the provider knows either its own session id or our session id (from
// metadata we attach at creation); at least one is set for non-ignored events.
type WebhookEvent struct {
	Kind              EventKind
	ProviderSessionID string
	SessionID         string
	ProviderEventType string
}

type Provider interface {
	// CreateCheckout builds a provider checkout session for a fully
	// prepared checkout session and returns the redirect target.
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error)

	// VerifyWebhook authenticates a raw webhook delivery. It fails with
	// domain.ErrSignatureInvalid when the signature does not verify; the
	// payload must not be processed in that case.
	VerifyWebhook(payload []byte, signature string) (WebhookEvent, error)
}

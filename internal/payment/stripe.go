package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"vendorhub/internal/domain"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

// metadataSessionKey carries our checkout session id through Stripe objects
// so webhook deliveries can be traced back without extra state.
const metadataSessionKey = "checkout_session_id"

type StripeProvider struct {
	api           *client.API
	webhookSecret string
	logger        *zap.Logger
}

func NewStripe(apiKey, webhookSecret string, logger *zap.Logger) *StripeProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeProvider{api: api, webhookSecret: webhookSecret, logger: logger}
}

func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error) {
	session := req.Session
	currency := strings.ToLower(session.Currency)

	items := []*stripe.CheckoutSessionLineItemParams{{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:    stripe.String(currency),
			UnitAmount:  stripe.Int64(session.SubtotalCents / int64(session.Quantity)),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{Name: stripe.String(req.Product.Name)},
			Recurring:   recurringParams(session.BillingCycle),
		},
		Quantity: stripe.Int64(int64(session.Quantity)),
	}}
	if session.PlatformFeeCents > 0 {
		items = append(items, oneTimeItem(currency, "Platform fee", session.PlatformFeeCents))
	}
	if session.ShippingCostCents > 0 {
		items = append(items, oneTimeItem(currency, "Shipping", session.ShippingCostCents))
	}

	mode := stripe.CheckoutSessionModePayment
	if session.BillingCycle.Recurring() {
		mode = stripe.CheckoutSessionModeSubscription
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(mode)),
		LineItems:         items,
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(session.ID),
	}
	if session.Email != "" {
		params.CustomerEmail = stripe.String(session.Email)
	}
	params.AddMetadata(metadataSessionKey, session.ID)
	if mode == stripe.CheckoutSessionModePayment {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{metadataSessionKey: session.ID},
		}
	} else {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{metadataSessionKey: session.ID},
		}
	}
	// Stable per session: a retried create returns the same Stripe session.
	params.SetIdempotencyKey("checkout-" + session.ID)
	params.Context = ctx

	cs, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		p.logger.Warn("stripe: create checkout session", zap.String("session_id", session.ID), zap.Error(err))
		return Checkout{}, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	return Checkout{RedirectURL: cs.URL, ProviderSessionID: cs.ID}, nil
}

func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", domain.ErrSignatureInvalid, err)
	}

	out := WebhookEvent{Kind: EventIgnored, ProviderEventType: string(event.Type)}
	switch event.Type {
	case "checkout.session.completed", "checkout.session.expired":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return WebhookEvent{}, fmt.Errorf("decode checkout session event: %w", err)
		}
		out.ProviderSessionID = cs.ID
		out.SessionID = cs.ClientReferenceID
		if event.Type == "checkout.session.completed" {
			out.Kind = EventPaymentSucceeded
		} else {
			out.Kind = EventSessionExpired
		}
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return WebhookEvent{}, fmt.Errorf("decode payment intent event: %w", err)
		}
		out.SessionID = pi.Metadata[metadataSessionKey]
		if event.Type == "payment_intent.succeeded" {
			out.Kind = EventPaymentSucceeded
		} else {
			out.Kind = EventPaymentFailed
		}
	case "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return WebhookEvent{}, fmt.Errorf("decode charge event: %w", err)
		}
		out.Kind = EventRefunded
		out.SessionID = ch.Metadata[metadataSessionKey]
	}
	return out, nil
}

func oneTimeItem(currency, name string, amountCents int64) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:    stripe.String(currency),
			UnitAmount:  stripe.Int64(amountCents),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{Name: stripe.String(name)},
		},
		Quantity: stripe.Int64(1),
	}
}

func recurringParams(cycle domain.BillingCycle) *stripe.CheckoutSessionLineItemPriceDataRecurringParams {
	var interval string
	switch cycle {
	case domain.BillingWeekly:
		interval = "week"
	case domain.BillingMonthly:
		interval = "month"
	case domain.BillingYearly:
		interval = "year"
	default:
		return nil
	}
	return &stripe.CheckoutSessionLineItemPriceDataRecurringParams{Interval: stripe.String(interval)}
}

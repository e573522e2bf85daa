package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vendorhub/internal/domain"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	createAttempts = 3
	retryBackoff   = 250 * time.Millisecond
)

// Resilient wraps a Provider with a circuit breaker and bounded retry for
// checkout creation. Retries are safe because the inner provider pins an
// idempotency key to the session. Webhook verification is pure and passes
// straight through.
type Resilient struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[Checkout]
	logger  *zap.Logger
}

func NewResilient(inner Provider, logger *zap.Logger) *Resilient {
	if logger == nil {
		logger = zap.NewNop()
	}
	breaker := gobreaker.NewCircuitBreaker[Checkout](gobreaker.Settings{
		Name:    "payment-provider",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Resilient{inner: inner, breaker: breaker, logger: logger}
}

func (r *Resilient) CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error) {
	var lastErr error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		checkout, err := r.breaker.Execute(func() (Checkout, error) {
			return r.inner.CreateCheckout(ctx, req)
		})
		if err == nil {
			return checkout, nil
		}
		lastErr = err
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}
		r.logger.Warn("payment: create checkout attempt failed",
			zap.String("session_id", req.Session.ID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < createAttempts {
			select {
			case <-ctx.Done():
				return Checkout{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
	}
	if errors.Is(lastErr, domain.ErrProviderUnavailable) {
		return Checkout{}, lastErr
	}
	return Checkout{}, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, lastErr)
}

func (r *Resilient) VerifyWebhook(payload []byte, signature string) (WebhookEvent, error) {
	return r.inner.VerifyWebhook(payload, signature)
}

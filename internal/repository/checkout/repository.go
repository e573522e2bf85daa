package checkout

import (
	"context"
	"time"

	"vendorhub/internal/domain"
)

type CreateSessionInput struct {
	ShopID           string
	ProductID        string
	Quantity         int
	BillingCycle     domain.BillingCycle
	SubtotalCents    int64
	PlatformFeeCents int64
	TotalCents       int64
	Currency         string
	ExpiresAt        time.Time
}

// StepTotals carries the server-computed money amounts written alongside a
// step transition.
type StepTotals struct {
	SubtotalCents     int64
	PlatformFeeCents  int64
	ShippingCostCents int64
	TotalCents        int64
}

type UpdateInformationInput struct {
	SessionID string
	// FromStep is the step the caller observed; the update only applies if
	// the persisted step still matches.
	FromStep int
	ToStep   int
	Email    string
	Name     string
	Phone    string
	Address  domain.Address
	Note     string
	Totals   StepTotals
}

type UpdateShippingInput struct {
	SessionID string
	FromStep  int
	ToStep    int
	RateID    string
	Totals    StepTotals
}

type SetPaymentInput struct {
	SessionID         string
	FromStep          int
	PaymentMethod     string
	ProviderSessionID string
}

// SubscriptionSeed describes the subscription row created when a recurring
// checkout is finalized.
type SubscriptionSeed struct {
	AmountCents      int64
	CurrentPeriodEnd time.Time
}

type FinalizePaymentInput struct {
	SessionID      string
	OrderNumber    string
	PlatformFeePct float64
	Subscription   *SubscriptionSeed
}

type Repository interface {
	Create(ctx context.Context, in CreateSessionInput) (*domain.CheckoutSession, error)
	GetByID(ctx context.Context, id string) (*domain.CheckoutSession, error)
	GetByProviderSessionID(ctx context.Context, providerSessionID string) (*domain.CheckoutSession, error)

	// The Update methods compare-and-set on current_step: if the persisted
	// step no longer matches FromStep the call fails with
	// domain.ErrConflict and nothing is written.
	UpdateInformation(ctx context.Context, in UpdateInformationInput) (*domain.CheckoutSession, error)
	UpdateShipping(ctx context.Context, in UpdateShippingInput) (*domain.CheckoutSession, error)
	SetPayment(ctx context.Context, in SetPaymentInput) (*domain.CheckoutSession, error)

	// FinalizePayment marks the session paid, advances it to the terminal
	// step and materializes the order in one transaction. It is idempotent:
	// finalizing an already-paid session returns the existing order with
	// created=false.
	FinalizePayment(ctx context.Context, in FinalizePaymentInput) (order *domain.Order, created bool, err error)

	// MarkPaymentFailed flips a pending session to failed. Paid sessions
	// are left untouched.
	MarkPaymentFailed(ctx context.Context, providerSessionID string) (*domain.CheckoutSession, error)

	// DeleteExpired removes unpaid sessions past their deadline and
	// returns how many were deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

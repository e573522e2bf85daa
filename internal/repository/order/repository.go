package order

import (
	"context"
	"time"

	"vendorhub/internal/domain"
)

type FulfillmentUpdate struct {
	OrderID string
	// FromStatus is the status the caller observed; the update only
	// applies while it still matches.
	FromStatus        domain.FulfillmentStatus
	ToStatus          domain.FulfillmentStatus
	TrackingNumber    string
	Carrier           string
	EstimatedDelivery *time.Time
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	GetByProviderSessionID(ctx context.Context, providerSessionID string) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	ListByShop(ctx context.Context, shopID string) ([]domain.Order, error)
	UpdateFulfillment(ctx context.Context, in FulfillmentUpdate) (*domain.Order, error)
	SetPaymentStatus(ctx context.Context, providerSessionID string, status domain.OrderPaymentStatus) (*domain.Order, error)
}

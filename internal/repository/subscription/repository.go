package subscription

import (
	"context"

	"vendorhub/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Subscription, error)
	ListByShop(ctx context.Context, shopID string) ([]domain.Subscription, error)
	// UpdateStatus compare-and-sets the status; a mismatch with the
	// observed status fails with domain.ErrConflict.
	UpdateStatus(ctx context.Context, id string, from, to domain.SubscriptionStatus) (*domain.Subscription, error)
}

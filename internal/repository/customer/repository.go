package customer

import (
	"context"

	"vendorhub/internal/domain"
)

type Repository interface {
	// UpsertByEmail creates the customer if missing and refreshes name and
	// phone when provided.
	UpsertByEmail(ctx context.Context, email, name, phone string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

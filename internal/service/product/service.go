// Package product manages the catalog items shops sell.
package product

import (
	"context"
	"fmt"
	"strings"

	"vendorhub/internal/domain"
	productrepo "vendorhub/internal/repository/product"

	"go.uber.org/zap"
)

type shopRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Shop, error)
}

type Service struct {
	repo   productrepo.Repository
	shops  shopRepo
	logger *zap.Logger
}

func New(repo productrepo.Repository, shops shopRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, shops: shops, logger: logger}
}

type UpsertInput struct {
	ShopID            string                 `json:"shopId"`
	Key               string                 `json:"key" binding:"required"`
	SKU               string                 `json:"sku"`
	Name              string                 `json:"name" binding:"required"`
	Description       string                 `json:"description"`
	PriceCents        int64                  `json:"priceCents"`
	WeeklyPriceCents  *int64                 `json:"weeklyPriceCents"`
	MonthlyPriceCents *int64                 `json:"monthlyPriceCents"`
	YearlyPriceCents  *int64                 `json:"yearlyPriceCents"`
	Currency          string                 `json:"currency"`
	RequiresShipping  bool                   `json:"requiresShipping"`
	Active            *bool                  `json:"active"`
	Attributes        map[string]interface{} `json:"attributes"`
}

// Upsert creates or updates a product, keyed by (shop, key).
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (*domain.Product, error) {
	if strings.TrimSpace(in.Key) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: key and name required", domain.ErrInvalidInput)
	}
	if in.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	for _, p := range []*int64{in.WeeklyPriceCents, in.MonthlyPriceCents, in.YearlyPriceCents} {
		if p != nil && *p < 0 {
			return nil, fmt.Errorf("%w: cycle price must not be negative", domain.ErrInvalidInput)
		}
	}
	if _, err := s.shops.GetByID(ctx, in.ShopID); err != nil {
		return nil, err
	}

	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "usd"
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	return s.repo.Upsert(ctx, domain.Product{
		ShopID:            in.ShopID,
		Key:               strings.TrimSpace(in.Key),
		SKU:               strings.TrimSpace(in.SKU),
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		PriceCents:        in.PriceCents,
		WeeklyPriceCents:  in.WeeklyPriceCents,
		MonthlyPriceCents: in.MonthlyPriceCents,
		YearlyPriceCents:  in.YearlyPriceCents,
		Currency:          currency,
		RequiresShipping:  in.RequiresShipping,
		Active:            active,
		Attributes:        in.Attributes,
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByShop(ctx context.Context, shopID string, activeOnly bool) ([]domain.Product, error) {
	return s.repo.ListByShop(ctx, shopID, activeOnly)
}

// SetActive toggles whether a product can start new checkouts.
func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.logger.Info("product: active flag changed",
		zap.String("product_id", id), zap.Bool("active", active))
	return nil
}

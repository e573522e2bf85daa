// Package shop manages the vendors selling on the platform.
package shop

import (
	"context"
	"fmt"
	"strings"

	"vendorhub/internal/domain"
	shoprepo "vendorhub/internal/repository/shop"
)

type Service struct {
	repo shoprepo.Repository
}

func New(repo shoprepo.Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Name               string  `json:"name" binding:"required"`
	OwnerEmail         string  `json:"ownerEmail" binding:"required,email"`
	PlatformFeePercent float64 `json:"platformFeePercent"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Shop, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.OwnerEmail) == "" {
		return nil, fmt.Errorf("%w: name and owner email required", domain.ErrInvalidInput)
	}
	if in.PlatformFeePercent < 0 || in.PlatformFeePercent >= 1 {
		return nil, fmt.Errorf("%w: platform fee percent must be in [0,1)", domain.ErrInvalidInput)
	}
	return s.repo.Create(ctx, shoprepo.CreateShopInput{
		Name:               strings.TrimSpace(in.Name),
		OwnerEmail:         strings.ToLower(strings.TrimSpace(in.OwnerEmail)),
		PlatformFeePercent: in.PlatformFeePercent,
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Shop, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Shop, error) {
	return s.repo.List(ctx)
}

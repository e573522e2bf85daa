// Package subscription manages the lifecycle of recurring purchases after
// checkout has seeded them.
package subscription

import (
	"context"
	"fmt"
	"strings"

	"vendorhub/internal/domain"

	"go.uber.org/zap"
)

type repo interface {
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Subscription, error)
	ListByShop(ctx context.Context, shopID string) ([]domain.Subscription, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.SubscriptionStatus) (*domain.Subscription, error)
}

type customerRepo interface {
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

type Service struct {
	subs      repo
	customers customerRepo
	logger    *zap.Logger
}

func New(subs repo, customers customerRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{subs: subs, customers: customers, logger: logger}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Subscription, error) {
	return s.subs.GetByID(ctx, id)
}

// ListByEmail returns all subscriptions belonging to the customer with
// the given email.
func (s *Service) ListByEmail(ctx context.Context, email string) ([]domain.Subscription, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email required", domain.ErrInvalidInput)
	}
	customer, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.subs.ListByCustomer(ctx, customer.ID)
}

func (s *Service) ListByShop(ctx context.Context, shopID string) ([]domain.Subscription, error) {
	return s.subs.ListByShop(ctx, shopID)
}

// Cancel ends a subscription. Any non-canceled subscription may be
// canceled; cancellation is terminal.
func (s *Service) Cancel(ctx context.Context, id string) (*domain.Subscription, error) {
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == domain.SubscriptionCanceled {
		return nil, fmt.Errorf("%w: subscription already canceled", domain.ErrInvalidState)
	}
	return s.transition(ctx, id, sub.Status, domain.SubscriptionCanceled)
}

// Pause suspends billing on an active subscription.
func (s *Service) Pause(ctx context.Context, id string) (*domain.Subscription, error) {
	return s.transitionFrom(ctx, id, domain.SubscriptionActive, domain.SubscriptionPaused)
}

// Resume reactivates a paused subscription.
func (s *Service) Resume(ctx context.Context, id string) (*domain.Subscription, error) {
	return s.transitionFrom(ctx, id, domain.SubscriptionPaused, domain.SubscriptionActive)
}

// MarkPastDue flags an active subscription whose renewal charge failed.
func (s *Service) MarkPastDue(ctx context.Context, id string) (*domain.Subscription, error) {
	return s.transitionFrom(ctx, id, domain.SubscriptionActive, domain.SubscriptionPastDue)
}

func (s *Service) transitionFrom(ctx context.Context, id string, from, to domain.SubscriptionStatus) (*domain.Subscription, error) {
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != from {
		return nil, fmt.Errorf("%w: subscription is %q, expected %q", domain.ErrInvalidState, sub.Status, from)
	}
	return s.transition(ctx, id, from, to)
}

func (s *Service) transition(ctx context.Context, id string, from, to domain.SubscriptionStatus) (*domain.Subscription, error) {
	sub, err := s.subs.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	s.logger.Info("subscription: status changed",
		zap.String("subscription_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return sub, nil
}

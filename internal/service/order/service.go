// Package order exposes read access to materialized orders and guards
// fulfillment transitions.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vendorhub/internal/domain"
	orderrepo "vendorhub/internal/repository/order"

	"go.uber.org/zap"
)

type repo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	GetByProviderSessionID(ctx context.Context, providerSessionID string) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	ListByShop(ctx context.Context, shopID string) ([]domain.Order, error)
	UpdateFulfillment(ctx context.Context, in orderrepo.FulfillmentUpdate) (*domain.Order, error)
	SetPaymentStatus(ctx context.Context, providerSessionID string, status domain.OrderPaymentStatus) (*domain.Order, error)
}

type Service struct {
	orders repo
	logger *zap.Logger
}

func New(orders repo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orders: orders, logger: logger}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.orders.GetByNumber(ctx, orderNumber)
}

// Confirm looks an order up by the session reference the buyer lands back
// with. The reference may be either the provider's checkout session id or
// the internal session id; both resolve to the same order.
func (s *Service) Confirm(ctx context.Context, sessionRef string) (*domain.Order, error) {
	sessionRef = strings.TrimSpace(sessionRef)
	if sessionRef == "" {
		return nil, fmt.Errorf("%w: session_id required", domain.ErrInvalidInput)
	}
	order, err := s.orders.GetByProviderSessionID(ctx, sessionRef)
	if errors.Is(err, domain.ErrNotFound) {
		return s.orders.GetBySessionID(ctx, sessionRef)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) ListByShop(ctx context.Context, shopID string) ([]domain.Order, error) {
	return s.orders.ListByShop(ctx, shopID)
}

type FulfillmentInput struct {
	Status            domain.FulfillmentStatus
	TrackingNumber    string
	Carrier           string
	EstimatedDelivery *time.Time
}

// UpdateFulfillment advances an order along the fulfillment chain. Illegal
// transitions fail with ErrInvalidState before anything is written; a
// concurrent transition that races past us surfaces as ErrConflict.
func (s *Service) UpdateFulfillment(ctx context.Context, orderID string, in FulfillmentInput) (*domain.Order, error) {
	switch in.Status {
	case domain.FulfillmentFulfilled, domain.FulfillmentShipped,
		domain.FulfillmentDelivered, domain.FulfillmentCancelled:
	default:
		return nil, fmt.Errorf("%w: unknown fulfillment status %q", domain.ErrInvalidInput, in.Status)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.FulfillmentStatus.CanTransition(in.Status) {
		return nil, fmt.Errorf("%w: cannot move order from %q to %q",
			domain.ErrInvalidState, order.FulfillmentStatus, in.Status)
	}

	updated, err := s.orders.UpdateFulfillment(ctx, orderrepo.FulfillmentUpdate{
		OrderID:           orderID,
		FromStatus:        order.FulfillmentStatus,
		ToStatus:          in.Status,
		TrackingNumber:    in.TrackingNumber,
		Carrier:           in.Carrier,
		EstimatedDelivery: in.EstimatedDelivery,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("order: fulfillment updated",
		zap.String("order_number", updated.OrderNumber),
		zap.String("from", string(order.FulfillmentStatus)),
		zap.String("to", string(in.Status)))
	return updated, nil
}

// MarkRefunded records a provider-side refund against the order.
func (s *Service) MarkRefunded(ctx context.Context, providerSessionID string) (*domain.Order, error) {
	order, err := s.orders.SetPaymentStatus(ctx, providerSessionID, domain.OrderPaymentRefunded)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order: refunded", zap.String("order_number", order.OrderNumber))
	return order, nil
}

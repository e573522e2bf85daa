// Package checkout drives a session through the information, shipping and
// payment steps. The persisted current_step is the only source of truth:
// every transition validates against it and applies as a compare-and-set,
// so concurrent submissions and replayed webhooks cannot skip steps or
// materialize an order twice.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vendorhub/internal/domain"
	"vendorhub/internal/notification"
	"vendorhub/internal/payment"
	checkoutrepo "vendorhub/internal/repository/checkout"
	"vendorhub/internal/service/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sessionRepo interface {
	Create(ctx context.Context, in checkoutrepo.CreateSessionInput) (*domain.CheckoutSession, error)
	GetByID(ctx context.Context, id string) (*domain.CheckoutSession, error)
	GetByProviderSessionID(ctx context.Context, providerSessionID string) (*domain.CheckoutSession, error)
	UpdateInformation(ctx context.Context, in checkoutrepo.UpdateInformationInput) (*domain.CheckoutSession, error)
	UpdateShipping(ctx context.Context, in checkoutrepo.UpdateShippingInput) (*domain.CheckoutSession, error)
	SetPayment(ctx context.Context, in checkoutrepo.SetPaymentInput) (*domain.CheckoutSession, error)
	FinalizePayment(ctx context.Context, in checkoutrepo.FinalizePaymentInput) (*domain.Order, bool, error)
	MarkPaymentFailed(ctx context.Context, providerSessionID string) (*domain.CheckoutSession, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type shopRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Shop, error)
}

type rateResolver interface {
	RateForSelection(ctx context.Context, shopID, country, rateID string) (*domain.ShippingRate, error)
}

// Config carries the platform-level knobs the checkout flow needs.
type Config struct {
	// PlatformFeePercent applies when a shop has no fee of its own.
	PlatformFeePercent float64
	SessionTTL         time.Duration
	// BaseURL is the frontend origin the provider redirects back to.
	BaseURL string
}

type Service struct {
	sessions sessionRepo
	products productRepo
	shops    shopRepo
	rates    rateResolver
	provider payment.Provider
	notifier notification.Sender
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

func New(
	sessions sessionRepo,
	products productRepo,
	shops shopRepo,
	rates rateResolver,
	provider payment.Provider,
	notifier notification.Sender,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &Service{
		sessions: sessions,
		products: products,
		shops:    shops,
		rates:    rates,
		provider: provider,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

type CreateInput struct {
	ProductID    string
	BillingCycle domain.BillingCycle
	Quantity     int
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.CheckoutSession, error) {
	cycle := in.BillingCycle
	if cycle == "" {
		cycle = domain.BillingOneTime
	}
	if !cycle.Valid() {
		return nil, fmt.Errorf("%w: unknown billing cycle %q", domain.ErrInvalidInput, cycle)
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("%w: product is not available", domain.ErrNotFound)
	}

	feePercent, err := s.feePercentFor(ctx, product.ShopID)
	if err != nil {
		return nil, err
	}
	totals, err := pricing.ComputeForProduct(*product, in.Quantity, cycle, feePercent, 0)
	if err != nil {
		return nil, err
	}

	return s.sessions.Create(ctx, checkoutrepo.CreateSessionInput{
		ShopID:           product.ShopID,
		ProductID:        product.ID,
		Quantity:         in.Quantity,
		BillingCycle:     cycle,
		SubtotalCents:    totals.SubtotalCents,
		PlatformFeeCents: totals.PlatformFeeCents,
		TotalCents:       totals.TotalCents,
		Currency:         product.Currency,
		ExpiresAt:        s.now().Add(s.cfg.SessionTTL),
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, fmt.Errorf("%w: session expired", domain.ErrNotFound)
	}
	return session, nil
}

type InformationInput struct {
	Email   string
	Name    string
	Phone   string
	Address *domain.Address
	Note    string
}

// SubmitInformation captures buyer contact and shipping details and
// advances the session to the shipping step, or straight to payment when
// the product ships nothing. The skip happens here, server-side, so the
// client can never desync its step display from the session.
func (s *Service) SubmitInformation(ctx context.Context, sessionID string, in InformationInput) (*domain.CheckoutSession, error) {
	session, err := s.mutableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CurrentStep != domain.StepInformation {
		return nil, fmt.Errorf("%w: information already submitted (step %d)", domain.ErrInvalidState, session.CurrentStep)
	}

	if strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: email and name required", domain.ErrInvalidInput)
	}

	product, err := s.products.GetByID(ctx, session.ProductID)
	if err != nil {
		return nil, err
	}

	nextStep := domain.StepShipping
	if !product.RequiresShipping {
		nextStep = domain.StepPayment
	}

	var address domain.Address
	if product.RequiresShipping {
		if in.Address == nil || !in.Address.Complete() {
			return nil, fmt.Errorf("%w: complete shipping address required", domain.ErrInvalidInput)
		}
		address = *in.Address
	} else if in.Address != nil {
		address = *in.Address
	}

	feePercent, err := s.feePercentFor(ctx, session.ShopID)
	if err != nil {
		return nil, err
	}
	// Shipping resets to zero: selecting a rate is the next step.
	totals, err := pricing.ComputeForProduct(*product, session.Quantity, session.BillingCycle, feePercent, 0)
	if err != nil {
		return nil, err
	}

	return s.sessions.UpdateInformation(ctx, checkoutrepo.UpdateInformationInput{
		SessionID: sessionID,
		FromStep:  domain.StepInformation,
		ToStep:    nextStep,
		Email:     strings.TrimSpace(in.Email),
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   address,
		Note:      in.Note,
		Totals:    stepTotals(totals),
	})
}

// SelectShipping validates the chosen rate against the destination,
// recomputes totals and moves the session to the payment step. Re-selecting
// a different rate while already at the payment step is allowed.
func (s *Service) SelectShipping(ctx context.Context, sessionID, rateID string) (*domain.CheckoutSession, error) {
	session, err := s.mutableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CurrentStep < domain.StepShipping {
		return nil, fmt.Errorf("%w: information step not completed", domain.ErrInvalidState)
	}
	if session.CurrentStep > domain.StepPayment {
		return nil, fmt.Errorf("%w: checkout already completed", domain.ErrInvalidState)
	}

	product, err := s.products.GetByID(ctx, session.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.RequiresShipping {
		return nil, fmt.Errorf("%w: product does not ship", domain.ErrInvalidState)
	}
	if session.ShippingAddress == nil {
		return nil, fmt.Errorf("%w: no shipping address on session", domain.ErrInvalidState)
	}

	rate, err := s.rates.RateForSelection(ctx, session.ShopID, session.ShippingAddress.Country, rateID)
	if err != nil {
		return nil, err
	}

	feePercent, err := s.feePercentFor(ctx, session.ShopID)
	if err != nil {
		return nil, err
	}
	totals, err := pricing.ComputeForProduct(*product, session.Quantity, session.BillingCycle, feePercent, rate.PriceCents)
	if err != nil {
		return nil, err
	}

	return s.sessions.UpdateShipping(ctx, checkoutrepo.UpdateShippingInput{
		SessionID: sessionID,
		FromStep:  session.CurrentStep,
		ToStep:    domain.StepPayment,
		RateID:    rate.ID,
		Totals:    stepTotals(totals),
	})
}

type PaymentHandoff struct {
	Session     *domain.CheckoutSession
	RedirectURL string
}

// CreatePayment hands the session off to the payment provider and returns
// the redirect URL. The session stays at the payment step until the
// provider confirms via webhook.
func (s *Service) CreatePayment(ctx context.Context, sessionID, method string) (*PaymentHandoff, error) {
	if strings.TrimSpace(method) == "" {
		return nil, fmt.Errorf("%w: payment method required", domain.ErrInvalidInput)
	}
	session, err := s.mutableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CurrentStep != domain.StepPayment {
		return nil, fmt.Errorf("%w: session is at step %d, payment requires step %d",
			domain.ErrInvalidState, session.CurrentStep, domain.StepPayment)
	}

	product, err := s.products.GetByID(ctx, session.ProductID)
	if err != nil {
		return nil, err
	}
	if product.RequiresShipping && session.SelectedShippingRateID == nil {
		return nil, fmt.Errorf("%w: shipping rate not selected", domain.ErrInvalidState)
	}

	checkout, err := s.provider.CreateCheckout(ctx, payment.CheckoutRequest{
		Session:    *session,
		Product:    *product,
		SuccessURL: fmt.Sprintf("%s/checkout/orders/confirm?session_id=%s", s.cfg.BaseURL, session.ID),
		CancelURL:  fmt.Sprintf("%s/checkout/%s", s.cfg.BaseURL, session.ID),
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.sessions.SetPayment(ctx, checkoutrepo.SetPaymentInput{
		SessionID:         sessionID,
		FromStep:          domain.StepPayment,
		PaymentMethod:     method,
		ProviderSessionID: checkout.ProviderSessionID,
	})
	if err != nil {
		return nil, err
	}
	return &PaymentHandoff{Session: updated, RedirectURL: checkout.RedirectURL}, nil
}

// HandleEvent applies a verified provider event. Confirmations are
// idempotent per provider session: redelivery of a paid confirmation is a
// no-op and never creates a second order.
func (s *Service) HandleEvent(ctx context.Context, ev payment.WebhookEvent) (*domain.Order, error) {
	switch ev.Kind {
	case payment.EventPaymentSucceeded:
		return s.confirmPaid(ctx, ev)
	case payment.EventPaymentFailed:
		return nil, s.markFailed(ctx, ev)
	case payment.EventSessionExpired:
		// The session keeps its step and pending status; the buyer can
		// start payment again.
		s.logger.Info("checkout: provider session expired",
			zap.String("provider_session_id", ev.ProviderSessionID))
		return nil, nil
	default:
		s.logger.Debug("checkout: ignoring provider event", zap.String("type", ev.ProviderEventType))
		return nil, nil
	}
}

func (s *Service) confirmPaid(ctx context.Context, ev payment.WebhookEvent) (*domain.Order, error) {
	session, err := s.resolveSession(ctx, ev)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, session.ProductID)
	if err != nil {
		return nil, err
	}
	shop, err := s.shops.GetByID(ctx, session.ShopID)
	if err != nil {
		return nil, err
	}
	feePercent := shop.PlatformFeePercent
	if feePercent <= 0 {
		feePercent = s.cfg.PlatformFeePercent
	}

	in := checkoutrepo.FinalizePaymentInput{
		SessionID:      session.ID,
		OrderNumber:    newOrderNumber(),
		PlatformFeePct: feePercent,
	}
	if session.BillingCycle.Recurring() {
		in.Subscription = &checkoutrepo.SubscriptionSeed{
			AmountCents:      session.SubtotalCents,
			CurrentPeriodEnd: s.now().Add(session.BillingCycle.PeriodLength()),
		}
	}

	order, created, err := s.sessions.FinalizePayment(ctx, in)
	if err != nil {
		return nil, err
	}
	if !created {
		return order, nil
	}

	s.logger.Info("checkout: order materialized",
		zap.String("order_number", order.OrderNumber),
		zap.String("session_id", session.ID),
		zap.Int64("total_cents", order.TotalCents))

	// Email failures are logged and swallowed; the order stands either way.
	if err := s.notifier.SendOrderConfirmation(ctx, notification.OrderConfirmationData{
		Order:       *order,
		ShopName:    shop.Name,
		ProductName: product.Name,
	}); err != nil {
		s.logger.Warn("checkout: order confirmation email failed",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
	}
	if session.BillingCycle.Recurring() {
		if err := s.notifier.SendSubscriptionWelcome(ctx, notification.SubscriptionWelcomeData{
			Email:        order.Email,
			Name:         order.Name,
			ShopName:     shop.Name,
			ProductName:  product.Name,
			BillingCycle: session.BillingCycle,
			AmountCents:  session.SubtotalCents,
			Currency:     session.Currency,
		}); err != nil {
			s.logger.Warn("checkout: subscription welcome email failed",
				zap.String("order_number", order.OrderNumber), zap.Error(err))
		}
	}
	return order, nil
}

func (s *Service) markFailed(ctx context.Context, ev payment.WebhookEvent) error {
	providerSessionID := ev.ProviderSessionID
	if providerSessionID == "" {
		session, err := s.resolveSession(ctx, ev)
		if err != nil {
			return err
		}
		providerSessionID = session.ProviderSessionID
	}
	session, err := s.sessions.MarkPaymentFailed(ctx, providerSessionID)
	if err != nil {
		return err
	}
	s.logger.Info("checkout: payment failed",
		zap.String("session_id", session.ID),
		zap.Int("current_step", session.CurrentStep))
	return nil
}

func (s *Service) resolveSession(ctx context.Context, ev payment.WebhookEvent) (*domain.CheckoutSession, error) {
	if ev.SessionID != "" {
		return s.sessions.GetByID(ctx, ev.SessionID)
	}
	if ev.ProviderSessionID != "" {
		return s.sessions.GetByProviderSessionID(ctx, ev.ProviderSessionID)
	}
	return nil, fmt.Errorf("%w: event carries no session reference", domain.ErrInvalidInput)
}

// ReapExpired deletes unpaid sessions past their deadline.
func (s *Service) ReapExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

// mutableSession loads a session that may still be modified.
func (s *Service) mutableSession(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, fmt.Errorf("%w: session expired", domain.ErrNotFound)
	}
	if session.PaymentStatus == domain.PaymentPaid {
		return nil, fmt.Errorf("%w: session already paid", domain.ErrInvalidState)
	}
	return session, nil
}

func (s *Service) feePercentFor(ctx context.Context, shopID string) (float64, error) {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return 0, err
	}
	if shop.PlatformFeePercent > 0 {
		return shop.PlatformFeePercent, nil
	}
	return s.cfg.PlatformFeePercent, nil
}

func stepTotals(t pricing.Totals) checkoutrepo.StepTotals {
	return checkoutrepo.StepTotals{
		SubtotalCents:     t.SubtotalCents,
		PlatformFeeCents:  t.PlatformFeeCents,
		ShippingCostCents: t.ShippingCostCents,
		TotalCents:        t.TotalCents,
	}
}

func newOrderNumber() string {
	return "VH-" + strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
}

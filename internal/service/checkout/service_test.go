package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"vendorhub/internal/domain"
	"vendorhub/internal/notification"
	"vendorhub/internal/payment"
	checkoutrepo "vendorhub/internal/repository/checkout"

	"go.uber.org/zap/zaptest"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type stubSessions struct {
	byID         map[string]*domain.CheckoutSession
	orders       map[string]*domain.Order
	nextID       int
	finalizeErr  error
	markedFailed []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{
		byID:   map[string]*domain.CheckoutSession{},
		orders: map[string]*domain.Order{},
	}
}

func (s *stubSessions) Create(_ context.Context, in checkoutrepo.CreateSessionInput) (*domain.CheckoutSession, error) {
	s.nextID++
	sess := &domain.CheckoutSession{
		ID:               fmt.Sprintf("sess-%d", s.nextID),
		ShopID:           in.ShopID,
		ProductID:        in.ProductID,
		Quantity:         in.Quantity,
		BillingCycle:     in.BillingCycle,
		CurrentStep:      domain.StepInformation,
		SubtotalCents:    in.SubtotalCents,
		PlatformFeeCents: in.PlatformFeeCents,
		TotalCents:       in.TotalCents,
		Currency:         in.Currency,
		PaymentStatus:    domain.PaymentPending,
		ExpiresAt:        in.ExpiresAt,
	}
	s.byID[sess.ID] = sess
	return copySession(sess), nil
}

func (s *stubSessions) GetByID(_ context.Context, id string) (*domain.CheckoutSession, error) {
	sess, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copySession(sess), nil
}

func (s *stubSessions) GetByProviderSessionID(_ context.Context, psid string) (*domain.CheckoutSession, error) {
	for _, sess := range s.byID {
		if sess.ProviderSessionID == psid {
			return copySession(sess), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubSessions) UpdateInformation(_ context.Context, in checkoutrepo.UpdateInformationInput) (*domain.CheckoutSession, error) {
	sess, ok := s.byID[in.SessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if sess.CurrentStep != in.FromStep {
		return nil, domain.ErrConflict
	}
	sess.CurrentStep = in.ToStep
	sess.Email, sess.Name, sess.Phone = in.Email, in.Name, in.Phone
	addr := in.Address
	sess.ShippingAddress = &addr
	sess.CustomerNote = in.Note
	applyTotals(sess, in.Totals)
	sess.SelectedShippingRateID = nil
	return copySession(sess), nil
}

func (s *stubSessions) UpdateShipping(_ context.Context, in checkoutrepo.UpdateShippingInput) (*domain.CheckoutSession, error) {
	sess, ok := s.byID[in.SessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if sess.CurrentStep != in.FromStep {
		return nil, domain.ErrConflict
	}
	sess.CurrentStep = in.ToStep
	rateID := in.RateID
	sess.SelectedShippingRateID = &rateID
	applyTotals(sess, in.Totals)
	return copySession(sess), nil
}

func (s *stubSessions) SetPayment(_ context.Context, in checkoutrepo.SetPaymentInput) (*domain.CheckoutSession, error) {
	sess, ok := s.byID[in.SessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if sess.CurrentStep != in.FromStep {
		return nil, domain.ErrConflict
	}
	sess.PaymentMethod = in.PaymentMethod
	sess.ProviderSessionID = in.ProviderSessionID
	return copySession(sess), nil
}

func (s *stubSessions) FinalizePayment(_ context.Context, in checkoutrepo.FinalizePaymentInput) (*domain.Order, bool, error) {
	if s.finalizeErr != nil {
		return nil, false, s.finalizeErr
	}
	sess, ok := s.byID[in.SessionID]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	if existing, ok := s.orders[in.SessionID]; ok {
		return existing, false, nil
	}
	sess.PaymentStatus = domain.PaymentPaid
	sess.CurrentStep = domain.StepConfirmation
	order := &domain.Order{
		ID:                "order-" + in.SessionID,
		OrderNumber:       in.OrderNumber,
		ShopID:            sess.ShopID,
		ProductID:         sess.ProductID,
		CheckoutSessionID: sess.ID,
		Email:             sess.Email,
		Name:              sess.Name,
		Quantity:          sess.Quantity,
		BillingCycle:      sess.BillingCycle,
		TotalCents:        sess.TotalCents,
		Currency:          sess.Currency,
		PlatformFeePct:    in.PlatformFeePct,
		ProviderSessionID: sess.ProviderSessionID,
		PaymentStatus:     domain.OrderPaymentPaid,
		FulfillmentStatus: domain.FulfillmentUnfulfilled,
	}
	s.orders[in.SessionID] = order
	return order, true, nil
}

func (s *stubSessions) MarkPaymentFailed(_ context.Context, psid string) (*domain.CheckoutSession, error) {
	for _, sess := range s.byID {
		if sess.ProviderSessionID == psid {
			sess.PaymentStatus = domain.PaymentFailed
			s.markedFailed = append(s.markedFailed, sess.ID)
			return copySession(sess), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, sess := range s.byID {
		if sess.Expired(now) {
			delete(s.byID, id)
			n++
		}
	}
	return n, nil
}

func copySession(s *domain.CheckoutSession) *domain.CheckoutSession {
	c := *s
	return &c
}

func applyTotals(s *domain.CheckoutSession, t checkoutrepo.StepTotals) {
	s.SubtotalCents = t.SubtotalCents
	s.PlatformFeeCents = t.PlatformFeeCents
	s.ShippingCostCents = t.ShippingCostCents
	s.TotalCents = t.TotalCents
}

type stubProducts struct{ products map[string]*domain.Product }

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *p
	return &c, nil
}

type stubShops struct{ shops map[string]*domain.Shop }

func (s *stubShops) GetByID(_ context.Context, id string) (*domain.Shop, error) {
	sh, ok := s.shops[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *sh
	return &c, nil
}

type stubRates struct{ rates map[string]*domain.ShippingRate }

func (s *stubRates) RateForSelection(_ context.Context, _, _, rateID string) (*domain.ShippingRate, error) {
	r, ok := s.rates[rateID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *r
	return &c, nil
}

type stubPaymentProvider struct {
	calls int
	err   error
}

func (s *stubPaymentProvider) CreateCheckout(_ context.Context, req payment.CheckoutRequest) (payment.Checkout, error) {
	s.calls++
	if s.err != nil {
		return payment.Checkout{}, s.err
	}
	return payment.Checkout{
		RedirectURL:       "https://pay.example.com/" + req.Session.ID,
		ProviderSessionID: "cs_" + req.Session.ID,
	}, nil
}

func (s *stubPaymentProvider) VerifyWebhook(_ []byte, _ string) (payment.WebhookEvent, error) {
	return payment.WebhookEvent{}, errors.New("not used")
}

type recordingNotifier struct {
	orderConfirmations   []notification.OrderConfirmationData
	subscriptionWelcomes []notification.SubscriptionWelcomeData
	err                  error
}

func (r *recordingNotifier) SendOrderConfirmation(_ context.Context, d notification.OrderConfirmationData) error {
	r.orderConfirmations = append(r.orderConfirmations, d)
	return r.err
}

func (r *recordingNotifier) SendSubscriptionWelcome(_ context.Context, d notification.SubscriptionWelcomeData) error {
	r.subscriptionWelcomes = append(r.subscriptionWelcomes, d)
	return r.err
}

type fixture struct {
	svc      *Service
	sessions *stubSessions
	provider *stubPaymentProvider
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	monthly := int64(1500)
	sessions := newStubSessions()
	provider := &stubPaymentProvider{}
	notifier := &recordingNotifier{}
	svc := New(
		sessions,
		&stubProducts{products: map[string]*domain.Product{
			"prod-tee": {
				ID: "prod-tee", ShopID: "shop-1", Name: "Tour Tee",
				PriceCents: 2000, Currency: "usd",
				RequiresShipping: true, Active: true,
			},
			"prod-ebook": {
				ID: "prod-ebook", ShopID: "shop-1", Name: "Field Guide",
				PriceCents: 900, Currency: "usd",
				RequiresShipping: false, Active: true,
			},
			"prod-club": {
				ID: "prod-club", ShopID: "shop-1", Name: "Coffee Club",
				PriceCents: 1500, MonthlyPriceCents: &monthly, Currency: "usd",
				RequiresShipping: true, Active: true,
			},
			"prod-retired": {
				ID: "prod-retired", ShopID: "shop-1", Name: "Old Tee",
				PriceCents: 1000, Currency: "usd",
				RequiresShipping: true, Active: false,
			},
		}},
		&stubShops{shops: map[string]*domain.Shop{
			"shop-1": {ID: "shop-1", Name: "Trailhead Goods", PlatformFeePercent: 0.15},
		}},
		&stubRates{rates: map[string]*domain.ShippingRate{
			"rate-std": {ID: "rate-std", Name: "Standard", PriceCents: 999},
		}},
		provider,
		notifier,
		Config{PlatformFeePercent: 0.10, SessionTTL: 24 * time.Hour, BaseURL: "https://shop.example.com"},
		zaptest.NewLogger(t),
	)
	svc.now = func() time.Time { return testNow }
	return &fixture{svc: svc, sessions: sessions, provider: provider, notifier: notifier}
}

func (f *fixture) createSession(t *testing.T, productID string, qty int, cycle domain.BillingCycle) *domain.CheckoutSession {
	t.Helper()
	sess, err := f.svc.Create(context.Background(), CreateInput{ProductID: productID, Quantity: qty, BillingCycle: cycle})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return sess
}

func (f *fixture) submitInformation(t *testing.T, sessionID string) *domain.CheckoutSession {
	t.Helper()
	sess, err := f.svc.SubmitInformation(context.Background(), sessionID, InformationInput{
		Email: "ada@example.com",
		Name:  "Ada Lovelace",
		Address: &domain.Address{
			Line1: "1 Main St", City: "Portland", State: "OR",
			Country: "US", PostalCode: "97201",
		},
	})
	if err != nil {
		t.Fatalf("SubmitInformation: %v", err)
	}
	return sess
}

func TestCreateComputesTotalsAndExpiry(t *testing.T) {
	f := newFixture(t)

	sess := f.createSession(t, "prod-tee", 2, domain.BillingOneTime)

	if sess.CurrentStep != domain.StepInformation {
		t.Fatalf("current step = %d, want %d", sess.CurrentStep, domain.StepInformation)
	}
	if sess.SubtotalCents != 4000 || sess.PlatformFeeCents != 600 || sess.TotalCents != 4600 {
		t.Fatalf("totals = %d/%d/%d, want 4000/600/4600",
			sess.SubtotalCents, sess.PlatformFeeCents, sess.TotalCents)
	}
	wantExpiry := testNow.Add(24 * time.Hour)
	if !sess.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expires at %v, want %v", sess.ExpiresAt, wantExpiry)
	}
}

func TestCreateRejectsInactiveProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{ProductID: "prod-retired", Quantity: 1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateRejectsUnknownBillingCycle(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{
		ProductID: "prod-tee", Quantity: 1, BillingCycle: "biweekly",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGetRejectsExpiredSession(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "prod-tee", 1, "")

	f.svc.now = func() time.Time { return testNow.Add(25 * time.Hour) }

	if _, err := f.svc.Get(context.Background(), sess.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSubmitInformationAdvancesToShipping(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "prod-tee", 1, "")

	updated := f.submitInformation(t, sess.ID)

	if updated.CurrentStep != domain.StepShipping {
		t.Fatalf("current step = %d, want %d", updated.CurrentStep, domain.StepShipping)
	}
	if updated.Email != "ada@example.com" || updated.ShippingAddress == nil {
		t.Fatalf("contact info not recorded: %+v", updated)
	}
}

func TestSubmitInformationSkipsShippingForDigitalProduct(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "prod-ebook", 1, "")

	updated, err := f.svc.SubmitInformation(context.Background(), sess.ID, InformationInput{
		Email: "ada@example.com", Name: "Ada Lovelace",
	})
	if err != nil {
		t.Fatalf("SubmitInformation: %v", err)
	}
	if updated.CurrentStep != domain.StepPayment {
		t.Fatalf("current step = %d, want %d", updated.CurrentStep, domain.StepPayment)
	}
	if updated.ShippingCostCents != 0 {
		t.Fatalf("shipping cost = %d, want 0", updated.ShippingCostCents)
	}
}

func TestSubmitInformationRequiresCompleteAddress(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "prod-tee", 1, "")

	_, err := f.svc.SubmitInformation(context.Background(), sess.ID, InformationInput{
		Email:   "ada@example.com",
		Name:    "Ada Lovelace",
		Address: &domain.Address{Line1: "1 Main St", Country: "US"},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSubmitInformationRejectsWrongStep(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "prod-tee", 1, "")
	f.submitInformation(t, sess.ID)

	_, err := f.svc.SubmitInformation(context.Background(), sess.ID, InformationInput{
		Email: "ada@example.com", Name: "Ada Lovelace",
		Address: &domain.Address{Line1: "1 Main St", City: "Portland", State: "OR", Country: "US", PostalCode: "97201"},
	})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestSelectShippingRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "prod-tee", 2, "")
	f.submitInformation(t, sess.ID)

	updated, err := f.svc.SelectShipping(context.Background(), sess.ID, "rate-std")
	if err != nil {
		t.Fatalf("SelectShipping: %v", err)
	}
	if updated.CurrentStep != domain.StepPayment {
		t.Fatalf("current step = %d, want %d", updated.CurrentStep, domain.StepPayment)
	}
	if updated.ShippingCostCents != 999 {
		t.Fatalf("shipping cost = %d, want 999", updated.ShippingCostCents)
	}
	// 4000 subtotal + 600 fee + 999 shipping.
	if updated.TotalCents != 5599 {
		t.Fatalf("total = %d, want 5599", updated.TotalCents)
	}
	if updated.SelectedShippingRateID == nil || *updated.SelectedShippingRateID != "rate-std" {
		t.Fatalf("selected rate = %v, want rate-std", updated.SelectedShippingRateID)
	}
}

func TestSelectShippingRejectsDigitalProduct(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "prod-ebook", 1, "")
	if _, err := f.svc.SubmitInformation(context.Background(), sess.ID, InformationInput{
		Email: "ada@example.com", Name: "Ada Lovelace",
	}); err != nil {
		t.Fatalf("SubmitInformation: %v", err)
	}

	_, err := f.svc.SelectShipping(context.Background(), sess.ID, "rate-std")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestSelectShippingBeforeInformation(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "prod-tee", 1, "")

	_, err := f.svc.SelectShipping(context.Background(), sess.ID, "rate-std")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestSelectShippingUnknownRate(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "prod-tee", 1, "")
	f.submitInformation(t, sess.ID)

	_, err := f.svc.SelectShipping(context.Background(), sess.ID, "rate-bogus")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreatePaymentReturnsRedirect(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "prod-tee", 1, "")
	f.submitInformation(t, sess.ID)
	if _, err := f.svc.SelectShipping(context.Background(), sess.ID, "rate-std"); err != nil {
		t.Fatalf("SelectShipping: %v", err)
	}

	handoff, err := f.svc.CreatePayment(context.Background(), sess.ID, "card")
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if handoff.RedirectURL != "https://pay.example.com/"+sess.ID {
		t.Fatalf("redirect = %q", handoff.RedirectURL)
	}
	if handoff.Session.ProviderSessionID != "cs_"+sess.ID {
		t.Fatalf("provider session id = %q", handoff.Session.ProviderSessionID)
	}
	if handoff.Session.CurrentStep != domain.StepPayment {
		t.Fatalf("current step = %d, want %d", handoff.Session.CurrentStep, domain.StepPayment)
	}
}

func TestCreatePaymentRejectsWrongStep(t *testing.T) {
	f := newFixture(t)
	sess := f.createSession(t, "prod-tee", 1, "")

	_, err := f.svc.CreatePayment(context.Background(), sess.ID, "card")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
	if f.provider.calls != 0 {
		t.Fatalf("provider called %d times before step check", f.provider.calls)
	}
}

func TestCreatePaymentPropagatesProviderError(t *testing.T) {
	f := newFixture(t)
	f.provider.err = domain.ErrProviderUnavailable
	sess := f.createSession(t, "prod-ebook", 1, "")
	if _, err := f.svc.SubmitInformation(context.Background(), sess.ID, InformationInput{
		Email: "ada@example.com", Name: "Ada Lovelace",
	}); err != nil {
		t.Fatalf("SubmitInformation: %v", err)
	}

	_, err := f.svc.CreatePayment(context.Background(), sess.ID, "card")
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func payThrough(t *testing.T, f *fixture, productID string, cycle domain.BillingCycle) *domain.CheckoutSession {
	t.Helper()
	sess := f.createSession(t, productID, 1, cycle)
	f.submitInformation(t, sess.ID)
	if _, err := f.svc.SelectShipping(context.Background(), sess.ID, "rate-std"); err != nil {
		t.Fatalf("SelectShipping: %v", err)
	}
	handoff, err := f.svc.CreatePayment(context.Background(), sess.ID, "card")
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	return handoff.Session
}

func TestHandleEventPaymentSucceededMaterializesOrder(t *testing.T) {
	f := newFixture(t)
	sess := payThrough(t, f, "prod-tee", domain.BillingOneTime)

	order, err := f.svc.HandleEvent(context.Background(), payment.WebhookEvent{
		Kind:              payment.EventPaymentSucceeded,
		ProviderSessionID: sess.ProviderSessionID,
	})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if order == nil || order.OrderNumber == "" {
		t.Fatalf("order = %+v, want numbered order", order)
	}
	if order.PlatformFeePct != 0.15 {
		t.Fatalf("fee pct = %v, want shop's 0.15", order.PlatformFeePct)
	}
	if len(f.notifier.orderConfirmations) != 1 {
		t.Fatalf("order confirmations = %d, want 1", len(f.notifier.orderConfirmations))
	}
	if len(f.notifier.subscriptionWelcomes) != 0 {
		t.Fatalf("unexpected subscription welcome for one-time purchase")
	}
}

func TestHandleEventPaymentSucceededIsIdempotent(t *testing.T) {
	f := newFixture(t)
	sess := payThrough(t, f, "prod-tee", domain.BillingOneTime)
	ev := payment.WebhookEvent{
		Kind:              payment.EventPaymentSucceeded,
		ProviderSessionID: sess.ProviderSessionID,
	}

	first, err := f.svc.HandleEvent(context.Background(), ev)
	if err != nil {
		t.Fatalf("first HandleEvent: %v", err)
	}
	second, err := f.svc.HandleEvent(context.Background(), ev)
	if err != nil {
		t.Fatalf("second HandleEvent: %v", err)
	}
	if first.ID != second.ID || first.OrderNumber != second.OrderNumber {
		t.Fatalf("redelivery produced a different order: %q vs %q", first.OrderNumber, second.OrderNumber)
	}
	if len(f.notifier.orderConfirmations) != 1 {
		t.Fatalf("order confirmations = %d, want exactly 1", len(f.notifier.orderConfirmations))
	}
}

func TestHandleEventRecurringCheckoutSendsWelcome(t *testing.T) {
	f := newFixture(t)
	sess := payThrough(t, f, "prod-club", domain.BillingMonthly)

	if _, err := f.svc.HandleEvent(context.Background(), payment.WebhookEvent{
		Kind:      payment.EventPaymentSucceeded,
		SessionID: sess.ID,
	}); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(f.notifier.subscriptionWelcomes) != 1 {
		t.Fatalf("subscription welcomes = %d, want 1", len(f.notifier.subscriptionWelcomes))
	}
	welcome := f.notifier.subscriptionWelcomes[0]
	if welcome.BillingCycle != domain.BillingMonthly || welcome.AmountCents != 1500 {
		t.Fatalf("welcome = %+v", welcome)
	}
}

func TestHandleEventEmailFailureDoesNotFailConfirmation(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")
	sess := payThrough(t, f, "prod-tee", domain.BillingOneTime)

	order, err := f.svc.HandleEvent(context.Background(), payment.WebhookEvent{
		Kind:              payment.EventPaymentSucceeded,
		ProviderSessionID: sess.ProviderSessionID,
	})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if order == nil {
		t.Fatal("order not materialized despite email failure")
	}
}

func TestHandleEventPaymentFailed(t *testing.T) {
	f := newFixture(t)
	sess := payThrough(t, f, "prod-tee", domain.BillingOneTime)

	if _, err := f.svc.HandleEvent(context.Background(), payment.WebhookEvent{
		Kind:              payment.EventPaymentFailed,
		ProviderSessionID: sess.ProviderSessionID,
	}); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	got, err := f.svc.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PaymentStatus != domain.PaymentFailed {
		t.Fatalf("payment status = %q, want failed", got.PaymentStatus)
	}
}

func TestHandleEventSessionExpiredIsNoOp(t *testing.T) {
	f := newFixture(t)
	sess := payThrough(t, f, "prod-tee", domain.BillingOneTime)

	if _, err := f.svc.HandleEvent(context.Background(), payment.WebhookEvent{
		Kind:              payment.EventSessionExpired,
		ProviderSessionID: sess.ProviderSessionID,
	}); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	got, err := f.svc.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PaymentStatus != domain.PaymentPending || got.CurrentStep != domain.StepPayment {
		t.Fatalf("session mutated by expiry event: status=%q step=%d", got.PaymentStatus, got.CurrentStep)
	}
}

func TestReapExpiredDeletesOnlyStaleSessions(t *testing.T) {
	f := newFixture(t)
	stale := f.createSession(t, "prod-tee", 1, "")
	paid := payThrough(t, f, "prod-tee", domain.BillingOneTime)
	if _, err := f.svc.HandleEvent(context.Background(), payment.WebhookEvent{
		Kind:              payment.EventPaymentSucceeded,
		ProviderSessionID: paid.ProviderSessionID,
	}); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	f.svc.now = func() time.Time { return testNow.Add(48 * time.Hour) }
	deleted, err := f.svc.ReapExpired(context.Background())
	if err != nil {
		t.Fatalf("ReapExpired: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1 (the stale session)", deleted)
	}
	if _, ok := f.sessions.byID[stale.ID]; ok {
		t.Fatal("stale session survived the reap")
	}
}

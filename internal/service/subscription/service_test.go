package subscription

import (
	"context"
	"errors"
	"testing"

	"vendorhub/internal/domain"

	"go.uber.org/zap/zaptest"
)

type stubRepo struct {
	byID map[string]*domain.Subscription
}

func newStubRepo(subs ...*domain.Subscription) *stubRepo {
	r := &stubRepo{byID: map[string]*domain.Subscription{}}
	for _, s := range subs {
		r.byID[s.ID] = s
	}
	return r
}

func (r *stubRepo) GetByID(_ context.Context, id string) (*domain.Subscription, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (r *stubRepo) ListByCustomer(_ context.Context, customerID string) ([]domain.Subscription, error) {
	var out []domain.Subscription
	for _, s := range r.byID {
		if s.CustomerID == customerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubRepo) ListByShop(_ context.Context, shopID string) ([]domain.Subscription, error) {
	var out []domain.Subscription
	for _, s := range r.byID {
		if s.ShopID == shopID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubRepo) UpdateStatus(_ context.Context, id string, from, to domain.SubscriptionStatus) (*domain.Subscription, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.Status != from {
		return nil, domain.ErrConflict
	}
	s.Status = to
	c := *s
	return &c, nil
}

type stubCustomers struct {
	byEmail map[string]*domain.Customer
}

func (r *stubCustomers) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	c, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func newService(t *testing.T, subs ...*domain.Subscription) (*Service, *stubRepo) {
	t.Helper()
	repo := newStubRepo(subs...)
	customers := &stubCustomers{byEmail: map[string]*domain.Customer{
		"ada@example.com": {ID: "cust-1", Email: "ada@example.com"},
	}}
	return New(repo, customers, zaptest.NewLogger(t)), repo
}

func activeSub() *domain.Subscription {
	return &domain.Subscription{
		ID:         "sub-1",
		CustomerID: "cust-1",
		ShopID:     "shop-1",
		Status:     domain.SubscriptionActive,
	}
}

func TestListByEmail(t *testing.T) {
	svc, _ := newService(t, activeSub())

	subs, err := svc.ListByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("ListByEmail: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != "sub-1" {
		t.Fatalf("subs = %+v", subs)
	}
}

func TestListByEmailUnknownCustomer(t *testing.T) {
	svc, _ := newService(t)

	if _, err := svc.ListByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListByEmailRequiresEmail(t *testing.T) {
	svc, _ := newService(t)

	if _, err := svc.ListByEmail(context.Background(), " "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCancelFromAnyNonCanceled(t *testing.T) {
	for _, status := range []domain.SubscriptionStatus{
		domain.SubscriptionActive, domain.SubscriptionPastDue, domain.SubscriptionPaused,
	} {
		t.Run(string(status), func(t *testing.T) {
			sub := activeSub()
			sub.Status = status
			svc, _ := newService(t, sub)

			got, err := svc.Cancel(context.Background(), "sub-1")
			if err != nil {
				t.Fatalf("Cancel: %v", err)
			}
			if got.Status != domain.SubscriptionCanceled {
				t.Fatalf("status = %q, want canceled", got.Status)
			}
		})
	}
}

func TestCancelIsTerminal(t *testing.T) {
	sub := activeSub()
	sub.Status = domain.SubscriptionCanceled
	svc, _ := newService(t, sub)

	if _, err := svc.Cancel(context.Background(), "sub-1"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestPauseRequiresActive(t *testing.T) {
	svc, repo := newService(t, activeSub())
	ctx := context.Background()

	got, err := svc.Pause(ctx, "sub-1")
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if got.Status != domain.SubscriptionPaused {
		t.Fatalf("status = %q, want paused", got.Status)
	}

	// Pausing a paused subscription is rejected.
	if _, err := svc.Pause(ctx, "sub-1"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
	if repo.byID["sub-1"].Status != domain.SubscriptionPaused {
		t.Fatalf("status mutated by rejected pause")
	}
}

func TestResumeRequiresPaused(t *testing.T) {
	sub := activeSub()
	sub.Status = domain.SubscriptionPaused
	svc, _ := newService(t, sub)

	got, err := svc.Resume(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if got.Status != domain.SubscriptionActive {
		t.Fatalf("status = %q, want active", got.Status)
	}
}

func TestResumeRejectsActive(t *testing.T) {
	svc, _ := newService(t, activeSub())

	if _, err := svc.Resume(context.Background(), "sub-1"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestMarkPastDue(t *testing.T) {
	svc, _ := newService(t, activeSub())

	got, err := svc.MarkPastDue(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("MarkPastDue: %v", err)
	}
	if got.Status != domain.SubscriptionPastDue {
		t.Fatalf("status = %q, want past_due", got.Status)
	}
}

func TestGetUnknownSubscription(t *testing.T) {
	svc, _ := newService(t)

	if _, err := svc.Get(context.Background(), "sub-nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

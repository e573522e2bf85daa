package shipping

import (
	"context"
	"errors"
	"testing"

	"vendorhub/internal/domain"
	shippingrepo "vendorhub/internal/repository/shipping"

	"go.uber.org/zap/zaptest"
)

type stubRepo struct {
	ratesByCountry map[string][]domain.ShippingRate
	zones          map[string]*domain.ShippingZone
	listErr        error
}

func (s *stubRepo) CreateZone(_ context.Context, in shippingrepo.CreateZoneInput) (*domain.ShippingZone, error) {
	return &domain.ShippingZone{ID: "z1", ShopID: in.ShopID, Name: in.Name, Countries: in.Countries}, nil
}

func (s *stubRepo) GetZone(_ context.Context, id string) (*domain.ShippingZone, error) {
	if z, ok := s.zones[id]; ok {
		return z, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) ListZonesByShop(_ context.Context, _ string) ([]domain.ShippingZone, error) {
	return nil, nil
}

func (s *stubRepo) UpdateZone(_ context.Context, id string, in shippingrepo.UpdateZoneInput) (*domain.ShippingZone, error) {
	return &domain.ShippingZone{ID: id, Name: in.Name, Countries: in.Countries}, nil
}

func (s *stubRepo) DeleteZone(_ context.Context, _ string) error { return nil }

func (s *stubRepo) CreateRate(_ context.Context, in shippingrepo.CreateRateInput) (*domain.ShippingRate, error) {
	return &domain.ShippingRate{ID: "r1", ZoneID: in.ZoneID, Name: in.Name, PriceCents: in.PriceCents}, nil
}

func (s *stubRepo) GetRate(_ context.Context, _ string) (*domain.ShippingRate, error) {
	return nil, domain.ErrNotFound
}

func (s *stubRepo) ListRatesByZone(_ context.Context, _ string) ([]domain.ShippingRate, error) {
	return nil, nil
}

func (s *stubRepo) ListRatesForCountry(_ context.Context, _, country string) ([]domain.ShippingRate, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.ratesByCountry[country], nil
}

func (s *stubRepo) UpdateRate(_ context.Context, id string, in shippingrepo.UpdateRateInput) (*domain.ShippingRate, error) {
	return &domain.ShippingRate{ID: id, Name: in.Name, PriceCents: in.PriceCents}, nil
}

func (s *stubRepo) DeleteRate(_ context.Context, _ string) error { return nil }

func newService(t *testing.T, repo *stubRepo) *Service {
	t.Helper()
	defaults := DefaultRates("default-standard", "default-express")
	return &Service{repo: repo, defaults: defaults, logger: zaptest.NewLogger(t)}
}

func TestResolve_CheapestFirst(t *testing.T) {
	repo := &stubRepo{ratesByCountry: map[string][]domain.ShippingRate{
		"US": {
			{ID: "express", PriceCents: 1999},
			{ID: "standard", PriceCents: 599},
			{ID: "economy", PriceCents: 299},
		},
	}}
	svc := newService(t, repo)

	rates, err := svc.Resolve(context.Background(), "shop1", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 3 {
		t.Fatalf("expected 3 rates, got %d", len(rates))
	}
	for i := 1; i < len(rates); i++ {
		if rates[i-1].PriceCents > rates[i].PriceCents {
			t.Fatalf("rates not sorted cheapest first: %+v", rates)
		}
	}
}

func TestResolve_FallbackNeverEmpty(t *testing.T) {
	svc := newService(t, &stubRepo{})

	rates, err := svc.Resolve(context.Background(), "shop1", "AQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) == 0 {
		t.Fatal("fallback rates must never be empty")
	}
	if rates[0].ID != "default-standard" {
		t.Fatalf("expected default standard rate first, got %+v", rates[0])
	}
}

func TestResolve_EmptyCountry(t *testing.T) {
	svc := newService(t, &stubRepo{})
	if _, err := svc.Resolve(context.Background(), "shop1", "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRateForSelection(t *testing.T) {
	repo := &stubRepo{ratesByCountry: map[string][]domain.ShippingRate{
		"DE": {{ID: "zone-rate", PriceCents: 499}},
	}}
	svc := newService(t, repo)

	rate, err := svc.RateForSelection(context.Background(), "shop1", "DE", "zone-rate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.PriceCents != 499 {
		t.Fatalf("unexpected rate %+v", rate)
	}

	// A default rate id is selectable when no zone covers the country.
	if _, err := svc.RateForSelection(context.Background(), "shop1", "FR", "default-express"); err != nil {
		t.Fatalf("default rate should be selectable: %v", err)
	}

	if _, err := svc.RateForSelection(context.Background(), "shop1", "DE", "bogus"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown rate, got %v", err)
	}
}

func TestCreateRate_UnknownZone(t *testing.T) {
	svc := newService(t, &stubRepo{zones: map[string]*domain.ShippingZone{}})
	_, err := svc.CreateRate(context.Background(), "missing", RateInput{Name: "Standard", PriceCents: 100})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

package domain

import (
	"strings"
	"time"
)

// Checkout steps. A session advances forward one step at a time; sessions
// for products that need no shipping go straight from information to payment.
const (
	StepInformation  = 1
	StepShipping     = 2
	StepPayment      = 3
	StepConfirmation = 4
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

// Complete reports whether every required address field is set.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Line1) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.State) != "" &&
		strings.TrimSpace(a.Country) != "" &&
		strings.TrimSpace(a.PostalCode) != ""
}

// CheckoutSession tracks a single purchase attempt through the
// information, shipping and payment steps. Totals are always recomputed
// server-side; the client only ever echoes them.
type CheckoutSession struct {
	ID           string       `json:"id"`
	ShopID       string       `json:"shopId"`
	ProductID    string       `json:"productId"`
	Quantity     int          `json:"quantity"`
	BillingCycle BillingCycle `json:"billingCycle"`
	CurrentStep  int          `json:"currentStep"`

	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`

	ShippingAddress        *Address `json:"shippingAddress,omitempty"`
	SelectedShippingRateID *string  `json:"selectedShippingRateId,omitempty"`

	SubtotalCents     int64  `json:"subtotalCents"`
	PlatformFeeCents  int64  `json:"platformFeeCents"`
	ShippingCostCents int64  `json:"shippingCostCents"`
	TotalCents        int64  `json:"totalCents"`
	Currency          string `json:"currency"`

	PaymentMethod     string        `json:"paymentMethod,omitempty"`
	ProviderSessionID string        `json:"providerSessionId,omitempty"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`

	CustomerNote string `json:"customerNote,omitempty"`

	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Expired reports whether the session passed its retention deadline at
// the given instant. Paid sessions never expire.
func (s CheckoutSession) Expired(now time.Time) bool {
	return s.PaymentStatus != PaymentPaid && now.After(s.ExpiresAt)
}

package domain

import "time"

type OrderPaymentStatus string

const (
	OrderPaymentPending  OrderPaymentStatus = "pending"
	OrderPaymentPaid     OrderPaymentStatus = "paid"
	OrderPaymentFailed   OrderPaymentStatus = "failed"
	OrderPaymentRefunded OrderPaymentStatus = "refunded"
)

type FulfillmentStatus string

const (
	FulfillmentUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentFulfilled   FulfillmentStatus = "fulfilled"
	FulfillmentShipped     FulfillmentStatus = "shipped"
	FulfillmentDelivered   FulfillmentStatus = "delivered"
	FulfillmentCancelled   FulfillmentStatus = "cancelled"
)

// CanTransition reports whether a fulfillment status change is allowed.
// The forward chain is unfulfilled -> fulfilled -> shipped -> delivered;
// cancellation is allowed from any non-terminal state.
func (s FulfillmentStatus) CanTransition(to FulfillmentStatus) bool {
	if s == FulfillmentDelivered || s == FulfillmentCancelled {
		return false
	}
	if to == FulfillmentCancelled {
		return true
	}
	switch s {
	case FulfillmentUnfulfilled:
		return to == FulfillmentFulfilled
	case FulfillmentFulfilled:
		return to == FulfillmentShipped
	case FulfillmentShipped:
		return to == FulfillmentDelivered
	}
	return false
}

type Order struct {
	ID                string             `json:"id"`
	OrderNumber       string             `json:"orderNumber"`
	ShopID            string             `json:"shopId"`
	ProductID         string             `json:"productId"`
	CustomerID        string             `json:"customerId"`
	CheckoutSessionID string             `json:"checkoutSessionId"`
	Email             string             `json:"email"`
	Name              string             `json:"name"`
	Phone             string             `json:"phone,omitempty"`
	ShippingAddress   *Address           `json:"shippingAddress,omitempty"`
	Quantity          int                `json:"quantity"`
	BillingCycle      BillingCycle       `json:"billingCycle"`
	SubtotalCents     int64              `json:"subtotalCents"`
	PlatformFeeCents  int64              `json:"platformFeeCents"`
	ShippingCostCents int64              `json:"shippingCostCents"`
	TotalCents        int64              `json:"totalCents"`
	Currency          string             `json:"currency"`
	PlatformFeePct    float64            `json:"platformFeePercent"`
	ProviderSessionID string             `json:"providerSessionId,omitempty"`
	PaymentStatus     OrderPaymentStatus `json:"paymentStatus"`
	FulfillmentStatus FulfillmentStatus  `json:"fulfillmentStatus"`
	TrackingNumber    string             `json:"trackingNumber,omitempty"`
	Carrier           string             `json:"carrier,omitempty"`
	EstimatedDelivery *time.Time         `json:"estimatedDelivery,omitempty"`
	CustomerNote      string             `json:"customerNote,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

package domain

import (
	"strings"
	"time"
)

type ShippingZone struct {
	ID        string    `json:"id"`
	ShopID    string    `json:"shopId"`
	Name      string    `json:"name"`
	Countries []string  `json:"countries"`
	CreatedAt time.Time `json:"createdAt"`
}

// Covers reports whether the zone covers the destination country.
// Country codes compare case-insensitively.
func (z ShippingZone) Covers(country string) bool {
	for _, c := range z.Countries {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(country)) {
			return true
		}
	}
	return false
}

type ShippingRate struct {
	ID               string    `json:"id"`
	ZoneID           string    `json:"zoneId,omitempty"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	PriceCents       int64     `json:"priceCents"`
	DeliveryEstimate string    `json:"deliveryEstimate,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

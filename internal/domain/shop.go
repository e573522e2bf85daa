package domain

import "time"

type Shop struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	OwnerEmail         string    `json:"ownerEmail"`
	PlatformFeePercent float64   `json:"platformFeePercent"`
	CreatedAt          time.Time `json:"createdAt"`
}

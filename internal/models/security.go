package models

import "time"

// CheckoutSetting is the persisted shared guest checkout PIN.
type CheckoutSetting struct {
	PIN       string    `json:"pin"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

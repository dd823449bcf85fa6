package models

import "time"

// Card is the validity record behind a holder's QR code. Code is an
// opaque unique token fixed at creation; only the validation metadata
// mutates, and only through the validation workflow.
type Card struct {
	ID          string     `json:"id"`
	AccountID   string     `json:"account_id"`
	Code        string     `json:"code"`
	IsValid     bool       `json:"is_valid"`
	CreatedAt   time.Time  `json:"created_at"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
	ValidatedBy string     `json:"validated_by,omitempty"`
}

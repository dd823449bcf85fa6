package models

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ChangeRequest is a proposed profile edit waiting for an admin
// decision. Once the status leaves pending the request is terminal.
type ChangeRequest struct {
	ID          string         `json:"id"`
	AccountID   string         `json:"account_id"`
	RequestedAt time.Time      `json:"requested_at"`
	Status      string         `json:"status"`
	Changes     ProfileChanges `json:"changes"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty"`
	ProcessedBy string         `json:"processed_by,omitempty"`
}

func (r *ChangeRequest) IsPending() bool {
	return r != nil && r.Status == StatusPending
}

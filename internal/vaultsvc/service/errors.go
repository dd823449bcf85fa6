package service

import (
	"errors"

	"github.com/cardvault/vault-services/internal/vaultsvc/store"
)

var (
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrRequestProcessed = errors.New("request already processed")
)

// requireAdmin verifies the acting account exists and carries the admin
// role. The core workflows enforce this themselves instead of trusting
// the routing layer.
func requireAdmin(accounts *store.AccountStore, accountID string) error {
	if a := accounts.GetByID(accountID); !a.IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

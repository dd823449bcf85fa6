package store

import (
	"fmt"
	"sync"

	"github.com/cardvault/vault-services/internal/localstore"
	"github.com/cardvault/vault-services/internal/vaultsvc/models"
)

const accountsRecord = "accounts"

type AccountStore struct {
	db       *localstore.DB
	mu       sync.RWMutex
	accounts []models.Account
}

func NewAccountStore(db *localstore.DB) (*AccountStore, error) {
	s := &AccountStore{db: db}
	if err := db.Load(accountsRecord, &s.accounts); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return s, nil
}

// Append adds an account and persists the snapshot. On a failed
// persist the in-memory state is rolled back so memory and disk
// never diverge.
func (s *AccountStore) Append(a models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = append(s.accounts, a)
	if err := s.db.Save(accountsRecord, s.accounts); err != nil {
		s.accounts = s.accounts[:len(s.accounts)-1]
		return fmt.Errorf("persist accounts: %w", err)
	}
	return nil
}

func (s *AccountStore) GetByID(id string) *models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.accounts {
		if s.accounts[i].ID == id {
			a := s.accounts[i]
			return &a
		}
	}
	return nil
}

// GetByEmail matches the stored email exactly (case-sensitive).
func (s *AccountStore) GetByEmail(email string) *models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.accounts {
		if s.accounts[i].Email == email {
			a := s.accounts[i]
			return &a
		}
	}
	return nil
}

func (s *AccountStore) HasRole(role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.accounts {
		if s.accounts[i].Role == role {
			return true
		}
	}
	return false
}

func (s *AccountStore) List() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

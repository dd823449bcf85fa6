package store

import (
	"fmt"
	"sync"

	"github.com/cardvault/vault-services/internal/localstore"
	"github.com/cardvault/vault-services/internal/vaultsvc/models"
)

const sessionRecord = "session"

// SessionStore holds the single active-session pointer: the account
// currently logged in on this instance, or nothing.
type SessionStore struct {
	db      *localstore.DB
	mu      sync.RWMutex
	current *models.Account
}

func NewSessionStore(db *localstore.DB) (*SessionStore, error) {
	s := &SessionStore{db: db}
	if err := db.Load(sessionRecord, &s.current); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

func (s *SessionStore) Set(a models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current
	s.current = &a
	if err := s.db.Save(sessionRecord, s.current); err != nil {
		s.current = prev
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get() *models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	a := *s.current
	return &a
}

func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Delete(sessionRecord); err != nil {
		return err
	}
	s.current = nil
	return nil
}

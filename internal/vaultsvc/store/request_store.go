package store

import (
	"fmt"
	"sync"

	"github.com/cardvault/vault-services/internal/localstore"
	"github.com/cardvault/vault-services/internal/vaultsvc/models"
)

const requestsRecord = "requests"

type RequestStore struct {
	db       *localstore.DB
	mu       sync.RWMutex
	requests []models.ChangeRequest
}

func NewRequestStore(db *localstore.DB) (*RequestStore, error) {
	s := &RequestStore{db: db}
	if err := db.Load(requestsRecord, &s.requests); err != nil {
		return nil, fmt.Errorf("load requests: %w", err)
	}
	return s, nil
}

func (s *RequestStore) Append(r models.ChangeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, r)
	if err := s.db.Save(requestsRecord, s.requests); err != nil {
		s.requests = s.requests[:len(s.requests)-1]
		return fmt.Errorf("persist requests: %w", err)
	}
	return nil
}

func (s *RequestStore) GetByID(id string) *models.ChangeRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.requests {
		if s.requests[i].ID == id {
			r := s.requests[i]
			return &r
		}
	}
	return nil
}

func (s *RequestStore) ListPending() []models.ChangeRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ChangeRequest
	for i := range s.requests {
		if s.requests[i].Status == models.StatusPending {
			out = append(out, s.requests[i])
		}
	}
	return out
}

func (s *RequestStore) Update(r models.ChangeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.requests {
		if s.requests[i].ID == r.ID {
			prev := s.requests[i]
			s.requests[i] = r
			if err := s.db.Save(requestsRecord, s.requests); err != nil {
				s.requests[i] = prev
				return fmt.Errorf("persist requests: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("request %s not found", r.ID)
}

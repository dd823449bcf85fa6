package store

import (
	"fmt"
	"sync"

	"github.com/cardvault/vault-services/internal/localstore"
	"github.com/cardvault/vault-services/internal/vaultsvc/models"
)

const cardsRecord = "cards"

type CardStore struct {
	db    *localstore.DB
	mu    sync.RWMutex
	cards []models.Card
}

func NewCardStore(db *localstore.DB) (*CardStore, error) {
	s := &CardStore{db: db}
	if err := db.Load(cardsRecord, &s.cards); err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	return s, nil
}

func (s *CardStore) Append(c models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cards = append(s.cards, c)
	if err := s.db.Save(cardsRecord, s.cards); err != nil {
		s.cards = s.cards[:len(s.cards)-1]
		return fmt.Errorf("persist cards: %w", err)
	}
	return nil
}

func (s *CardStore) GetByAccountID(accountID string) *models.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.cards {
		if s.cards[i].AccountID == accountID {
			c := s.cards[i]
			return &c
		}
	}
	return nil
}

// GetByCode matches the opaque card token exactly.
func (s *CardStore) GetByCode(code string) *models.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.cards {
		if s.cards[i].Code == code {
			c := s.cards[i]
			return &c
		}
	}
	return nil
}

// HasCode reports whether a token is already taken; card codes are
// never reused.
func (s *CardStore) HasCode(code string) bool {
	return s.GetByCode(code) != nil
}

func (s *CardStore) Update(c models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cards {
		if s.cards[i].ID == c.ID {
			prev := s.cards[i]
			s.cards[i] = c
			if err := s.db.Save(cardsRecord, s.cards); err != nil {
				s.cards[i] = prev
				return fmt.Errorf("persist cards: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("card %s not found", c.ID)
}

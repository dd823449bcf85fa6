package store

import (
	"fmt"
	"sync"

	"github.com/cardvault/vault-services/internal/localstore"
	"github.com/cardvault/vault-services/internal/vaultsvc/models"
)

const profilesRecord = "profiles"

type ProfileStore struct {
	db       *localstore.DB
	mu       sync.RWMutex
	profiles []models.Profile
}

func NewProfileStore(db *localstore.DB) (*ProfileStore, error) {
	s := &ProfileStore{db: db}
	if err := db.Load(profilesRecord, &s.profiles); err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	return s, nil
}

func (s *ProfileStore) Append(p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles = append(s.profiles, p)
	if err := s.db.Save(profilesRecord, s.profiles); err != nil {
		s.profiles = s.profiles[:len(s.profiles)-1]
		return fmt.Errorf("persist profiles: %w", err)
	}
	return nil
}

func (s *ProfileStore) GetByAccountID(accountID string) *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.profiles {
		if s.profiles[i].AccountID == accountID {
			p := s.profiles[i]
			return &p
		}
	}
	return nil
}

// Update replaces the profile with the same id and persists the snapshot.
func (s *ProfileStore) Update(p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.profiles {
		if s.profiles[i].ID == p.ID {
			prev := s.profiles[i]
			s.profiles[i] = p
			if err := s.db.Save(profilesRecord, s.profiles); err != nil {
				s.profiles[i] = prev
				return fmt.Errorf("persist profiles: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("profile %s not found", p.ID)
}

func (s *ProfileStore) List() []models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

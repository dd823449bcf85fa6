package service

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cardvault/vault-services/internal/vaultsvc/models"
	"github.com/cardvault/vault-services/internal/vaultsvc/store"
)

// ValidationService resolves scanned card codes and confirms cards.
type ValidationService struct {
	cards    *store.CardStore
	profiles *store.ProfileStore
	accounts *store.AccountStore
}

func NewValidationService(cards *store.CardStore, profiles *store.ProfileStore,
	accounts *store.AccountStore) *ValidationService {
	return &ValidationService{
		cards:    cards,
		profiles: profiles,
		accounts: accounts,
	}
}

// ResolveCardByCode looks up a card by its exact token and returns it
// with the owning profile.
func (s *ValidationService) ResolveCardByCode(code string) (*models.Card, *models.Profile, error) {
	card := s.cards.GetByCode(code)
	if card == nil {
		return nil, nil, ErrNotFound
	}
	profile := s.profiles.GetByAccountID(card.AccountID)
	if profile == nil {
		return nil, nil, ErrNotFound
	}
	return card, profile, nil
}

// ValidateCard confirms the card behind a scanned code. Validation
// never invalidates: is_valid ends up true every time, while the
// validation stamp is overwritten with the latest admin and time.
func (s *ValidationService) ValidateCard(code, adminAccountID string) error {
	if err := requireAdmin(s.accounts, adminAccountID); err != nil {
		return err
	}

	card := s.cards.GetByCode(code)
	if card == nil {
		return ErrNotFound
	}

	now := time.Now()
	card.IsValid = true
	card.ValidatedAt = &now
	card.ValidatedBy = adminAccountID
	if err := s.cards.Update(*card); err != nil {
		return err
	}

	log.Infof("card %s validated by %s", card.ID, adminAccountID)
	return nil
}

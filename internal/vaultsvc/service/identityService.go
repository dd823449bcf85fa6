package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/cardvault/vault-services/internal/vaultsvc/models"
	"github.com/cardvault/vault-services/internal/vaultsvc/store"
)

// Seeded admin credentials, overridable via AdminEmail/AdminPassword
// on the service. Credential checking beyond the seeded admin pair is
// a placeholder; see Authenticate.
const (
	DefaultAdminEmail    = "admin@example.test"
	DefaultAdminPassword = "Admin1@"
)

// RegistrationFields carries the optional profile data collected at
// registration.
type RegistrationFields struct {
	Phone         string
	Country       string
	Province      string
	City          string
	District      string
	Subdistrict   string
	PostalCode    string
	StreetAddress string
	Note          string
	PhotoRef      string
}

// IdentityService owns accounts, profiles, cards and the active
// session.
type IdentityService struct {
	accounts *store.AccountStore
	profiles *store.ProfileStore
	cards    *store.CardStore
	sessions *store.SessionStore

	AdminEmail    string
	AdminPassword string
}

func NewIdentityService(accounts *store.AccountStore, profiles *store.ProfileStore,
	cards *store.CardStore, sessions *store.SessionStore) *IdentityService {
	return &IdentityService{
		accounts:      accounts,
		profiles:      profiles,
		cards:         cards,
		sessions:      sessions,
		AdminEmail:    DefaultAdminEmail,
		AdminPassword: DefaultAdminPassword,
	}
}

// Register creates the account, its profile and its card as one unit
// and makes the new account the active session. The email must not be
// registered already (exact, case-sensitive match).
func (s *IdentityService) Register(email, displayName, password string, fields RegistrationFields) (*models.Account, error) {
	if s.accounts.GetByEmail(email) != nil {
		return nil, ErrDuplicateEmail
	}

	now := time.Now()
	account := models.Account{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
		Role:        models.RoleUser,
	}
	cardID := uuid.NewString()
	profile := models.Profile{
		ID:            uuid.NewString(),
		AccountID:     account.ID,
		DisplayName:   displayName,
		Email:         email,
		CardID:        cardID,
		Phone:         fields.Phone,
		Address:       formatAddress(fields),
		Country:       fields.Country,
		Province:      fields.Province,
		City:          fields.City,
		District:      fields.District,
		Subdistrict:   fields.Subdistrict,
		PostalCode:    fields.PostalCode,
		StreetAddress: fields.StreetAddress,
		Note:          fields.Note,
		PhotoRef:      fields.PhotoRef,
		CreatedAt:     now,
	}
	card := models.Card{
		ID:        cardID,
		AccountID: account.ID,
		Code:      s.newCardCode(cardID),
		IsValid:   true,
		CreatedAt: now,
	}

	if err := s.accounts.Append(account); err != nil {
		return nil, err
	}
	if err := s.profiles.Append(profile); err != nil {
		return nil, err
	}
	if err := s.cards.Append(card); err != nil {
		return nil, err
	}
	if err := s.sessions.Set(account); err != nil {
		return nil, err
	}

	log.Infof("registered account %s (%s)", account.ID, email)
	return &account, nil
}

// Authenticate resolves an account and establishes the session. Only
// the seeded admin pair is actually checked; any other known email
// matches regardless of password. A real deployment must replace this
// with a proper credential check.
func (s *IdentityService) Authenticate(email, password string) (*models.Account, error) {
	if email == s.AdminEmail && password == s.AdminPassword {
		if a := s.accounts.GetByEmail(email); a.IsAdmin() {
			if err := s.sessions.Set(*a); err != nil {
				return nil, err
			}
			return a, nil
		}
	}

	a := s.accounts.GetByEmail(email)
	if a == nil {
		return nil, ErrNotFound
	}
	if err := s.sessions.Set(*a); err != nil {
		return nil, err
	}
	return a, nil
}

// Logout clears the active session pointer.
func (s *IdentityService) Logout() error {
	return s.sessions.Clear()
}

// CurrentAccount returns the active session's account, or nil when
// logged out.
func (s *IdentityService) CurrentAccount() *models.Account {
	return s.sessions.Get()
}

func (s *IdentityService) GetAccount(accountID string) (*models.Account, error) {
	a := s.accounts.GetByID(accountID)
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *IdentityService) GetProfile(accountID string) (*models.Profile, error) {
	p := s.profiles.GetByAccountID(accountID)
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *IdentityService) GetCard(accountID string) (*models.Card, error) {
	c := s.cards.GetByAccountID(accountID)
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *IdentityService) ListAllProfiles() []models.Profile {
	return s.profiles.List()
}

// Bootstrap seeds the single admin account, profile and card on first
// run. Account ids use the fixed admin-1 suffix so a reinstall lands
// on the same identity.
func (s *IdentityService) Bootstrap() error {
	if s.accounts.HasRole(models.RoleAdmin) {
		return nil
	}

	now := time.Now()
	account := models.Account{
		ID:          "admin-1",
		Email:       s.AdminEmail,
		DisplayName: "Admin User",
		Role:        models.RoleAdmin,
	}
	profile := models.Profile{
		ID:          "data-admin-1",
		AccountID:   account.ID,
		DisplayName: account.DisplayName,
		Email:       account.Email,
		CardID:      "card-admin-1",
		CreatedAt:   now,
	}
	card := models.Card{
		ID:        "card-admin-1",
		AccountID: account.ID,
		Code:      s.newCardCode("admin"),
		IsValid:   true,
		CreatedAt: now,
	}

	if err := s.accounts.Append(account); err != nil {
		return err
	}
	if err := s.profiles.Append(profile); err != nil {
		return err
	}
	if err := s.cards.Append(card); err != nil {
		return err
	}

	log.Infof("seeded admin account %s (%s)", account.ID, account.Email)
	return nil
}

// newCardCode builds an opaque token from a prefix, a millisecond
// timestamp and a random suffix, retrying in the unlikely event of a
// collision. Tokens are never reused.
func (s *IdentityService) newCardCode(prefix string) string {
	for {
		code := fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), randomSuffix())
		if !s.cards.HasCode(code) {
			return code
		}
	}
}

func randomSuffix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		log.Warnf("random suffix: %v", err)
	}
	return hex.EncodeToString(b)
}

// formatAddress composes the single display address from the non-empty
// components, most specific first.
func formatAddress(f RegistrationFields) string {
	parts := make([]string, 0, 6)
	for _, p := range []string{f.StreetAddress, f.Subdistrict, f.District, f.City, f.Province, f.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

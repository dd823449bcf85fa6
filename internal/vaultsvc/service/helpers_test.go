package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardvault/vault-services/internal/localstore"
	"github.com/cardvault/vault-services/internal/vaultsvc/service"
	"github.com/cardvault/vault-services/internal/vaultsvc/store"
)

type testEnv struct {
	db         *localstore.DB
	accounts   *store.AccountStore
	profiles   *store.ProfileStore
	cards      *store.CardStore
	requests   *store.RequestStore
	sessions   *store.SessionStore
	identity   *service.IdentityService
	request    *service.RequestService
	validation *service.ValidationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvAt(t, t.TempDir())
}

// newTestEnvAt builds the full service stack over a given data dir so
// tests can reopen the same dir and check restart behavior.
func newTestEnvAt(t *testing.T, dir string) *testEnv {
	t.Helper()

	db, err := localstore.Open(dir)
	require.NoError(t, err)

	accounts, err := store.NewAccountStore(db)
	require.NoError(t, err)
	profiles, err := store.NewProfileStore(db)
	require.NoError(t, err)
	cards, err := store.NewCardStore(db)
	require.NoError(t, err)
	requests, err := store.NewRequestStore(db)
	require.NoError(t, err)
	sessions, err := store.NewSessionStore(db)
	require.NoError(t, err)

	return &testEnv{
		db:         db,
		accounts:   accounts,
		profiles:   profiles,
		cards:      cards,
		requests:   requests,
		sessions:   sessions,
		identity:   service.NewIdentityService(accounts, profiles, cards, sessions),
		request:    service.NewRequestService(requests, profiles, accounts),
		validation: service.NewValidationService(cards, profiles, accounts),
	}
}

func strptr(s string) *string {
	return &s
}

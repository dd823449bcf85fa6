package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardvault/vault-services/internal/localstore"
	"github.com/cardvault/vault-services/internal/vaultsvc/models"
	"github.com/cardvault/vault-services/internal/vaultsvc/store"
)

func openDB(t *testing.T, dir string) *localstore.DB {
	t.Helper()
	db, err := localstore.Open(dir)
	require.NoError(t, err)
	return db
}

func TestAccountStorePersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()

	accounts, err := store.NewAccountStore(openDB(t, dir))
	require.NoError(t, err)
	require.NoError(t, accounts.Append(models.Account{ID: "a1", Email: "a@example.test", Role: models.RoleUser}))

	reloaded, err := store.NewAccountStore(openDB(t, dir))
	require.NoError(t, err)
	got := reloaded.GetByEmail("a@example.test")
	require.NotNil(t, got)
	assert.Equal(t, "a1", got.ID)
	assert.True(t, reloaded.HasRole(models.RoleUser))
	assert.False(t, reloaded.HasRole(models.RoleAdmin))
}

func TestAccountStoreEmailMatchIsExact(t *testing.T) {
	accounts, err := store.NewAccountStore(openDB(t, t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, accounts.Append(models.Account{ID: "a1", Email: "a@example.test"}))

	assert.Nil(t, accounts.GetByEmail("A@example.test"))
	assert.NotNil(t, accounts.GetByEmail("a@example.test"))
}

func TestCardStoreLookupAndUpdate(t *testing.T) {
	cards, err := store.NewCardStore(openDB(t, t.TempDir()))
	require.NoError(t, err)

	card := models.Card{ID: "c1", AccountID: "a1", Code: "tok-1", IsValid: true, CreatedAt: time.Now()}
	require.NoError(t, cards.Append(card))

	assert.True(t, cards.HasCode("tok-1"))
	assert.Nil(t, cards.GetByCode("tok-2"))

	now := time.Now()
	card.ValidatedAt = &now
	card.ValidatedBy = "admin-1"
	require.NoError(t, cards.Update(card))

	got := cards.GetByAccountID("a1")
	require.NotNil(t, got)
	assert.Equal(t, "admin-1", got.ValidatedBy)
}

func TestCardStoreUpdateUnknownCard(t *testing.T) {
	cards, err := store.NewCardStore(openDB(t, t.TempDir()))
	require.NoError(t, err)

	err = cards.Update(models.Card{ID: "missing"})
	assert.Error(t, err)
}

func TestRequestStoreListPendingFilters(t *testing.T) {
	requests, err := store.NewRequestStore(openDB(t, t.TempDir()))
	require.NoError(t, err)

	require.NoError(t, requests.Append(models.ChangeRequest{ID: "r1", Status: models.StatusPending}))
	require.NoError(t, requests.Append(models.ChangeRequest{ID: "r2", Status: models.StatusApproved}))
	require.NoError(t, requests.Append(models.ChangeRequest{ID: "r3", Status: models.StatusPending}))

	pending := requests.ListPending()
	require.Len(t, pending, 2)
	assert.Equal(t, "r1", pending[0].ID)
	assert.Equal(t, "r3", pending[1].ID)
}

func TestSessionStoreSetGetClear(t *testing.T) {
	dir := t.TempDir()

	sessions, err := store.NewSessionStore(openDB(t, dir))
	require.NoError(t, err)
	assert.Nil(t, sessions.Get())

	require.NoError(t, sessions.Set(models.Account{ID: "a1", Role: models.RoleUser}))

	reloaded, err := store.NewSessionStore(openDB(t, dir))
	require.NoError(t, err)
	got := reloaded.Get()
	require.NotNil(t, got)
	assert.Equal(t, "a1", got.ID)

	require.NoError(t, reloaded.Clear())
	assert.Nil(t, reloaded.Get())

	cleared, err := store.NewSessionStore(openDB(t, dir))
	require.NoError(t, err)
	assert.Nil(t, cleared.Get())
}

func TestProfileStoreUpdateReplacesRecord(t *testing.T) {
	profiles, err := store.NewProfileStore(openDB(t, t.TempDir()))
	require.NoError(t, err)

	p := models.Profile{ID: "p1", AccountID: "a1", DisplayName: "Alice"}
	require.NoError(t, profiles.Append(p))

	p.Phone = "+1 555"
	require.NoError(t, profiles.Update(p))

	got := profiles.GetByAccountID("a1")
	require.NotNil(t, got)
	assert.Equal(t, "+1 555", got.Phone)
	assert.Len(t, profiles.List(), 1)
}

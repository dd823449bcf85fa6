package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardvault/vault-services/internal/vaultsvc/service"
)

func TestResolveCardByCodeReturnsCardAndOwner(t *testing.T) {
	env := newTestEnv(t)

	account, err := env.identity.Register("alice@example.test", "Alice", "pw", service.RegistrationFields{})
	require.NoError(t, err)
	created, err := env.identity.GetCard(account.ID)
	require.NoError(t, err)

	card, profile, err := env.validation.ResolveCardByCode(created.Code)
	require.NoError(t, err)
	assert.Equal(t, created.ID, card.ID)
	assert.Equal(t, account.ID, profile.AccountID)
}

func TestResolveUnknownCode(t *testing.T) {
	env := newTestEnv(t)

	card, profile, err := env.validation.ResolveCardByCode("not-a-code")
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Nil(t, card)
	assert.Nil(t, profile)
}

func TestValidateCardStampsAndStaysValid(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.identity.Bootstrap())

	account, err := env.identity.Register("bob@example.test", "Bob", "pw", service.RegistrationFields{})
	require.NoError(t, err)
	created, err := env.identity.GetCard(account.ID)
	require.NoError(t, err)

	require.NoError(t, env.validation.ValidateCard(created.Code, "admin-1"))

	card, _, err := env.validation.ResolveCardByCode(created.Code)
	require.NoError(t, err)
	assert.True(t, card.IsValid)
	require.NotNil(t, card.ValidatedAt)
	assert.Equal(t, "admin-1", card.ValidatedBy)
	first := *card.ValidatedAt

	// a second validation overwrites the stamp, never flips validity
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, env.validation.ValidateCard(created.Code, "admin-1"))

	card, _, err = env.validation.ResolveCardByCode(created.Code)
	require.NoError(t, err)
	assert.True(t, card.IsValid)
	require.NotNil(t, card.ValidatedAt)
	assert.True(t, card.ValidatedAt.After(first))
}

func TestValidateUnknownCode(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.identity.Bootstrap())

	err := env.validation.ValidateCard("not-a-code", "admin-1")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestValidateRequiresAdminRole(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.identity.Bootstrap())

	account, err := env.identity.Register("carol@example.test", "Carol", "pw", service.RegistrationFields{})
	require.NoError(t, err)
	created, err := env.identity.GetCard(account.ID)
	require.NoError(t, err)

	err = env.validation.ValidateCard(created.Code, account.ID)
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	card, _, err := env.validation.ResolveCardByCode(created.Code)
	require.NoError(t, err)
	assert.Nil(t, card.ValidatedAt)
	assert.Empty(t, card.ValidatedBy)
}

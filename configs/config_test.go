package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/cardvault/vault-services/configs"
)

func TestCreateUniqueInstance(t *testing.T) {
	id := config.CreateUniqueInstance("vault")
	require.NotEmpty(t, id)
	assert.Equal(t, id, config.GetInstanceId())

	// each instance gets a fresh identifier
	next := config.CreateUniqueInstance("vault")
	assert.NotEqual(t, id, next)
	assert.Equal(t, next, config.GetInstanceId())
}

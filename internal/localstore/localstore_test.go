package localstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardvault/vault-services/internal/localstore"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db, err := localstore.Open(t.TempDir())
	require.NoError(t, err)

	in := []item{{ID: "a", Name: "first"}, {ID: "b", Name: "second"}}
	require.NoError(t, db.Save("items", in))

	var out []item
	require.NoError(t, db.Load("items", &out))
	assert.Equal(t, in, out)
}

func TestLoadMissingRecordLeavesValueUntouched(t *testing.T) {
	db, err := localstore.Open(t.TempDir())
	require.NoError(t, err)

	out := []item{{ID: "keep"}}
	require.NoError(t, db.Load("nothing", &out))
	assert.Equal(t, []item{{ID: "keep"}}, out)
}

func TestDeleteRecord(t *testing.T) {
	db, err := localstore.Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, db.Save("single", item{ID: "x"}))
	require.NoError(t, db.Delete("single"))

	var out *item
	require.NoError(t, db.Load("single", &out))
	assert.Nil(t, out)

	// deleting again is fine
	require.NoError(t, db.Delete("single"))
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := localstore.Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.Save("items", []item{{ID: "a"}}))

	reopened, err := localstore.Open(dir)
	require.NoError(t, err)
	var out []item
	require.NoError(t, reopened.Load("items", &out))
	assert.Equal(t, []item{{ID: "a"}}, out)
}

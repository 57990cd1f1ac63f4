package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardwareStoreInventory/internal/testutil"
	"hardwareStoreInventory/models"
)

func TestSessionRepository_SaveLoadClear(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "sessionrepo")
	repo := NewSessionRepository(d)
	ctx := context.Background()

	// Empty store
	_, _, err := repo.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	user := models.User{"usuario": "ana", "nombre": "Ana", "rol": json.Number("1")}
	require.NoError(t, repo.Save(ctx, user, "tok-1"))

	got, token, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "Ana", got.DisplayName())
	assert.True(t, got.IsAdmin())

	// Overwrite
	require.NoError(t, repo.Save(ctx, models.User{"usuario": "beto"}, "tok-2"))
	got, token, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
	assert.Equal(t, "beto", got.Username())

	require.NoError(t, repo.Clear(ctx))
	_, _, err = repo.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSessionRepository_PartialSessionIsAbsent(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "sessionpartial")
	repo := NewSessionRepository(d)
	ctx := context.Background()

	_, err := d.Exec(`INSERT INTO session_kv (key, value) VALUES (?, ?)`, KeyToken, "only-token")
	require.NoError(t, err)

	_, _, err = repo.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionRepository_CorruptUser(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "sessioncorrupt")
	repo := NewSessionRepository(d)
	ctx := context.Background()

	_, err := d.Exec(`INSERT INTO session_kv (key, value) VALUES (?, ?), (?, ?)`, KeyUser, "{not json", KeyToken, "t")
	require.NoError(t, err)

	_, _, err = repo.Load(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}

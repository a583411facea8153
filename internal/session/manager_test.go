package session

import (
	"context"
	"testing"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LoginLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := storage.NewMemoryStore()
	m := NewManager(s)

	cur, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)

	u := &models.User{ID: 7, Name: "Ana", Email: "a@x.com", Password: "hash"}
	require.NoError(t, m.Login(ctx, u))

	cur, err = m.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, models.Session{ID: 7, Name: "Ana", Email: "a@x.com"}, *cur)

	raw, _, err := s.Get(ctx, storage.KeyCurrentUser)
	require.NoError(t, err)
	assert.NotContains(t, raw, "password")

	require.NoError(t, m.Login(ctx, &models.User{ID: 8, Name: "Bo", Email: "b@x.com"}))
	cur, err = m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), cur.ID)

	require.NoError(t, m.Logout(ctx))
	cur, err = m.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestManager_CorruptSessionIsAbsent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := storage.NewMemoryStore()
	require.NoError(t, s.Set(ctx, storage.KeyCurrentUser, `{"id":`))

	cur, err := NewManager(s).Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

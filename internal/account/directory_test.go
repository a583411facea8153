package account

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(now time.Time) (*Directory, *storage.MemoryStore) {
	s := storage.NewMemoryStore()
	d := NewDirectory(s)
	d.Now = func() time.Time { return now }
	return d, s
}

func TestDirectory_Register_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		confirm  string
		want     error
	}{
		{name: "empty name", userName: "", email: "a@x.com", password: "secret1", confirm: "secret1", want: ErrValidation},
		{name: "empty email", userName: "Ana", email: " ", password: "secret1", confirm: "secret1", want: ErrValidation},
		{name: "mismatch", userName: "Ana", email: "a@x.com", password: "secret1", confirm: "secret2", want: ErrPasswordMismatch},
		{name: "too short", userName: "Ana", email: "a@x.com", password: "12345", confirm: "12345", want: ErrPasswordTooShort},
		{name: "too short multibyte", userName: "Ana", email: "a@x.com", password: "ñññ", confirm: "ñññ", want: ErrPasswordTooShort},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, _ := newTestDirectory(time.Now())
			u, err := d.Register(context.Background(), tt.userName, tt.email, tt.password, tt.confirm)
			require.Error(t, err)
			assert.Nil(t, u)
			assert.ErrorIs(t, err, tt.want)

			users, err := d.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, users)
		})
	}
}

func TestDirectory_Register_EmailTaken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d, _ := newTestDirectory(time.UnixMilli(1_700_000_000_000))

	first, err := d.Register(ctx, "Ana", "a@x.com", "secret1", "secret1")
	require.NoError(t, err)

	_, err = d.Register(ctx, "Other", "a@x.com", "secret2", "secret2")
	assert.ErrorIs(t, err, ErrEmailTaken)

	users, err := d.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, *first, users[0])
	assert.Equal(t, "Ana", users[0].Name)

	// exact match only
	_, err = d.Register(ctx, "Upper", "A@x.com", "secret1", "secret1")
	require.NoError(t, err)
}

func TestDirectory_Register_AssignsUniqueIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.UnixMilli(1_700_000_000_000)
	d, _ := newTestDirectory(now)

	a, err := d.Register(ctx, "A", "a@x.com", "secret1", "secret1")
	require.NoError(t, err)
	b, err := d.Register(ctx, "B", "b@x.com", "secret1", "secret1")
	require.NoError(t, err)

	assert.Equal(t, now.UnixMilli(), a.ID)
	assert.Equal(t, now.UnixMilli()+1, b.ID)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", a.CreatedAt)
	assert.NotEqual(t, "secret1", a.Password)
}

func TestDirectory_FindByCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d, _ := newTestDirectory(time.Now())
	created, err := d.Register(ctx, "Ana", "a@x.com", "secret1", "secret1")
	require.NoError(t, err)

	u, err := d.FindByCredentials(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = d.FindByCredentials(ctx, "a@x.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = d.FindByCredentials(ctx, "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDirectory_FindByCredentials_LegacyPlaintext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d, s := newTestDirectory(time.Now())
	require.NoError(t, s.Set(ctx, storage.KeyUsers, `[{"id":1,"name":"Old","email":"old@x.com","password":"secret1"}]`))

	u, err := d.FindByCredentials(ctx, "old@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
}

func TestDirectory_CorruptUsersTreatedAsEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d, s := newTestDirectory(time.Now())
	require.NoError(t, s.Set(ctx, storage.KeyUsers, `garbage`))

	users, err := d.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = d.Register(ctx, "Ana", "a@x.com", "secret1", "secret1")
	require.NoError(t, err)
}

func TestDirectory_Register_LongPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	long := strings.Repeat("x", 80)
	d, _ := newTestDirectory(time.Now())
	created, err := d.Register(ctx, "Ana", "a@x.com", long, long)
	require.NoError(t, err)

	u, err := d.FindByCredentials(ctx, "a@x.com", long)
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = d.FindByCredentials(ctx, "a@x.com", long[:72])
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDirectory_Register_MultibytePasswordCountsCharacters(t *testing.T) {
	t.Parallel()

	d, _ := newTestDirectory(time.Now())
	_, err := d.Register(context.Background(), "Ana", "a@x.com", "ñññððð", "ñññððð")
	require.NoError(t, err)
}

func TestDirectory_PartiallyCorruptUsersNotLoaded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d, s := newTestDirectory(time.Now())
	require.NoError(t, s.Set(ctx, storage.KeyUsers,
		`[{"id":1,"name":"Old","email":"a@x.com","password":"secret1"},{"id":"bad","email":"b@x.com"}]`))

	users, err := d.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = d.FindByCredentials(ctx, "a@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

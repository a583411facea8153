package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", h)
	assert.True(t, IsHash(h))
	assert.True(t, CheckPassword(h, "secret1"))
	assert.False(t, CheckPassword(h, "secret2"))
}

func TestCheckPassword_Plaintext(t *testing.T) {
	t.Parallel()

	assert.True(t, CheckPassword("secret1", "secret1"))
	assert.False(t, CheckPassword("secret1", "Secret1"))
	assert.False(t, CheckPassword("", "secret1"))
}

func TestHashPassword_LongPassword(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("p", 80)
	h, err := HashPassword(long)
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, long))
	// bcrypt alone would ignore everything past byte 72
	assert.False(t, CheckPassword(h, long[:72]))
	assert.False(t, CheckPassword(h, long+"x"))
}

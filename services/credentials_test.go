package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialPoolEmpty(t *testing.T) {
	pool := NewCredentialPool("")
	assert.Equal(t, 0, pool.Size())

	_, err := pool.Select()
	require.ErrorIs(t, err, ErrNoCredentials)
}

func TestCredentialPoolSelectsFromConfigured(t *testing.T) {
	pool := NewCredentialPool("key-one key-two\nkey-three")
	require.Equal(t, 3, pool.Size())

	seen := map[string]bool{}
	for range 100 {
		key, err := pool.Select()
		require.NoError(t, err)
		assert.Contains(t, []string{"key-one", "key-two", "key-three"}, key)
		seen[key] = true
	}
	// uniform selection over 100 draws should hit each of the three keys
	assert.Len(t, seen, 3)
}

func TestCredentialPoolWhitespaceOnly(t *testing.T) {
	pool := NewCredentialPool("  \n\t ")
	_, err := pool.Select()
	assert.ErrorIs(t, err, ErrNoCredentials)
}

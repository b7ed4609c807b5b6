package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	passwordHash, err := HashPassword("coach")
	require.NoError(t, err)
	assert.NotEmpty(t, passwordHash)
	assert.True(t, CheckPasswordHash("coach", passwordHash))
	assert.False(t, CheckPasswordHash("player", passwordHash))
	assert.False(t, CheckPasswordHash("coach", "not-a-hash"))
}

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
}

func TestCheckPasswordHash_EmptyHash(t *testing.T) {
	// A retired credential stores an empty hash; nothing matches it.
	assert.False(t, CheckPasswordHash("adminpassword", ""))
	assert.False(t, CheckPasswordHash("", ""))
}

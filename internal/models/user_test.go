package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
}

func TestUserToResponseOmitsPassword(t *testing.T) {
	u := User{ID: 3, Username: "ada", Password: "hashed"}

	resp := u.ToResponse()

	assert.Equal(t, uint(3), resp.ID)
	assert.Equal(t, "ada", resp.Username)
}

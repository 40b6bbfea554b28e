package utils_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/beautypos-api/pkg/utils"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := utils.NewJWTManager("secret", "beautypos-api", time.Minute)
	id := uuid.New()

	token, err := m.GenerateAccessToken(id, "a@shop.test", "SELLER")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "SELLER", claims.Role)
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	a := utils.NewJWTManager("secret-a", "beautypos-api", time.Minute)
	b := utils.NewJWTManager("secret-b", "beautypos-api", time.Minute)

	token, err := a.GenerateAccessToken(uuid.New(), "a@shop.test", "ADMIN")
	require.NoError(t, err)

	_, err = b.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := utils.NewJWTManager("secret", "beautypos-api", -time.Minute)

	token, err := m.GenerateAccessToken(uuid.New(), "a@shop.test", "ADMIN")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := utils.HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.True(t, utils.CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, utils.CheckPasswordHash("wrong", hash))
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Minute, time.Hour)

	t.Run("happy path - round trip", func(t *testing.T) {
		token, exp, err := mgr.GenerateAccess("u1", "max@example.com")
		require.NoError(t, err)
		assert.True(t, exp.After(time.Now()))

		claims, err := mgr.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, "max@example.com", claims.Email)
		assert.Equal(t, "u1", claims.Subject)
	})

	t.Run("sad path - expired token", func(t *testing.T) {
		expired := NewJWTManager("test-secret", -time.Minute, time.Hour)
		token, _, err := expired.GenerateAccess("u1", "max@example.com")
		require.NoError(t, err)

		_, err = mgr.Parse(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("sad path - wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Minute, time.Hour)
		token, _, err := other.GenerateAccess("u1", "max@example.com")
		require.NoError(t, err)

		_, err = mgr.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("sad path - garbage", func(t *testing.T) {
		_, err := mgr.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

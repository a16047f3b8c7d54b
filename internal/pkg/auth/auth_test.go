package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

func newService() *JWTService {
	return NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, Issuer: "campus"})
}

func TestIssueAndValidate(t *testing.T) {
	s := newService()
	user := &models.User{ID: 7, Email: "staff@school.edu", RoleType: models.RoleStaff}

	token, expires, err := s.IssueAccessToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, models.RoleStaff, claims.RoleType)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenFailures(t *testing.T) {
	s := newService()
	user := &models.User{ID: 7, Email: "staff@school.edu", RoleType: models.RoleStaff}
	token, _, err := s.IssueAccessToken(user)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := newService()
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateToken(token)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, Issuer: "campus"})
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("unknown role", func(t *testing.T) {
		claims := &Claims{UserID: 1, RoleType: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "campus", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = s.ValidateToken(raw)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := s.ValidateToken("")
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, h := range []string{"", "abc.def", "Bearer ", "Basic abc"} {
		_, err := ExtractBearerToken(h)
		assert.ErrorIs(t, err, apperrors.ErrInvalidFormat, h)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	adapters "notespace/internal/users/adapters/services"
	"notespace/internal/users/domain/services"
)

const (
	secret = "test-secret"
	userID = "0b5f1c52-7a1d-4a8e-9d3c-4c1c1a2b3c4d"
)

func TestBcrypt(t *testing.T) {
	ctx := context.Background()
	svc := adapters.NewBcrypt(bcrypt.MinCost)

	hash, err := svc.Hash(ctx, "correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	ok, err := svc.Verify(ctx, "correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify(ctx, "wrong horse", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Hash(ctx, "")
	require.ErrorIs(t, err, services.ErrInvalidPassword)

	_, err = svc.Verify(ctx, "x", "")
	require.ErrorIs(t, err, services.ErrInvalidPassword)

	_, err = svc.Verify(ctx, "x", "not-a-bcrypt-hash")
	require.Error(t, err)

	_, err = svc.Hash(ctx, strings.Repeat("a", 100))
	require.ErrorIs(t, err, services.ErrHashingFailed)
}

func TestNewBcryptInvalidCost(t *testing.T) {
	hash, err := adapters.NewBcrypt(1000).Hash(context.Background(), "password1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestJWTRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := adapters.NewJWT(secret, 7*24*time.Hour)

	token, expiresAt, err := svc.Generate(ctx, userID, "ada@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	claims, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	mapClaims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, userID, mapClaims["sub"])
	assert.Equal(t, "ada@example.com", mapClaims["email"])
}

func TestJWTValidateFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("expired", func(t *testing.T) {
		svc := adapters.NewJWT(secret, -time.Minute)
		token, _, err := svc.Generate(ctx, userID, "a@b.c")
		require.NoError(t, err)

		_, err = svc.Validate(ctx, token)
		require.ErrorIs(t, err, services.ErrExpiredJWTToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := adapters.NewJWT("other", time.Hour).Generate(ctx, userID, "a@b.c")
		require.NoError(t, err)

		_, err = adapters.NewJWT(secret, time.Hour).Validate(ctx, token)
		require.ErrorIs(t, err, services.ErrInvalidJWTToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := adapters.NewJWT(secret, time.Hour).Validate(ctx, "not.a.token")
		require.ErrorIs(t, err, services.ErrInvalidJWTToken)
	})

	t.Run("unexpected algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, adapters.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = adapters.NewJWT(secret, time.Hour).Validate(ctx, signed)
		require.ErrorIs(t, err, services.ErrInvalidJWTToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, adapters.Claims{
			Email: "a@b.c",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = adapters.NewJWT(secret, time.Hour).Validate(ctx, signed)
		require.ErrorIs(t, err, services.ErrInvalidJWTToken)
	})

	t.Run("empty secret cannot sign", func(t *testing.T) {
		_, _, err := adapters.NewJWT("", time.Hour).Generate(ctx, userID, "a@b.c")
		require.ErrorIs(t, err, services.ErrGeneratingJWTToken)
	})
}

package security

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradecoach/backend/src/config"
)

func TestMain(m *testing.M) {
	config.Cfg = &config.AppConfig{
		AccessTokenExpiry: time.Minute,
	}
	os.Exit(m.Run())
}

func TestHashAndComparePassword(t *testing.T) {
	svc := NewAuthService("test-secret-key-of-sufficient-length!!")

	hash, err := svc.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, svc.CompareHashAndPassword(hash, "correct horse battery staple"))
	assert.Error(t, svc.CompareHashAndPassword(hash, "wrong password"))
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret-key-of-sufficient-length!!")

	token, err := svc.GenerateToken("42")
	require.NoError(t, err)

	sub, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", sub)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService("issuer-secret-key-of-sufficient-length")
	verifier := NewAuthService("other-secret-key-of-sufficient-length!")

	token, err := issuer.GenerateToken("42")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService("test-secret-key-of-sufficient-length!!")
	_, err := svc.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

func TestGenerateRefreshTokenIsUnique(t *testing.T) {
	svc := NewAuthService("test-secret-key-of-sufficient-length!!")

	a, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/degree-registry-api/internal/models"
	appErrors "github.com/noah-isme/degree-registry-api/pkg/errors"
)

func newAuthService() *AuthService {
	return NewAuthService(nil, zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "degree-registry"})
}

func TestAuthServiceRoundTrip(t *testing.T) {
	svc := newAuthService()
	resp, err := svc.IssueDevToken(context.Background(), models.DevTokenRequest{Principal: "0xprof", DisplayName: "Prof. Alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.Principal("0xprof"), claims.Principal())
	assert.Equal(t, "Prof. Alice", claims.DisplayName)
}

func TestAuthServiceRejectsInvalidRequest(t *testing.T) {
	_, err := newAuthService().IssueDevToken(context.Background(), models.DevTokenRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAuthServiceRejectsForeignTokens(t *testing.T) {
	svc := newAuthService()

	other := NewAuthService(nil, nil, AuthConfig{AccessTokenSecret: "other", Issuer: "degree-registry"})
	resp, err := other.IssueDevToken(context.Background(), models.DevTokenRequest{Principal: "0xprof"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	wrongIssuer := NewAuthService(nil, nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "elsewhere"})
	resp, err = wrongIssuer.IssueDevToken(context.Background(), models.DevTokenRequest{Principal: "0xprof"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceRejectsExpiredAndSubjectless(t *testing.T) {
	svc := newAuthService()
	resp, err := svc.IssueDevToken(context.Background(), models.DevTokenRequest{Principal: "0xprof"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	claims := &models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "degree-registry"}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = newAuthService().ValidateToken(signed)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

package websocket

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuth0JWTValidator_Implements_TokenValidator(t *testing.T) {
	var _ TokenValidator = (*Auth0JWTValidator)(nil)
}

func TestErrInvalidToken_Message(t *testing.T) {
	assert.Equal(t, "invalid token", ErrInvalidToken.Error())
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{}
	err := claims.Validate(nil)
	assert.NoError(t, err, "CustomClaims.Validate should return nil")
}

func TestNewAuth0JWTValidator_EmptyDomain(t *testing.T) {
	// URL parsing is lenient, https:/// still parses
	validator, err := NewAuth0JWTValidator("", "audience")
	assert.NoError(t, err)
	assert.NotNil(t, validator)
}

func TestAuth0JWTValidator_ValidateToken_InvalidJWT(t *testing.T) {
	validator, err := NewAuth0JWTValidator("test.auth0.com", "https://api.loan-ledger.app")
	assert.NoError(t, err)
	assert.NotNil(t, validator.validator)

	subject, err := validator.ValidateToken("invalid-token")
	assert.Error(t, err)
	assert.Empty(t, subject)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

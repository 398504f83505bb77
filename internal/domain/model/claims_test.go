package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenClaims_HasPermission(t *testing.T) {
	claims := &TokenClaims{Permissions: []string{"get:drinks-detail", "post:drinks"}}

	assert.True(t, claims.HasPermission("post:drinks"))
	assert.False(t, claims.HasPermission("POST:drinks"))
	assert.False(t, claims.HasPermission("post:drink"))
	assert.False(t, claims.HasPermission(""))

	var nilClaims *TokenClaims
	assert.False(t, nilClaims.HasPermission("post:drinks"))
}

func TestAuthErrorKind(t *testing.T) {
	cause := errors.New("kid not found")
	err := fmt.Errorf("verify: %w", NewAuthError(AuthUnknownSigningKey, cause))

	kind, ok := AuthErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, AuthUnknownSigningKey, kind)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "verify: UnknownSigningKey: kid not found", err.Error())

	_, ok = AuthErrorKind(errors.New("other"))
	assert.False(t, ok)

	assert.Equal(t, "MissingHeader", NewAuthError(AuthMissingHeader, nil).Error())
}

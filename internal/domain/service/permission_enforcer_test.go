package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
)

func TestPermissionEnforcer_Allowed(t *testing.T) {
	s := NewPermissionEnforcer()
	claims := &model.TokenClaims{Permissions: []string{"get:drinks-detail", "patch:drinks"}}

	tests := []struct {
		permission string
		want       bool
	}{
		{"get:drinks-detail", true},
		{"patch:drinks", true},
		{"post:drinks", false},
		{"Patch:drinks", false},
		{"patch:*", false},
		{"patch", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.permission, func(t *testing.T) {
			allowed, reason := s.Allowed(claims, tt.permission)
			assert.Equal(t, tt.want, allowed)
			if tt.want {
				assert.Empty(t, reason)
			} else {
				assert.Contains(t, reason, "is not granted")
			}
		})
	}
}

func TestPermissionEnforcer_Enforce(t *testing.T) {
	s := NewPermissionEnforcer()

	assert.NoError(t, s.Enforce(&model.TokenClaims{Permissions: []string{"delete:drinks"}}, "delete:drinks"))

	err := s.Enforce(&model.TokenClaims{Permissions: []string{}}, "delete:drinks")
	kind, ok := model.AuthErrorKind(err)
	assert.True(t, ok)
	assert.Equal(t, model.AuthPermissionDenied, kind)

	err = s.Enforce(nil, "delete:drinks")
	kind, _ = model.AuthErrorKind(err)
	assert.Equal(t, model.AuthPermissionDenied, kind)
}

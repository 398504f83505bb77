package service

import (
	"errors"
	"fmt"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
)

// PermissionEnforcer は permissions クレームに対する認可判定を行うドメインサービス。
// 階層・ワイルドカード・ロール展開は行わず、完全一致のメンバーシップのみを判定する。
type PermissionEnforcer struct{}

// NewPermissionEnforcer は新しい PermissionEnforcer を作成する。
func NewPermissionEnforcer() *PermissionEnforcer {
	return &PermissionEnforcer{}
}

// Allowed は claims が permission を持つかを返す。
// allowed が false の場合は reason に拒否理由が入る。
func (s *PermissionEnforcer) Allowed(claims *model.TokenClaims, permission string) (allowed bool, reason string) {
	if claims.HasPermission(permission) {
		return true, ""
	}
	return false, fmt.Sprintf("permission %q is not granted", permission)
}

// Enforce は権限が無い場合に PermissionDenied の AuthError を返す。
func (s *PermissionEnforcer) Enforce(claims *model.TokenClaims, permission string) error {
	if allowed, reason := s.Allowed(claims, permission); !allowed {
		return model.NewAuthError(model.AuthPermissionDenied, errors.New(reason))
	}
	return nil
}

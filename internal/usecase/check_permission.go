package usecase

import (
	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/service"
)

// CheckPermissionUseCase はパーミッション確認ユースケース。
type CheckPermissionUseCase struct {
	enforcer *service.PermissionEnforcer
}

// NewCheckPermissionUseCase は新しい CheckPermissionUseCase を作成する。
func NewCheckPermissionUseCase() *CheckPermissionUseCase {
	return &CheckPermissionUseCase{enforcer: service.NewPermissionEnforcer()}
}

// Enforce は権限が無い場合に PermissionDenied の AuthError を返す。
func (uc *CheckPermissionUseCase) Enforce(claims *model.TokenClaims, permission string) error {
	return uc.enforcer.Enforce(claims, permission)
}

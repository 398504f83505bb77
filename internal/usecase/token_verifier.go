package usecase

import (
	"context"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
)

// TokenVerifier はトークン検証のインターフェース。
// infra 層の JWKS 検証器がこのインターフェースを実装する。
// 失敗時は種別付きの *model.AuthError を返すこと。
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (*model.TokenClaims, error)
}

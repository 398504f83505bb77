package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/k1s0-platform/service-server-go-drinks/internal/adapter/presenter"
	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/telemetry"
	"github.com/k1s0-platform/service-server-go-drinks/internal/usecase"
)

const claimsKey = "claims"

// Authenticator はトークン検証と権限確認をルート単位で適用するミドルウェアを生成する。
type Authenticator struct {
	validateTokenUC   *usecase.ValidateTokenUseCase
	checkPermissionUC *usecase.CheckPermissionUseCase
	logger            *slog.Logger
	metrics           *telemetry.Metrics
}

// NewAuthenticator は新しい Authenticator を作成する。metrics は nil でもよい。
func NewAuthenticator(
	validateTokenUC *usecase.ValidateTokenUseCase,
	checkPermissionUC *usecase.CheckPermissionUseCase,
	logger *slog.Logger,
	metrics *telemetry.Metrics,
) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		validateTokenUC:   validateTokenUC,
		checkPermissionUC: checkPermissionUC,
		logger:            logger,
		metrics:           metrics,
	}
}

// Require は Bearer トークンを検証し、permission を持つ場合のみ後続のハンドラーへ進める。
// 失敗時は 401 と失敗種別を返し、リポジトリには到達させない。
func (a *Authenticator) Require(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		claims, err := a.validateTokenUC.Execute(ctx, c.GetHeader("Authorization"))
		if err == nil {
			err = a.checkPermissionUC.Enforce(claims, permission)
		}
		if err != nil {
			kind, ok := model.AuthErrorKind(err)
			if !ok {
				kind = model.AuthMalformedToken
			}
			a.metrics.RecordAuthFailure(string(kind))
			telemetry.LogWithTrace(ctx, a.logger).Info("request rejected",
				slog.String("kind", string(kind)),
				slog.String("permission", permission),
				slog.String("path", c.Request.URL.Path),
				slog.String("error", err.Error()),
			)
			presenter.WriteAuthError(c, kind)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// GetClaims はコンテキストから検証済みの Claims を取得する。
func GetClaims(c *gin.Context) *model.TokenClaims {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil
	}
	claims, _ := v.(*model.TokenClaims)
	return claims
}

package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/telemetry"
	"github.com/k1s0-platform/service-server-go-drinks/internal/usecase"
)

type claimsContextKey struct{}

// MethodPermissions はフルメソッド名ごとに要求する権限。載っていないメソッドは認証不要。
var MethodPermissions = map[string]string{
	MethodListDrinksDetail: "get:drinks-detail",
	MethodCreateDrink:      "post:drinks",
	MethodUpdateDrink:      "patch:drinks",
	MethodDeleteDrink:      "delete:drinks",
}

// AuthUnaryInterceptor は authorization メタデータのトークンを検証し、メソッドの権限を確認する。
// 失敗時は Unauthenticated を返し、ハンドラーは呼ばない。
func AuthUnaryInterceptor(
	validateTokenUC *usecase.ValidateTokenUseCase,
	checkPermissionUC *usecase.CheckPermissionUseCase,
	permissions map[string]string,
	logger *slog.Logger,
	metrics *telemetry.Metrics,
) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		permission, required := permissions[info.FullMethod]
		if !required {
			return handler(ctx, req)
		}

		claims, err := validateTokenUC.Execute(ctx, authorizationFromMetadata(ctx))
		if err == nil {
			err = checkPermissionUC.Enforce(claims, permission)
		}
		if err != nil {
			kind, ok := model.AuthErrorKind(err)
			if !ok {
				kind = model.AuthMalformedToken
			}
			metrics.RecordAuthFailure(string(kind))
			telemetry.LogWithTrace(ctx, logger).Info("rpc rejected",
				slog.String("kind", string(kind)),
				slog.String("method", info.FullMethod),
				slog.String("error", err.Error()),
			)
			return nil, status.Error(codes.Unauthenticated, "unauthorized: "+string(kind))
		}

		return handler(context.WithValue(ctx, claimsContextKey{}, claims), req)
	}
}

// ClaimsFromContext はインターセプターが検証した Claims を取得する。
func ClaimsFromContext(ctx context.Context) *model.TokenClaims {
	claims, _ := ctx.Value(claimsContextKey{}).(*model.TokenClaims)
	return claims
}

func subjectFromContext(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Sub
	}
	return ""
}

func authorizationFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
)

// ValidateTokenUseCase は Authorization ヘッダーからトークンを取り出して検証するユースケース。
type ValidateTokenUseCase struct {
	verifier TokenVerifier
}

// NewValidateTokenUseCase は新しい ValidateTokenUseCase を作成する。
func NewValidateTokenUseCase(verifier TokenVerifier) *ValidateTokenUseCase {
	return &ValidateTokenUseCase{verifier: verifier}
}

// Execute は Authorization ヘッダーの値を検証し、Claims を返却する。
func (uc *ValidateTokenUseCase) Execute(ctx context.Context, authorizationHeader string) (*model.TokenClaims, error) {
	tokenString, err := ExtractBearerToken(authorizationHeader)
	if err != nil {
		return nil, err
	}

	claims, err := uc.verifier.VerifyToken(ctx, tokenString)
	if err != nil {
		if _, ok := model.AuthErrorKind(err); ok {
			return nil, err
		}
		return nil, model.NewAuthError(model.AuthMalformedToken, err)
	}
	return claims, nil
}

// ExtractBearerToken は "Bearer <token>" 形式のヘッダー値からトークンを取り出す。
// スキーム名は大文字小文字を区別しない。Basic など別スキームの場合は MissingHeader を返す。
func ExtractBearerToken(authorizationHeader string) (string, error) {
	if authorizationHeader == "" {
		return "", model.NewAuthError(model.AuthMissingHeader, errors.New("authorization header is expected"))
	}

	parts := strings.Split(authorizationHeader, " ")
	if !strings.EqualFold(parts[0], "Bearer") {
		// 別スキームの資格情報はベアラートークンが無いものとして扱う
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return "", model.NewAuthError(model.AuthMissingHeader, errors.New("bearer token is expected"))
		}
		return "", model.NewAuthError(model.AuthMalformedHeader, errors.New("authorization header must start with Bearer"))
	}
	if len(parts) == 1 || parts[1] == "" {
		return "", model.NewAuthError(model.AuthMalformedHeader, errors.New("token not found"))
	}
	if len(parts) > 2 {
		return "", model.NewAuthError(model.AuthMalformedHeader, errors.New("authorization header must be bearer token"))
	}
	return parts[1], nil
}

package model

import "errors"

// AuthFailureKind はトークン検証・認可失敗の種別。
type AuthFailureKind string

const (
	AuthMissingHeader           AuthFailureKind = "MissingHeader"
	AuthMalformedHeader         AuthFailureKind = "MalformedHeader"
	AuthMalformedToken          AuthFailureKind = "MalformedToken"
	AuthUnknownSigningKey       AuthFailureKind = "UnknownSigningKey"
	AuthInvalidSignature        AuthFailureKind = "InvalidSignature"
	AuthTokenExpired            AuthFailureKind = "TokenExpired"
	AuthInvalidClaims           AuthFailureKind = "InvalidClaims"
	AuthPermissionsClaimMissing AuthFailureKind = "PermissionsClaimMissing"
	AuthPermissionDenied        AuthFailureKind = "PermissionDenied"
)

// AuthError は種別付きの認証エラー。Err は内部ログ用で、クライアントには返さない。
type AuthError struct {
	Kind AuthFailureKind
	Err  error
}

// NewAuthError は AuthError を生成する。
func NewAuthError(kind AuthFailureKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AuthErrorKind は err チェーンから認証エラー種別を取り出す。
func AuthErrorKind(err error) (AuthFailureKind, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind, true
	}
	return "", false
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
)

// PermissionsClaim は権限一覧を保持するクレーム名。
const PermissionsClaim = "permissions"

// KeyLookup は kid から検証鍵を引くインターフェース。KeySetCache が実装する。
type KeyLookup interface {
	LookupKey(ctx context.Context, kid string) (jwk.Key, error)
}

// VerifierConfig は TokenVerifier の設定。
type VerifierConfig struct {
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

// TokenVerifier は署名済みトークンを検証し、クレームを返す。
type TokenVerifier struct {
	keys KeyLookup
	cfg  VerifierConfig
	now  func() time.Time
}

// NewTokenVerifier は TokenVerifier を生成する。
func NewTokenVerifier(keys KeyLookup, cfg VerifierConfig) *TokenVerifier {
	return &TokenVerifier{keys: keys, cfg: cfg, now: time.Now}
}

// VerifyToken はトークン文字列を以下の順に検証する。
// デコードと kid の取り出し、鍵の照合、署名、標準クレーム、permissions クレーム。
// 失敗時は種別付きの *model.AuthError を返す。
func (v *TokenVerifier) VerifyToken(ctx context.Context, tokenString string) (*model.TokenClaims, error) {
	raw := []byte(tokenString)

	if strings.Count(tokenString, ".") != 2 {
		return nil, model.NewAuthError(model.AuthMalformedToken, errors.New("token is not a compact JWS"))
	}
	msg, err := jws.Parse(raw)
	if err != nil {
		return nil, model.NewAuthError(model.AuthMalformedToken, err)
	}
	sigs := msg.Signatures()
	if len(sigs) != 1 {
		return nil, model.NewAuthError(model.AuthMalformedToken, fmt.Errorf("expected one signature, got %d", len(sigs)))
	}
	headers := sigs[0].ProtectedHeaders()
	kid := headers.KeyID()
	if kid == "" {
		return nil, model.NewAuthError(model.AuthMalformedToken, errors.New("kid header is missing"))
	}

	key, err := v.keys.LookupKey(ctx, kid)
	if err != nil {
		return nil, model.NewAuthError(model.AuthUnknownSigningKey, err)
	}

	alg := headers.Algorithm()
	if err := checkAlgorithm(alg, key); err != nil {
		return nil, model.NewAuthError(model.AuthInvalidSignature, err)
	}
	if _, err := jws.Verify(raw, jws.WithKey(alg, key)); err != nil {
		return nil, model.NewAuthError(model.AuthInvalidSignature, err)
	}

	// 署名は検証済みのため、ここではクレームの取り出しのみ行う
	token, err := jwt.Parse(raw, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, model.NewAuthError(model.AuthMalformedToken, err)
	}

	err = jwt.Validate(token,
		jwt.WithClock(jwt.ClockFunc(v.now)),
		jwt.WithAcceptableSkew(v.cfg.ClockSkew),
		jwt.WithRequiredClaim(jwt.ExpirationKey),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithAudience(v.cfg.Audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, model.NewAuthError(model.AuthTokenExpired, err)
		}
		return nil, model.NewAuthError(model.AuthInvalidClaims, err)
	}

	permissions, err := extractPermissions(token)
	if err != nil {
		return nil, model.NewAuthError(model.AuthPermissionsClaimMissing, err)
	}

	all, err := token.AsMap(ctx)
	if err != nil {
		return nil, model.NewAuthError(model.AuthMalformedToken, err)
	}

	return &model.TokenClaims{
		Sub:         token.Subject(),
		Iss:         token.Issuer(),
		Aud:         token.Audience(),
		Exp:         token.Expiration(),
		Permissions: permissions,
		Raw:         all,
	}, nil
}

// checkAlgorithm は RSA 系の署名アルゴリズムのみを許可し、鍵が宣言するアルゴリズムと照合する。
func checkAlgorithm(alg jwa.SignatureAlgorithm, key jwk.Key) error {
	switch alg {
	case jwa.RS256, jwa.RS384, jwa.RS512, jwa.PS256, jwa.PS384, jwa.PS512:
	default:
		return fmt.Errorf("algorithm %q is not allowed", alg)
	}
	if key.KeyType() != jwa.RSA {
		return fmt.Errorf("key type %q is not RSA", key.KeyType())
	}
	if declared := key.Algorithm(); declared != nil && declared.String() != "" && declared.String() != alg.String() {
		return fmt.Errorf("algorithm %q does not match key algorithm %q", alg, declared)
	}
	return nil
}

// extractPermissions は permissions クレームを文字列スライスとして取り出す。
func extractPermissions(token jwt.Token) ([]string, error) {
	v, ok := token.Get(PermissionsClaim)
	if !ok {
		return nil, errors.New("permissions claim is missing")
	}

	switch perms := v.(type) {
	case []string:
		return perms, nil
	case []interface{}:
		out := make([]string, 0, len(perms))
		for _, p := range perms {
			s, ok := p.(string)
			if !ok {
				return nil, fmt.Errorf("permissions claim contains a non-string value: %v", p)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("permissions claim is not a list: %T", v)
	}
}

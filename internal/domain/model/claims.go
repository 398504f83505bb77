package model

import "time"

// TokenClaims は検証済みトークンのクレームを表す。リクエスト単位で生成され、保存されない。
type TokenClaims struct {
	Sub         string                 `json:"sub"`
	Iss         string                 `json:"iss"`
	Aud         []string               `json:"aud"`
	Exp         time.Time              `json:"exp"`
	Permissions []string               `json:"permissions"`
	Raw         map[string]interface{} `json:"-"`
}

// HasPermission は permissions クレームに指定文字列が完全一致で含まれるか判定する。
func (c *TokenClaims) HasPermission(permission string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrKeyNotFound は kid に一致する鍵が鍵セットに無い場合のエラー。
	ErrKeyNotFound = errors.New("signing key not found")

	// ErrKeySetUnavailable は鍵セットを一度も取得できていない場合のエラー。
	ErrKeySetUnavailable = errors.New("signing key set unavailable")
)

// JWKSFetcher は JWKS エンドポイントからの鍵取得を抽象化するインターフェース。
// テスト時にモックに差し替え可能。
type JWKSFetcher interface {
	FetchKeys(ctx context.Context, jwksURL string) (jwk.Set, error)
}

// HTTPJWKSFetcher は HTTP 経由で JWKS を取得するデフォルト実装。
type HTTPJWKSFetcher struct {
	Client *http.Client
}

// FetchKeys は指定 URL から JWKS を HTTP GET で取得する。
func (f *HTTPJWKSFetcher) FetchKeys(ctx context.Context, jwksURL string) (jwk.Set, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	return jwk.Fetch(ctx, jwksURL, jwk.WithHTTPClient(client))
}

// KeySetCacheConfig は KeySetCache の設定。
type KeySetCacheConfig struct {
	JWKSURL string
	// TTL を過ぎたスナップショットは次の参照時に再取得する。
	TTL time.Duration
	// FetchTimeout は 1 回の取得に許す最大時間。
	FetchTimeout time.Duration
	// MinRefreshInterval は kid 不一致による再取得の最小間隔。
	MinRefreshInterval time.Duration
	// OnRefresh は取得のたびに結果を受け取る。nil でもよい。
	OnRefresh func(err error)
}

// keySnapshot は取得済み鍵セットの不変スナップショット。
type keySnapshot struct {
	set       jwk.Set
	fetchedAt time.Time
}

// KeySetCache は署名鍵セットの読み取りスルーキャッシュ。
// 読み取りはロックを取らずスナップショットを参照し、更新はスナップショットを丸ごと差し替える。
// 同時に発生した再取得は singleflight で 1 回にまとめる。
type KeySetCache struct {
	cfg     KeySetCacheConfig
	fetcher JWKSFetcher
	logger  *slog.Logger
	now     func() time.Time

	snapshot atomic.Pointer[keySnapshot]
	group    singleflight.Group

	mu          sync.Mutex
	lastAttempt time.Time
}

// NewKeySetCache は KeySetCache を生成する。fetcher が nil の場合は HTTPJWKSFetcher を使う。
func NewKeySetCache(cfg KeySetCacheConfig, fetcher JWKSFetcher, logger *slog.Logger) *KeySetCache {
	if fetcher == nil {
		fetcher = &HTTPJWKSFetcher{Client: &http.Client{Timeout: cfg.FetchTimeout}}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &KeySetCache{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// Refresh は鍵セットを再取得してスナップショットを差し替える。
// 同時呼び出しは 1 回の取得にまとめられる。
func (c *KeySetCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.lastAttempt = c.now()
	c.mu.Unlock()

	_, err, _ := c.group.Do("jwks", func() (interface{}, error) {
		// 呼び出し元のキャンセルを他の待機者に波及させない
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.FetchTimeout)
		defer cancel()

		set, err := c.fetcher.FetchKeys(fetchCtx, c.cfg.JWKSURL)
		if c.cfg.OnRefresh != nil {
			c.cfg.OnRefresh(err)
		}
		if err != nil {
			return nil, fmt.Errorf("JWKS fetch failed: %w", err)
		}
		c.snapshot.Store(&keySnapshot{set: set, fetchedAt: c.now()})
		c.logger.Debug("signing key set refreshed", slog.String("jwks_url", c.cfg.JWKSURL), slog.Int("keys", set.Len()))
		return nil, nil
	})
	return err
}

// LookupKey は kid に一致する公開鍵を返す。
// スナップショットが TTL を過ぎていれば再取得し、失敗した場合は古いスナップショットを使い続ける。
// TTL による再取得も kid 不一致による再取得も MinRefreshInterval に 1 回までとする。
// kid が見つからない場合は 1 回だけ再取得してから ErrKeyNotFound を返す。
func (c *KeySetCache) LookupKey(ctx context.Context, kid string) (jwk.Key, error) {
	snap := c.snapshot.Load()

	if snap == nil || (c.now().Sub(snap.fetchedAt) >= c.cfg.TTL && c.refreshAllowed()) {
		if err := c.Refresh(ctx); err != nil {
			if snap == nil {
				return nil, fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
			}
			c.logger.Warn("JWKS refresh failed, serving stale key set", slog.String("error", err.Error()))
		}
		snap = c.snapshot.Load()
	}

	if key, ok := snap.set.LookupKeyID(kid); ok {
		return key, nil
	}

	if !c.refreshAllowed() {
		return nil, fmt.Errorf("%w: kid=%s", ErrKeyNotFound, kid)
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("%w: kid=%s: %v", ErrKeyNotFound, kid, err)
	}

	if key, ok := c.snapshot.Load().set.LookupKeyID(kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: kid=%s", ErrKeyNotFound, kid)
}

// refreshAllowed は kid 不一致による再取得を行ってよいかを返す。
func (c *KeySetCache) refreshAllowed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Sub(c.lastAttempt) >= c.cfg.MinRefreshInterval
}

// Healthy は鍵セットが利用可能かを確認する。未取得の場合は取得を試みる。
func (c *KeySetCache) Healthy(ctx context.Context) error {
	if c.snapshot.Load() != nil {
		return nil
	}
	return c.Refresh(ctx)
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config はアプリケーションの設定を表す。
type Config struct {
	App           AppConfig           `yaml:"app"`
	Server        ServerConfig        `yaml:"server"`
	GRPC          GRPCConfig          `yaml:"grpc"`
	Database      DatabaseConfig      `yaml:"database"`
	Auth          AuthConfig          `yaml:"auth"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Compat        CompatConfig        `yaml:"compat"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// AppConfig はアプリケーション情報の設定。
type AppConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	Tier        string `yaml:"tier"`
}

// ServerConfig は REST サーバーの設定。
type ServerConfig struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// GRPCConfig は gRPC サーバーの設定。Port が 0 の場合は起動しない。
type GRPCConfig struct {
	Port int `yaml:"port" validate:"min=0,max=65535"`
}

// DatabaseConfig はデータベースの設定。
type DatabaseConfig struct {
	Driver          string        `yaml:"driver" validate:"omitempty,oneof=postgres pgx"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	Seed            bool          `yaml:"seed"`
}

// AuthConfig はトークン検証の設定。
type AuthConfig struct {
	Domain                 string        `yaml:"domain"`
	Issuer                 string        `yaml:"issuer"`
	Audience               string        `yaml:"audience" validate:"required"`
	JWKSURI                string        `yaml:"jwks_uri"`
	JWKSCacheTTL           time.Duration `yaml:"jwks_cache_ttl"`
	JWKSFetchTimeout       time.Duration `yaml:"jwks_fetch_timeout"`
	JWKSMinRefreshInterval time.Duration `yaml:"jwks_min_refresh_interval"`
	ClockSkew              time.Duration `yaml:"clock_skew"`
}

// KafkaConfig は Kafka の設定。Brokers が空の場合はイベント配信を行わない。
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// CompatConfig は旧 API との互換挙動の設定。
type CompatConfig struct {
	// WriteErrorsAs405 が true の場合、書き込み系の失敗をすべて 405 で返す。
	WriteErrorsAs405 bool `yaml:"write_errors_as_405"`
	// EmptyListNotFound が true の場合、一覧が空のとき 404 を返す。
	EmptyListNotFound bool `yaml:"empty_list_not_found"`
}

// ObservabilityConfig はログ・トレースの設定。
type ObservabilityConfig struct {
	LogLevel      string  `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	TraceEndpoint string  `yaml:"trace_endpoint"`
	SampleRate    float64 `yaml:"sample_rate" validate:"min=0,max=1"`
}

// Load は設定ファイルから Config を読み込む。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDerived()

	return cfg, nil
}

// Default はデフォルト値を設定した Config を返す。
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:       "postgres",
			Port:         5432,
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Auth: AuthConfig{
			JWKSCacheTTL:           time.Hour,
			JWKSFetchTimeout:       5 * time.Second,
			JWKSMinRefreshInterval: 10 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic: "k1s0.service.drinks.changed.v1",
		},
		Compat: CompatConfig{
			WriteErrorsAs405: true,
		},
		Observability: ObservabilityConfig{
			LogLevel:   "info",
			SampleRate: 1.0,
		},
	}
}

// applyDerived は auth.domain から issuer と JWKS URI を補完する。
func (c *Config) applyDerived() {
	domain := strings.TrimSuffix(strings.TrimPrefix(c.Auth.Domain, "https://"), "/")
	if domain == "" {
		return
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "https://" + domain + "/"
	}
	if c.Auth.JWKSURI == "" {
		c.Auth.JWKSURI = "https://" + domain + "/.well-known/jwks.json"
	}
}

// Validate は設定値のバリデーションを行う。
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if c.Auth.Issuer == "" {
		return fmt.Errorf("auth.issuer or auth.domain is required")
	}
	if c.Auth.JWKSURI == "" {
		return fmt.Errorf("auth.jwks_uri or auth.domain is required")
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// DSN はデータベース接続文字列を返す。
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Enabled は変更イベントを配信するかどうかを返す。
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

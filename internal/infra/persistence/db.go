package persistence

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/config"
	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/persistence/migrations"
)

// DB はデータベース接続を表す。sqlx.DB をラップする。
type DB struct {
	conn *sqlx.DB
}

// NewDB はデータベース接続プールを作成する。driver は "postgres"（lib/pq）または "pgx"。
func NewDB(cfg config.DatabaseConfig) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "postgres"
	}

	conn, err := sqlx.Open(driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return &DB{conn: conn}, nil
}

// NewDBFromConn は既存の sqlx.DB から DB を作成する。
func NewDBFromConn(conn *sqlx.DB) *DB {
	return &DB{conn: conn}
}

// Conn は内部の sqlx.DB を返す。
func (db *DB) Conn() *sqlx.DB {
	return db.conn
}

// gooseUp はテストで差し替えるための goose.UpContext。
var gooseUp = func(ctx context.Context, conn *sql.DB, dir string) error {
	return goose.UpContext(ctx, conn, dir)
}

// Migrate は埋め込みマイグレーションを適用する。
func (db *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := gooseUp(ctx, db.conn.DB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Healthy はデータベースへの接続を確認する。
func (db *DB) Healthy(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close はデータベース接続を閉じる。
func (db *DB) Close() error {
	return db.conn.Close()
}

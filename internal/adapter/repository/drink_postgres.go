package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/repository"
	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/persistence"
)

// drinkRow は drinks テーブルの 1 行。recipe はシリアライズ済みの JSON テキスト。
type drinkRow struct {
	ID     int64  `db:"id"`
	Title  string `db:"title"`
	Recipe string `db:"recipe"`
}

func (r *drinkRow) toModel() (*model.Drink, error) {
	recipe, err := model.ParseRecipe([]byte(r.Recipe))
	if err != nil {
		return nil, fmt.Errorf("drink %d has a corrupt recipe: %w", r.ID, err)
	}
	return &model.Drink{ID: r.ID, Title: r.Title, Recipe: recipe}, nil
}

// DrinkPostgresRepository は DrinkRepository の PostgreSQL 実装。
type DrinkPostgresRepository struct {
	db *persistence.DB
}

// NewDrinkPostgresRepository は新しい DrinkPostgresRepository を作成する。
func NewDrinkPostgresRepository(db *persistence.DB) *DrinkPostgresRepository {
	return &DrinkPostgresRepository{db: db}
}

// List は全ドリンクを id 昇順で取得する。
func (r *DrinkPostgresRepository) List(ctx context.Context) ([]*model.Drink, error) {
	query := `SELECT id, title, recipe FROM drinks ORDER BY id ASC`

	var rows []drinkRow
	if err := r.db.Conn().SelectContext(ctx, &rows, query); err != nil {
		return nil, classifyError("failed to list drinks", err)
	}

	drinks := make([]*model.Drink, 0, len(rows))
	for i := range rows {
		d, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		drinks = append(drinks, d)
	}
	return drinks, nil
}

// FindByID は id でドリンクを取得する。
func (r *DrinkPostgresRepository) FindByID(ctx context.Context, id int64) (*model.Drink, error) {
	query := `SELECT id, title, recipe FROM drinks WHERE id = $1`

	var row drinkRow
	if err := r.db.Conn().GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", repository.ErrNotFound, id)
		}
		return nil, classifyError("failed to get drink", err)
	}
	return row.toModel()
}

// Create はドリンクを作成し、採番された id を設定する。
func (r *DrinkPostgresRepository) Create(ctx context.Context, drink *model.Drink) error {
	recipe, err := model.MarshalRecipe(drink.Recipe)
	if err != nil {
		return err
	}

	query := `INSERT INTO drinks (title, recipe) VALUES ($1, $2) RETURNING id`

	if err := r.db.Conn().QueryRowxContext(ctx, query, drink.Title, recipe).Scan(&drink.ID); err != nil {
		return classifyError("failed to insert drink", err)
	}
	return nil
}

// Update はタイトルとレシピを上書きする。
func (r *DrinkPostgresRepository) Update(ctx context.Context, drink *model.Drink) error {
	recipe, err := model.MarshalRecipe(drink.Recipe)
	if err != nil {
		return err
	}

	query := `UPDATE drinks SET title = $1, recipe = $2 WHERE id = $3`

	result, err := r.db.Conn().ExecContext(ctx, query, drink.Title, recipe, drink.ID)
	if err != nil {
		return classifyError("failed to update drink", err)
	}
	return checkAffected(result, drink.ID)
}

// Delete はドリンクを削除する。
func (r *DrinkPostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM drinks WHERE id = $1`

	result, err := r.db.Conn().ExecContext(ctx, query, id)
	if err != nil {
		return classifyError("failed to delete drink", err)
	}
	return checkAffected(result, id)
}

// Count は登録済みドリンク数を返す。
func (r *DrinkPostgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Conn().GetContext(ctx, &count, `SELECT COUNT(*) FROM drinks`); err != nil {
		return 0, classifyError("failed to count drinks", err)
	}
	return count, nil
}

func checkAffected(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id=%d", repository.ErrNotFound, id)
	}
	return nil
}

// classifyError はドライバーのエラーを制約違反・接続障害に分類してラップする。
// lib/pq と pgx の両方のエラー型を扱う。
func classifyError(msg string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return wrapBySQLState(msg, string(pqErr.Code), err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return wrapBySQLState(msg, pgErr.Code, err)
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", msg, repository.ErrConnection, err)
	}

	return fmt.Errorf("%s: %w", msg, err)
}

// wrapBySQLState は SQLSTATE のクラスで分類する。
// 23: integrity constraint violation, 08: connection exception, 57P: operator intervention
func wrapBySQLState(msg, code string, err error) error {
	switch {
	case strings.HasPrefix(code, "23"):
		return fmt.Errorf("%s: %w: %w", msg, repository.ErrConstraintViolation, err)
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P"):
		return fmt.Errorf("%s: %w: %w", msg, repository.ErrConnection, err)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

package repository

import (
	"context"
	"errors"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
)

var (
	// ErrNotFound は対象のドリンクが存在しない場合のエラー。
	ErrNotFound = errors.New("drink not found")

	// ErrConstraintViolation は一意制約・NOT NULL 制約などに違反した場合のエラー。
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrConnection は DB への接続障害・タイムアウトのエラー。
	ErrConnection = errors.New("database connection fault")
)

// DrinkRepository はドリンクの永続化インターフェース。
type DrinkRepository interface {
	// List は全ドリンクを id 昇順で取得する。
	List(ctx context.Context) ([]*model.Drink, error)

	// FindByID は id でドリンクを取得する。存在しない場合は ErrNotFound。
	FindByID(ctx context.Context, id int64) (*model.Drink, error)

	// Create はドリンクを作成し、採番された id を drink.ID に設定する。
	Create(ctx context.Context, drink *model.Drink) error

	// Update はタイトルとレシピを上書きする。存在しない場合は ErrNotFound。
	Update(ctx context.Context, drink *model.Drink) error

	// Delete はドリンクを削除する。存在しない場合は ErrNotFound。
	Delete(ctx context.Context, id int64) error

	// Count は登録済みドリンク数を返す。
	Count(ctx context.Context) (int, error)
}

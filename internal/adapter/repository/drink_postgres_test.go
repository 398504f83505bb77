package repository

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/repository"
	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/persistence"
)

func newTestRepo(t *testing.T) (*DrinkPostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := persistence.NewDBFromConn(sqlx.NewDb(mockDB, "postgres"))
	return NewDrinkPostgresRepository(db), mock
}

func TestList_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	rows := sqlmock.NewRows([]string{"id", "title", "recipe"}).
		AddRow(1, "water", `[{"name":"water","color":"blue","parts":1}]`).
		AddRow(2, "latte", `[{"name":"milk","color":"grey","parts":3},{"name":"espresso","color":"brown","parts":1}]`)
	mock.ExpectQuery(`SELECT id, title, recipe FROM drinks ORDER BY id ASC`).WillReturnRows(rows)

	drinks, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, drinks, 2)
	assert.Equal(t, int64(1), drinks[0].ID)
	assert.Equal(t, "latte", drinks[1].Title)
	assert.Equal(t, model.Ingredient{Name: "espresso", Color: "brown", Parts: 1}, drinks[1].Recipe[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_Empty(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT id, title, recipe FROM drinks`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "recipe"}))

	drinks, err := repo.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, drinks)
	assert.Empty(t, drinks)
}

func TestList_LegacySingleObjectRecipe(t *testing.T) {
	repo, mock := newTestRepo(t)

	rows := sqlmock.NewRows([]string{"id", "title", "recipe"}).
		AddRow(1, "water", `{"name":"water","color":"blue","parts":1}`)
	mock.ExpectQuery(`SELECT id, title, recipe FROM drinks`).WillReturnRows(rows)

	drinks, err := repo.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []model.Ingredient{{Name: "water", Color: "blue", Parts: 1}}, drinks[0].Recipe)
}

func TestList_CorruptRecipe(t *testing.T) {
	repo, mock := newTestRepo(t)

	rows := sqlmock.NewRows([]string{"id", "title", "recipe"}).AddRow(1, "water", `not json`)
	mock.ExpectQuery(`SELECT id, title, recipe FROM drinks`).WillReturnRows(rows)

	_, err := repo.List(context.Background())

	assert.ErrorIs(t, err, model.ErrInvalidRecipe)
}

func TestList_ConnectionFault(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT id, title, recipe FROM drinks`).
		WillReturnError(&net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")})

	_, err := repo.List(context.Background())

	assert.ErrorIs(t, err, repository.ErrConnection)
}

func TestFindByID_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	rows := sqlmock.NewRows([]string{"id", "title", "recipe"}).
		AddRow(7, "flat white", `[{"name":"milk","color":"grey","parts":2}]`)
	mock.ExpectQuery(`SELECT id, title, recipe FROM drinks WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	drink, err := repo.FindByID(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "flat white", drink.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT id, title, recipe FROM drinks WHERE id = \$1`).
		WithArgs(int64(999999)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "recipe"}))

	drink, err := repo.FindByID(context.Background(), 999999)

	assert.Nil(t, drink)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	drink := &model.Drink{Title: "tea", Recipe: []model.Ingredient{{Name: "water", Color: "blue", Parts: 1}}}

	mock.ExpectQuery(`INSERT INTO drinks \(title, recipe\) VALUES \(\$1, \$2\) RETURNING id`).
		WithArgs("tea", `[{"name":"water","color":"blue","parts":1}]`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	err := repo.Create(context.Background(), drink)

	require.NoError(t, err)
	assert.Equal(t, int64(12), drink.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateTitle(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`INSERT INTO drinks`).
		WillReturnError(&pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "drinks_title_key"`})

	err := repo.Create(context.Background(), &model.Drink{Title: "water", Recipe: []model.Ingredient{{Name: "water", Color: "blue", Parts: 1}}})

	assert.ErrorIs(t, err, repository.ErrConstraintViolation)
	assert.Contains(t, err.Error(), "failed to insert drink")
}

func TestCreate_PgxConstraintViolation(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`INSERT INTO drinks`).
		WillReturnError(&pgconn.PgError{Code: "23502", Message: `null value in column "title"`})

	err := repo.Create(context.Background(), &model.Drink{Title: "x", Recipe: []model.Ingredient{{Name: "a", Color: "b", Parts: 1}}})

	assert.ErrorIs(t, err, repository.ErrConstraintViolation)
}

func TestCreate_ConnectionException(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`INSERT INTO drinks`).
		WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	err := repo.Create(context.Background(), &model.Drink{Title: "x", Recipe: []model.Ingredient{{Name: "a", Color: "b", Parts: 1}}})

	assert.ErrorIs(t, err, repository.ErrConnection)
	assert.False(t, errors.Is(err, repository.ErrConstraintViolation))
}

func TestUpdate_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	drink := &model.Drink{ID: 7, Title: "cortado", Recipe: []model.Ingredient{{Name: "milk", Color: "grey", Parts: 1}}}

	mock.ExpectExec(`UPDATE drinks SET title = \$1, recipe = \$2 WHERE id = \$3`).
		WithArgs("cortado", `[{"name":"milk","color":"grey","parts":1}]`, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), drink)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`UPDATE drinks`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &model.Drink{ID: 999999, Title: "ghost", Recipe: []model.Ingredient{}})

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDelete_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`DELETE FROM drinks WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`DELETE FROM drinks WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 3), repository.ErrNotFound)
}

func TestDelete_ThenUpdate_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`DELETE FROM drinks WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE drinks`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 4))
	err := repo.Update(context.Background(), &model.Drink{ID: 4, Title: "tea", Recipe: []model.Ingredient{}})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCount(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM drinks`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestClassifyError_Unclassified(t *testing.T) {
	err := classifyError("failed", errors.New("syntax error"))

	assert.False(t, errors.Is(err, repository.ErrConnection))
	assert.False(t, errors.Is(err, repository.ErrConstraintViolation))
	assert.Equal(t, "failed: syntax error", err.Error())

	err = classifyError("failed", context.DeadlineExceeded)
	assert.ErrorIs(t, err, repository.ErrConnection)
}

package usecase

import (
	"context"
	"fmt"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/repository"
)

// ListDrinksUseCase はドリンク一覧取得ユースケース。
type ListDrinksUseCase struct {
	drinkRepo repository.DrinkRepository
}

// NewListDrinksUseCase は新しい ListDrinksUseCase を作成する。
func NewListDrinksUseCase(drinkRepo repository.DrinkRepository) *ListDrinksUseCase {
	return &ListDrinksUseCase{drinkRepo: drinkRepo}
}

// Execute は全ドリンクを id 昇順で返す。
func (uc *ListDrinksUseCase) Execute(ctx context.Context) ([]*model.Drink, error) {
	drinks, err := uc.drinkRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drinks: %w", err)
	}
	if drinks == nil {
		drinks = []*model.Drink{}
	}
	return drinks, nil
}

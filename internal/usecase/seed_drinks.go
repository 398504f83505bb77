package usecase

import (
	"context"
	"fmt"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/repository"
)

// SeedDrinksUseCase は空のテーブルに初期データを投入するユースケース。
type SeedDrinksUseCase struct {
	drinkRepo repository.DrinkRepository
}

// NewSeedDrinksUseCase は新しい SeedDrinksUseCase を作成する。
func NewSeedDrinksUseCase(drinkRepo repository.DrinkRepository) *SeedDrinksUseCase {
	return &SeedDrinksUseCase{drinkRepo: drinkRepo}
}

// DefaultSeedDrinks は初期投入するドリンク。
func DefaultSeedDrinks() []*model.Drink {
	return []*model.Drink{
		{
			Title:  "water",
			Recipe: []model.Ingredient{{Name: "water", Color: "blue", Parts: 1}},
		},
	}
}

// Execute はドリンクが 1 件も無い場合にのみ初期データを投入し、投入件数を返す。
func (uc *SeedDrinksUseCase) Execute(ctx context.Context) (int, error) {
	count, err := uc.drinkRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count drinks: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	seeded := 0
	for _, d := range DefaultSeedDrinks() {
		if err := uc.drinkRepo.Create(ctx, d); err != nil {
			return seeded, fmt.Errorf("failed to seed drink %q: %w", d.Title, err)
		}
		seeded++
	}
	return seeded, nil
}

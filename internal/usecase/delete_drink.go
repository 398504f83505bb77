package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/repository"
)

// DeleteDrinkUseCase はドリンク削除ユースケース。
type DeleteDrinkUseCase struct {
	drinkRepo repository.DrinkRepository
	publisher DrinkChangeEventPublisher
	logger    *slog.Logger
}

// NewDeleteDrinkUseCase は新しい DeleteDrinkUseCase を作成する。
func NewDeleteDrinkUseCase(drinkRepo repository.DrinkRepository, publisher DrinkChangeEventPublisher, logger *slog.Logger) *DeleteDrinkUseCase {
	return &DeleteDrinkUseCase{
		drinkRepo: drinkRepo,
		publisher: publisher,
		logger:    orDefault(logger),
	}
}

// DeleteDrinkInput はドリンク削除の入力パラメータ。
type DeleteDrinkInput struct {
	ID        int64
	DeletedBy string
}

// Execute はドリンクを削除し、削除した id を返す。
func (uc *DeleteDrinkUseCase) Execute(ctx context.Context, input DeleteDrinkInput) (int64, error) {
	if err := uc.drinkRepo.Delete(ctx, input.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrDrinkNotFound
		}
		return 0, fmt.Errorf("failed to delete drink: %w", err)
	}

	publishChange(ctx, uc.logger, uc.publisher, &model.Drink{ID: input.ID}, model.ChangeTypeDeleted, input.DeletedBy)
	return input.ID, nil
}

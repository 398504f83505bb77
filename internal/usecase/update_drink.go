package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/repository"
)

// UpdateDrinkUseCase はドリンク更新ユースケース。
type UpdateDrinkUseCase struct {
	drinkRepo repository.DrinkRepository
	publisher DrinkChangeEventPublisher
	logger    *slog.Logger
}

// NewUpdateDrinkUseCase は新しい UpdateDrinkUseCase を作成する。
func NewUpdateDrinkUseCase(drinkRepo repository.DrinkRepository, publisher DrinkChangeEventPublisher, logger *slog.Logger) *UpdateDrinkUseCase {
	return &UpdateDrinkUseCase{
		drinkRepo: drinkRepo,
		publisher: publisher,
		logger:    orDefault(logger),
	}
}

// UpdateDrinkInput はドリンク更新の入力パラメータ。
// Title が nil、Recipe が nil の項目は既存の値を維持する。
// DecodeErr にはリクエストボディの解釈に失敗した理由を入れる。存在確認の後で ErrInvalidDrink として返す。
type UpdateDrinkInput struct {
	ID        int64
	Title     *string
	Recipe    []model.Ingredient
	UpdatedBy string
	DecodeErr error
}

// Execute はタイトルとレシピを上書きし、更新後のエンティティを返す。
func (uc *UpdateDrinkUseCase) Execute(ctx context.Context, input UpdateDrinkInput) (*model.Drink, error) {
	existing, err := uc.drinkRepo.FindByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDrinkNotFound
		}
		return nil, fmt.Errorf("failed to get drink: %w", err)
	}

	if input.DecodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDrink, input.DecodeErr)
	}
	if input.Title == nil && input.Recipe == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidDrink)
	}

	if input.Title != nil {
		existing.Title = *input.Title
	}
	if input.Recipe != nil {
		existing.Recipe = input.Recipe
	}
	if err := existing.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDrink, err)
	}

	if err := uc.drinkRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDrinkNotFound
		}
		return nil, fmt.Errorf("failed to update drink: %w", err)
	}

	publishChange(ctx, uc.logger, uc.publisher, existing, model.ChangeTypeUpdated, input.UpdatedBy)
	return existing, nil
}

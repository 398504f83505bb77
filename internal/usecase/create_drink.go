package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/repository"
	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/telemetry"
)

// DrinkChangeEventPublisher はドリンク変更イベントの配信インターフェース。
type DrinkChangeEventPublisher interface {
	Publish(ctx context.Context, event *model.DrinkChangeEvent) error
}

// CreateDrinkUseCase はドリンク作成ユースケース。
type CreateDrinkUseCase struct {
	drinkRepo repository.DrinkRepository
	publisher DrinkChangeEventPublisher
	logger    *slog.Logger
}

// NewCreateDrinkUseCase は新しい CreateDrinkUseCase を作成する。publisher と logger は nil でもよい。
func NewCreateDrinkUseCase(drinkRepo repository.DrinkRepository, publisher DrinkChangeEventPublisher, logger *slog.Logger) *CreateDrinkUseCase {
	return &CreateDrinkUseCase{
		drinkRepo: drinkRepo,
		publisher: publisher,
		logger:    orDefault(logger),
	}
}

// CreateDrinkInput はドリンク作成の入力パラメータ。
type CreateDrinkInput struct {
	Title     string
	Recipe    []model.Ingredient
	CreatedBy string
}

// Execute はドリンクを検証して作成し、採番済みのエンティティを返す。
func (uc *CreateDrinkUseCase) Execute(ctx context.Context, input CreateDrinkInput) (*model.Drink, error) {
	drink := &model.Drink{
		Title:  input.Title,
		Recipe: input.Recipe,
	}
	if err := drink.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDrink, err)
	}

	if err := uc.drinkRepo.Create(ctx, drink); err != nil {
		return nil, fmt.Errorf("failed to create drink: %w", err)
	}

	publishChange(ctx, uc.logger, uc.publisher, drink, model.ChangeTypeCreated, input.CreatedBy)
	return drink, nil
}

// publishChange は変更イベントを配信する。配信の失敗は書き込み結果に影響させない。
func publishChange(ctx context.Context, logger *slog.Logger, publisher DrinkChangeEventPublisher, drink *model.Drink, changeType, changedBy string) {
	if publisher == nil {
		return
	}
	if changedBy == "" {
		changedBy = "unknown"
	}

	event := &model.DrinkChangeEvent{
		ID:         uuid.New().String(),
		DrinkID:    drink.ID,
		ChangeType: changeType,
		ChangedBy:  changedBy,
		ChangedAt:  time.Now().UTC(),
	}
	if changeType != model.ChangeTypeDeleted {
		event.Title = drink.Title
		event.Recipe = drink.Recipe
	}

	if err := publisher.Publish(ctx, event); err != nil {
		telemetry.LogWithTrace(ctx, logger).Warn("failed to publish drink change event",
			slog.Int64("drink_id", drink.ID),
			slog.String("change_type", changeType),
			slog.String("error", err.Error()),
		)
	}
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

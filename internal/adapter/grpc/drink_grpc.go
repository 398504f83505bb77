package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/repository"
	"github.com/k1s0-platform/service-server-go-drinks/internal/usecase"
)

// ListDrinksExecutor は ListDrinksUseCase の実行インターフェース。
type ListDrinksExecutor interface {
	Execute(ctx context.Context) ([]*model.Drink, error)
}

// CreateDrinkExecutor は CreateDrinkUseCase の実行インターフェース。
type CreateDrinkExecutor interface {
	Execute(ctx context.Context, input usecase.CreateDrinkInput) (*model.Drink, error)
}

// UpdateDrinkExecutor は UpdateDrinkUseCase の実行インターフェース。
type UpdateDrinkExecutor interface {
	Execute(ctx context.Context, input usecase.UpdateDrinkInput) (*model.Drink, error)
}

// DeleteDrinkExecutor は DeleteDrinkUseCase の実行インターフェース。
type DeleteDrinkExecutor interface {
	Execute(ctx context.Context, input usecase.DeleteDrinkInput) (int64, error)
}

// DrinkGRPCService は gRPC DrinkService の実装。
// 認証は AuthUnaryInterceptor が行い、検証済みの Claims をコンテキストに載せる。
type DrinkGRPCService struct {
	listDrinksUC  ListDrinksExecutor
	createDrinkUC CreateDrinkExecutor
	updateDrinkUC UpdateDrinkExecutor
	deleteDrinkUC DeleteDrinkExecutor
}

// NewDrinkGRPCService は DrinkGRPCService のコンストラクタ。
func NewDrinkGRPCService(
	listDrinksUC ListDrinksExecutor,
	createDrinkUC CreateDrinkExecutor,
	updateDrinkUC UpdateDrinkExecutor,
	deleteDrinkUC DeleteDrinkExecutor,
) *DrinkGRPCService {
	return &DrinkGRPCService{
		listDrinksUC:  listDrinksUC,
		createDrinkUC: createDrinkUC,
		updateDrinkUC: updateDrinkUC,
		deleteDrinkUC: deleteDrinkUC,
	}
}

// ListDrinks は全ドリンクを short 表現で返す。
func (s *DrinkGRPCService) ListDrinks(ctx context.Context, _ *ListDrinksRequest) (*ListDrinksResponse, error) {
	return s.list(ctx)
}

// ListDrinksDetail は get:drinks-detail 権限を持つ呼び出し元に全ドリンクを short 表現で返す。
func (s *DrinkGRPCService) ListDrinksDetail(ctx context.Context, _ *ListDrinksRequest) (*ListDrinksResponse, error) {
	return s.list(ctx)
}

func (s *DrinkGRPCService) list(ctx context.Context) (*ListDrinksResponse, error) {
	drinks, err := s.listDrinksUC.Execute(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	out := make([]*PbDrink, 0, len(drinks))
	for _, d := range drinks {
		out = append(out, shortToPb(d.Short()))
	}
	return &ListDrinksResponse{Drinks: out}, nil
}

// CreateDrink はドリンクを作成し、long 表現で返す。
func (s *DrinkGRPCService) CreateDrink(ctx context.Context, req *CreateDrinkRequest) (*CreateDrinkResponse, error) {
	if req.Title == "" || len(req.Recipe) == 0 {
		return nil, status.Error(codes.InvalidArgument, "title and recipe are required")
	}

	drink, err := s.createDrinkUC.Execute(ctx, usecase.CreateDrinkInput{
		Title:     req.Title,
		Recipe:    pbToRecipe(req.Recipe),
		CreatedBy: subjectFromContext(ctx),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &CreateDrinkResponse{Drink: longToPb(drink.Long())}, nil
}

// UpdateDrink はドリンクを部分更新し、long 表現で返す。
func (s *DrinkGRPCService) UpdateDrink(ctx context.Context, req *UpdateDrinkRequest) (*UpdateDrinkResponse, error) {
	if req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id must be positive")
	}

	var recipe []model.Ingredient
	if len(req.Recipe) > 0 {
		recipe = pbToRecipe(req.Recipe)
	}

	drink, err := s.updateDrinkUC.Execute(ctx, usecase.UpdateDrinkInput{
		ID:        req.Id,
		Title:     req.Title,
		Recipe:    recipe,
		UpdatedBy: subjectFromContext(ctx),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &UpdateDrinkResponse{Drink: longToPb(drink.Long())}, nil
}

// DeleteDrink はドリンクを削除し、削除した id を返す。
func (s *DrinkGRPCService) DeleteDrink(ctx context.Context, req *DeleteDrinkRequest) (*DeleteDrinkResponse, error) {
	if req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id must be positive")
	}

	id, err := s.deleteDrinkUC.Execute(ctx, usecase.DeleteDrinkInput{
		ID:        req.Id,
		DeletedBy: subjectFromContext(ctx),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &DeleteDrinkResponse{Id: id}, nil
}

// toStatusError はユースケースのエラーを gRPC ステータスに変換する。内部の詳細は返さない。
func toStatusError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrDrinkNotFound):
		return status.Error(codes.NotFound, "resource not found")
	case errors.Is(err, usecase.ErrInvalidDrink):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, repository.ErrConstraintViolation):
		return status.Error(codes.AlreadyExists, "conflict")
	case errors.Is(err, repository.ErrConnection):
		return status.Error(codes.Unavailable, "internal server error")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}

func shortToPb(d model.DrinkShort) *PbDrink {
	recipe := make([]*PbIngredient, 0, len(d.Recipe))
	for _, in := range d.Recipe {
		recipe = append(recipe, &PbIngredient{Name: in.Name, Color: in.Color})
	}
	return &PbDrink{Id: d.ID, Title: d.Title, Recipe: recipe}
}

func longToPb(d model.DrinkLong) *PbDrink {
	recipe := make([]*PbIngredient, 0, len(d.Recipe))
	for _, in := range d.Recipe {
		recipe = append(recipe, &PbIngredient{Name: in.Name, Color: in.Color, Parts: int32(in.Parts)})
	}
	return &PbDrink{Id: d.ID, Title: d.Title, Recipe: recipe}
}

func pbToRecipe(in []*PbIngredient) []model.Ingredient {
	recipe := make([]model.Ingredient, 0, len(in))
	for _, p := range in {
		if p == nil {
			continue
		}
		recipe = append(recipe, model.Ingredient{Name: p.Name, Color: p.Color, Parts: int(p.Parts)})
	}
	return recipe
}

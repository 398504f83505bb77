package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/k1s0-platform/service-server-go-drinks/internal/adapter/middleware"
	"github.com/k1s0-platform/service-server-go-drinks/internal/adapter/presenter"
	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/repository"
	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/telemetry"
	"github.com/k1s0-platform/service-server-go-drinks/internal/usecase"
)

// 各ルートが要求する権限。
const (
	PermissionGetDrinksDetail = "get:drinks-detail"
	PermissionPostDrinks      = "post:drinks"
	PermissionPatchDrinks     = "patch:drinks"
	PermissionDeleteDrinks    = "delete:drinks"
)

var errMalformedBody = errors.New("malformed request body")

// PermissionGuard は必要な権限を検証するミドルウェアを返す関数。
type PermissionGuard func(permission string) gin.HandlerFunc

// DrinkHandlerOptions は旧 API との互換挙動の切り替え。
type DrinkHandlerOptions struct {
	// WriteErrorsAs405 が true の場合、書き込み系の失敗をすべて 405 で返す。
	WriteErrorsAs405 bool
	// EmptyListNotFound が true の場合、一覧が空なら 404 を返す。
	EmptyListNotFound bool
}

// DrinkHandler はドリンク関連の REST ハンドラー。
type DrinkHandler struct {
	listDrinksUC  *usecase.ListDrinksUseCase
	createDrinkUC *usecase.CreateDrinkUseCase
	updateDrinkUC *usecase.UpdateDrinkUseCase
	deleteDrinkUC *usecase.DeleteDrinkUseCase
	opts          DrinkHandlerOptions
	logger        *slog.Logger
}

// NewDrinkHandler は新しい DrinkHandler を作成する。
func NewDrinkHandler(
	listDrinksUC *usecase.ListDrinksUseCase,
	createDrinkUC *usecase.CreateDrinkUseCase,
	updateDrinkUC *usecase.UpdateDrinkUseCase,
	deleteDrinkUC *usecase.DeleteDrinkUseCase,
	opts DrinkHandlerOptions,
	logger *slog.Logger,
) *DrinkHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DrinkHandler{
		listDrinksUC:  listDrinksUC,
		createDrinkUC: createDrinkUC,
		updateDrinkUC: updateDrinkUC,
		deleteDrinkUC: deleteDrinkUC,
		opts:          opts,
		logger:        logger,
	}
}

// RegisterRoutes はドリンクのルートを登録する。認証が必要なルートには guard を適用する。
func (h *DrinkHandler) RegisterRoutes(r gin.IRouter, guard PermissionGuard) {
	r.GET("/drinks", h.ListDrinks)
	r.GET("/drinks-detail", guard(PermissionGetDrinksDetail), h.ListDrinksDetail)
	r.POST("/drinks", guard(PermissionPostDrinks), h.CreateDrink)
	r.PATCH("/drinks/:id", guard(PermissionPatchDrinks), h.UpdateDrink)
	r.DELETE("/drinks/:id", guard(PermissionDeleteDrinks), h.DeleteDrink)
}

// RegisterErrorHandlers は未定義ルートと未対応メソッドのエラーハンドラーを登録する。
func RegisterErrorHandlers(engine *gin.Engine) {
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		presenter.WriteError(c, http.StatusNotFound, presenter.MessageNotFound)
	})
	engine.NoMethod(func(c *gin.Context) {
		presenter.WriteError(c, http.StatusMethodNotAllowed, presenter.MessageNotAcceptable)
	})
}

// ListDrinks は GET /drinks のハンドラー。
func (h *DrinkHandler) ListDrinks(c *gin.Context) {
	h.writeList(c)
}

// ListDrinksDetail は GET /drinks-detail のハンドラー。
func (h *DrinkHandler) ListDrinksDetail(c *gin.Context) {
	h.writeList(c)
}

func (h *DrinkHandler) writeList(c *gin.Context) {
	drinks, err := h.listDrinksUC.Execute(c.Request.Context())
	if err != nil {
		telemetry.LogWithTrace(c.Request.Context(), h.logger).Error("failed to list drinks",
			slog.String("error", err.Error()),
		)
		presenter.WriteError(c, http.StatusInternalServerError, presenter.MessageInternalServerError)
		return
	}
	if len(drinks) == 0 && h.opts.EmptyListNotFound {
		presenter.WriteError(c, http.StatusNotFound, presenter.MessageNotFound)
		return
	}

	c.JSON(http.StatusOK, presenter.NewDrinkListResponse(drinks))
}

// drinkRequest は作成・更新のリクエストボディ。recipe は単一オブジェクトも受け付ける。
type drinkRequest struct {
	Title  *string         `json:"title"`
	Recipe json.RawMessage `json:"recipe"`
}

func (r *drinkRequest) recipe() ([]model.Ingredient, error) {
	if len(r.Recipe) == 0 {
		return nil, nil
	}
	recipe, err := model.ParseRecipe(r.Recipe)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return recipe, nil
}

// CreateDrink は POST /drinks のハンドラー。
func (h *DrinkHandler) CreateDrink(c *gin.Context) {
	var req drinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeWriteFailure(c, fmt.Errorf("%w: %v", errMalformedBody, err))
		return
	}
	if req.Title == nil || len(req.Recipe) == 0 {
		h.writeWriteFailure(c, fmt.Errorf("%w: title and recipe are required", errMalformedBody))
		return
	}
	recipe, err := req.recipe()
	if err != nil {
		h.writeWriteFailure(c, err)
		return
	}

	drink, err := h.createDrinkUC.Execute(c.Request.Context(), usecase.CreateDrinkInput{
		Title:     *req.Title,
		Recipe:    recipe,
		CreatedBy: subject(c),
	})
	if err != nil {
		h.writeWriteFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.NewDrinkResponse(drink))
}

// UpdateDrink は PATCH /drinks/:id のハンドラー。省略した項目は既存の値を維持する。
func (h *DrinkHandler) UpdateDrink(c *gin.Context) {
	id, ok := parseDrinkID(c)
	if !ok {
		return
	}

	// ボディの不備は存在確認の後に判定する
	input := usecase.UpdateDrinkInput{ID: id, UpdatedBy: subject(c)}
	var req drinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		input.DecodeErr = fmt.Errorf("%w: %v", errMalformedBody, err)
	} else if input.Recipe, err = req.recipe(); err != nil {
		input.DecodeErr = err
	} else {
		input.Title = req.Title
	}

	drink, err := h.updateDrinkUC.Execute(c.Request.Context(), input)
	if err != nil {
		h.writeWriteFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.NewDrinkResponse(drink))
}

// DeleteDrink は DELETE /drinks/:id のハンドラー。
func (h *DrinkHandler) DeleteDrink(c *gin.Context) {
	id, ok := parseDrinkID(c)
	if !ok {
		return
	}

	deleted, err := h.deleteDrinkUC.Execute(c.Request.Context(), usecase.DeleteDrinkInput{
		ID:        id,
		DeletedBy: subject(c),
	})
	if err != nil {
		h.writeWriteFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.DeleteResponse{Success: true, Delete: deleted})
}

// writeWriteFailure は書き込み系の失敗をステータスコードに変換する。
// NotFound は常に 404。それ以外は互換設定に従い 405、または 422/409/500 を返す。
func (h *DrinkHandler) writeWriteFailure(c *gin.Context, err error) {
	logger := telemetry.LogWithTrace(c.Request.Context(), h.logger)

	if errors.Is(err, usecase.ErrDrinkNotFound) {
		presenter.WriteError(c, http.StatusNotFound, presenter.MessageNotFound)
		return
	}

	status, message := classifyWriteFailure(err)
	if status == http.StatusInternalServerError {
		logger.Error("drink write failed", slog.String("path", c.Request.URL.Path), slog.String("error", err.Error()))
	} else {
		logger.Info("drink write rejected", slog.String("path", c.Request.URL.Path), slog.String("error", err.Error()))
	}

	if h.opts.WriteErrorsAs405 {
		presenter.WriteError(c, http.StatusMethodNotAllowed, presenter.MessageNotAcceptable)
		return
	}
	presenter.WriteError(c, status, message)
}

func classifyWriteFailure(err error) (int, string) {
	switch {
	case errors.Is(err, errMalformedBody), errors.Is(err, usecase.ErrInvalidDrink):
		return http.StatusUnprocessableEntity, presenter.MessageUnprocessable
	case errors.Is(err, repository.ErrConstraintViolation):
		return http.StatusConflict, presenter.MessageConflict
	default:
		return http.StatusInternalServerError, presenter.MessageInternalServerError
	}
}

// parseDrinkID はパスの id を解釈する。整数でない id は存在しないリソースとして 404 を返す。
func parseDrinkID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		presenter.WriteError(c, http.StatusNotFound, presenter.MessageNotFound)
		return 0, false
	}
	return id, true
}

func subject(c *gin.Context) string {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.Sub
	}
	return ""
}

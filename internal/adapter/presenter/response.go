package presenter

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
)

// エラーレスポンスのメッセージ。
const (
	MessageUnauthorized        = "unauthorized"
	MessageNotFound            = "resource not found"
	MessageNotAcceptable       = "Not Acceptable"
	MessageUnprocessable       = "unprocessable"
	MessageConflict            = "conflict"
	MessageInternalServerError = "internal server error"
)

// ErrorResponse は統一エラーレスポンス。Kind は認証失敗の場合のみ設定する。
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     int    `json:"error"`
	Message   string `json:"message"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// DrinkListResponse はドリンク一覧の API レスポンス。
type DrinkListResponse struct {
	Success bool               `json:"success"`
	Drinks  []model.DrinkShort `json:"drinks"`
}

// DrinkResponse は作成・更新したドリンクの API レスポンス。
type DrinkResponse struct {
	Success bool            `json:"success"`
	Drinks  model.DrinkLong `json:"drinks"`
}

// DeleteResponse は削除の API レスポンス。
type DeleteResponse struct {
	Success bool  `json:"success"`
	Delete  int64 `json:"delete"`
}

// NewDrinkListResponse は一覧レスポンスを組み立てる。
func NewDrinkListResponse(drinks []*model.Drink) DrinkListResponse {
	return DrinkListResponse{Success: true, Drinks: model.ShortList(drinks)}
}

// NewDrinkResponse は long 表現のレスポンスを組み立てる。
func NewDrinkResponse(drink *model.Drink) DrinkResponse {
	return DrinkResponse{Success: true, Drinks: drink.Long()}
}

// WriteError は統一フォーマットのエラーレスポンスを書き込み、後続のハンドラーを中断する。
func WriteError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Success:   false,
		Error:     statusCode,
		Message:   message,
		RequestID: requestID(c),
	})
}

// WriteAuthError は 401 と認証失敗の種別を書き込む。
func WriteAuthError(c *gin.Context, kind model.AuthFailureKind) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Success:   false,
		Error:     http.StatusUnauthorized,
		Message:   MessageUnauthorized,
		Kind:      string(kind),
		RequestID: requestID(c),
	})
}

func requestID(c *gin.Context) string {
	v, _ := c.Get("request_id")
	id, _ := v.(string)
	return id
}

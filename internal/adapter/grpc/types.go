package grpc

// proto 生成コードを使わず、drink_service.proto に対応する Go 構造体を手動定義する。
// メッセージは JSONCodec でエンコードされる。

// PbIngredient は proto の Ingredient に対応する構造体。
// short 表現では Parts を 0 にして省略する。
type PbIngredient struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Parts int32  `json:"parts,omitempty"`
}

// PbDrink は proto の Drink に対応する構造体。
type PbDrink struct {
	Id     int64           `json:"id"`
	Title  string          `json:"title"`
	Recipe []*PbIngredient `json:"recipe"`
}

// --- ListDrinks / ListDrinksDetail ---

// ListDrinksRequest はドリンク一覧取得リクエスト。
type ListDrinksRequest struct{}

// ListDrinksResponse はドリンク一覧取得レスポンス。
type ListDrinksResponse struct {
	Drinks []*PbDrink `json:"drinks"`
}

// --- CreateDrink ---

// CreateDrinkRequest はドリンク作成リクエスト。
type CreateDrinkRequest struct {
	Title  string          `json:"title"`
	Recipe []*PbIngredient `json:"recipe"`
}

// CreateDrinkResponse はドリンク作成レスポンス。
type CreateDrinkResponse struct {
	Drink *PbDrink `json:"drink"`
}

// --- UpdateDrink ---

// UpdateDrinkRequest はドリンク更新リクエスト。省略した項目は既存の値を維持する。
type UpdateDrinkRequest struct {
	Id     int64           `json:"id"`
	Title  *string         `json:"title,omitempty"`
	Recipe []*PbIngredient `json:"recipe,omitempty"`
}

// UpdateDrinkResponse はドリンク更新レスポンス。
type UpdateDrinkResponse struct {
	Drink *PbDrink `json:"drink"`
}

// --- DeleteDrink ---

// DeleteDrinkRequest はドリンク削除リクエスト。
type DeleteDrinkRequest struct {
	Id int64 `json:"id"`
}

// DeleteDrinkResponse はドリンク削除レスポンス。
type DeleteDrinkResponse struct {
	Id int64 `json:"id"`
}

package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRecipe はレシピの JSON が構造化データとして解釈できない場合のエラー。
var ErrInvalidRecipe = errors.New("invalid recipe")

var drinkValidator = validator.New()

// Ingredient はレシピを構成する材料 1 件を表す。
type Ingredient struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"required"`
	Parts int    `json:"parts" validate:"min=1"`
}

// Drink はドリンクのエンティティ。
// Recipe は DB 上ではシリアライズされた JSON テキストとして保存される。
type Drink struct {
	ID     int64        `json:"id"`
	Title  string       `json:"title" validate:"required,max=80"`
	Recipe []Ingredient `json:"recipe" validate:"required,min=1,dive"`
}

// ShortIngredient は公開向けの材料表現。parts を含まない。
type ShortIngredient struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DrinkShort は公開向けのドリンク表現。
type DrinkShort struct {
	ID     int64             `json:"id"`
	Title  string            `json:"title"`
	Recipe []ShortIngredient `json:"recipe"`
}

// DrinkLong は認可済みクライアント向けの完全なドリンク表現。
type DrinkLong struct {
	ID     int64        `json:"id"`
	Title  string       `json:"title"`
	Recipe []Ingredient `json:"recipe"`
}

// Short は short 表現を返す。
func (d *Drink) Short() DrinkShort {
	recipe := make([]ShortIngredient, 0, len(d.Recipe))
	for _, in := range d.Recipe {
		recipe = append(recipe, ShortIngredient{Name: in.Name, Color: in.Color})
	}
	return DrinkShort{ID: d.ID, Title: d.Title, Recipe: recipe}
}

// Long は long 表現を返す。
func (d *Drink) Long() DrinkLong {
	recipe := make([]Ingredient, len(d.Recipe))
	copy(recipe, d.Recipe)
	return DrinkLong{ID: d.ID, Title: d.Title, Recipe: recipe}
}

// Validate はタイトルとレシピの制約を検証する。
func (d *Drink) Validate() error {
	return drinkValidator.Struct(d)
}

// ShortList はドリンク一覧を short 表現に変換する。
func ShortList(drinks []*Drink) []DrinkShort {
	out := make([]DrinkShort, 0, len(drinks))
	for _, d := range drinks {
		out = append(out, d.Short())
	}
	return out
}

// MarshalRecipe はレシピを保存用の JSON テキストに変換する。
func MarshalRecipe(recipe []Ingredient) (string, error) {
	if recipe == nil {
		recipe = []Ingredient{}
	}
	data, err := json.Marshal(recipe)
	if err != nil {
		return "", fmt.Errorf("failed to serialize recipe: %w", err)
	}
	return string(data), nil
}

// ParseRecipe は JSON のレシピを構造化データに戻す。
// 単一オブジェクトも 1 件の配列として受け付ける。
func ParseRecipe(data []byte) ([]Ingredient, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidRecipe)
	}

	if trimmed[0] == '{' {
		var single Ingredient
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
		}
		return []Ingredient{single}, nil
	}

	var recipe []Ingredient
	if err := json.Unmarshal(trimmed, &recipe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}
	if recipe == nil {
		return nil, fmt.Errorf("%w: null", ErrInvalidRecipe)
	}
	return recipe, nil
}

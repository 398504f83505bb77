package usecase

import "errors"

var (
	// ErrDrinkNotFound はドリンクが見つからない場合のエラー。
	ErrDrinkNotFound = errors.New("drink not found")

	// ErrInvalidDrink は入力がドリンクの制約を満たさない場合のエラー。
	ErrInvalidDrink = errors.New("invalid drink")
)

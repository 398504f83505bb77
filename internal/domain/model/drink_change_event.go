package model

import "time"

// ChangeType の値。
const (
	ChangeTypeCreated = "CREATED"
	ChangeTypeUpdated = "UPDATED"
	ChangeTypeDeleted = "DELETED"
)

// DrinkChangeEvent はドリンクの変更イベント。Kafka へ配信される。
type DrinkChangeEvent struct {
	ID         string       `json:"id"`
	DrinkID    int64        `json:"drink_id"`
	ChangeType string       `json:"change_type"`
	Title      string       `json:"title,omitempty"`
	Recipe     []Ingredient `json:"recipe,omitempty"`
	ChangedBy  string       `json:"changed_by"`
	ChangedAt  time.Time    `json:"changed_at"`
}

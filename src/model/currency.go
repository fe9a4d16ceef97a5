package model

import "time"

// Currency is an immutable catalog entry consulted read-only during validation.
type Currency struct {
	Code      string    `gorm:"primaryKey;size:3" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Symbol    string    `gorm:"size:10" json:"symbol"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Currency) TableName() string {
	return "currencies"
}

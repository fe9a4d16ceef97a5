package model

import "time"

// AssetType classifies assets (stock, real estate, fixed income, ...).
type AssetType struct {
	Code        string    `gorm:"primaryKey;size:100" json:"code"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"size:250" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

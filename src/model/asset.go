package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is something a user holds a position in: a ticker, a property, a bond.
// MarketValue is a stored reference price, refreshed out-of-band for assets
// that have a public quote (YFinanceCompatible).
type Asset struct {
	ID                 string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID             uint            `gorm:"index;not null" json:"user_id"`
	Code               string          `gorm:"size:50;not null" json:"code"`
	Name               string          `gorm:"size:200;not null" json:"name"`
	Description        string          `gorm:"size:250" json:"description,omitempty"`
	CurrencyCode       string          `gorm:"size:3;not null" json:"currency_code"`
	AssetTypeCode      string          `gorm:"size:100;not null" json:"asset_type_code"`
	MarketValue        decimal.Decimal `gorm:"type:numeric(19,8);not null;default:0" json:"market_value"`
	PaidPrice          decimal.Decimal `gorm:"type:numeric(19,8);not null;default:0" json:"paid_price"`
	YFinanceCompatible bool            `gorm:"column:yfinance_compatible;not null;default:false" json:"yfinance_compatible"`
	IsGeneric          bool            `gorm:"not null;default:false" json:"is_generic"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

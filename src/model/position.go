package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the aggregated holding for one (user, asset) pair. It is derived
// from the transaction log and rewritten by exactly one ledger apply per
// transaction; it is never edited directly.
//
// AvgCost is TotalCost / Quantity rounded half-even to 8 fractional digits,
// and 0 whenever Quantity is 0.
type Position struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      uint            `gorm:"uniqueIndex:idx_positions_user_asset;not null" json:"user_id"`
	AssetID     string          `gorm:"type:uuid;uniqueIndex:idx_positions_user_asset;not null" json:"asset_id"`
	Quantity    decimal.Decimal `gorm:"type:numeric(19,8);not null;default:0" json:"quantity"`
	TotalCost   decimal.Decimal `gorm:"type:numeric(19,8);not null;default:0" json:"total_cost"`
	AvgCost     decimal.Decimal `gorm:"type:numeric(19,8);not null;default:0" json:"avg_cost"`
	RealizedPnl decimal.Decimal `gorm:"type:numeric(19,8);not null;default:0" json:"realized_pnl"`
	Yield       decimal.Decimal `gorm:"type:numeric(19,8);not null;default:0" json:"yield"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PositionSummary joins a position with its asset's display metadata and
// valuation. TotalMarketValue uses the stored reference market value; LivePrice
// and LiveValue are filled best-effort from the market data provider and are
// omitted when no quote is available.
type PositionSummary struct {
	ID                 string           `json:"id"`
	AssetID            string           `json:"asset_id"`
	Name               string           `json:"name"`
	Code               string           `json:"code"`
	CurrencyCode       string           `json:"currency_code"`
	Quantity           decimal.Decimal  `json:"quantity"`
	TotalCost          decimal.Decimal  `json:"total_cost"`
	AvgCost            decimal.Decimal  `json:"avg_cost"`
	TotalMarketValue   decimal.Decimal  `json:"total_market_value"`
	Yield              decimal.Decimal  `json:"yield"`
	RealizedPnl        decimal.Decimal  `json:"realized_pnl"`
	YFinanceCompatible bool             `json:"yfinance_compatible"`
	LivePrice          *decimal.Decimal `json:"live_price,omitempty"`
	LiveValue          *decimal.Decimal `json:"live_value,omitempty"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one entry in the append-only ledger log. Quantity and
// UnitPrice are numeric(19,8); amounts are always quantity * unit_price.
type Transaction struct {
	ID                 string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID             uint            `gorm:"index;not null" json:"user_id"`
	AssetID            string          `gorm:"type:uuid;index;not null" json:"asset_id"`
	TransactionTypeKey string          `gorm:"size:100;not null" json:"transaction_type_key"`
	Quantity           decimal.Decimal `gorm:"type:numeric(19,8);not null" json:"quantity"`
	UnitPrice          decimal.Decimal `gorm:"type:numeric(19,8);not null" json:"unit_price"`
	Description        string          `gorm:"size:200" json:"description,omitempty"`
	CurrencyCode       string          `gorm:"size:3;not null" json:"currency_code"`
	OccurredAt         time.Time       `gorm:"not null" json:"occurred_at"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Amount is the total monetary effect of the transaction.
func (t *Transaction) Amount() decimal.Decimal {
	return t.Quantity.Mul(t.UnitPrice)
}

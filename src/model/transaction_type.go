package model

import "time"

const (
	TransactionTypeBuy     = "BUY"
	TransactionTypeSell    = "SELL"
	TransactionTypeIncome  = "INCOME"
	TransactionTypeExpense = "EXPENSE"
)

// TransactionType is the catalog of transaction kinds. The key is the stable
// machine identifier referenced by transactions; name/description are for UIs.
type TransactionType struct {
	Key         string    `gorm:"primaryKey;size:100" json:"key"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"size:250" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

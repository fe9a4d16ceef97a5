package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"assetledger/src/apperrors"
	"assetledger/src/decimals"
	"assetledger/src/model"
)

// NewBaseline returns the zero-valued aggregate a position starts from before
// its first transaction.
func NewBaseline(userID uint, assetID string) model.Position {
	return model.Position{
		UserID:      userID,
		AssetID:     assetID,
		Quantity:    decimal.Zero,
		TotalCost:   decimal.Zero,
		AvgCost:     decimal.Zero,
		RealizedPnl: decimal.Zero,
		Yield:       decimal.Zero,
	}
}

// Step folds one transaction into a position snapshot and returns the next
// state. It never mutates its input.
//
// BUY and SELL move quantity and committed capital; SELL additionally realizes
// P&L against the average cost before the sale. INCOME and EXPENSE only move
// yield. AvgCost is recomputed as TotalCost / Quantity rounded half-even to 8
// fractional digits, and is 0 whenever quantity is 0.
func Step(position model.Position, tx *model.Transaction, allowShort bool) (model.Position, error) {
	next := position
	// quantity * unit_price can carry up to 16 fractional digits; rebase to
	// the persisted scale before accumulating so in-memory state always
	// matches what a numeric(19,8) column would hold.
	amount := decimals.Canonical(tx.Amount())

	switch tx.TransactionTypeKey {
	case model.TransactionTypeBuy:
		next.Quantity = position.Quantity.Add(tx.Quantity)
		next.TotalCost = position.TotalCost.Add(amount)
		next.AvgCost = avgCost(next.TotalCost, next.Quantity)

	case model.TransactionTypeSell:
		if !allowShort && tx.Quantity.GreaterThan(position.Quantity) {
			return model.Position{}, &apperrors.ValidationError{
				Message: "Insufficient quantity for sale",
				Action:  "Reduce the quantity or enable short positions",
				Fields:  []string{"quantity"},
			}
		}
		next.Quantity = position.Quantity.Sub(tx.Quantity)
		next.TotalCost = position.TotalCost.Sub(amount)
		// Realized P&L is computed against the average cost before this sale
		// and accumulates across sales.
		delta := tx.UnitPrice.Sub(position.AvgCost)
		next.RealizedPnl = position.RealizedPnl.Add(decimals.Canonical(delta.Mul(tx.Quantity)))
		next.AvgCost = avgCost(next.TotalCost, next.Quantity)

	case model.TransactionTypeIncome:
		next.Yield = position.Yield.Add(amount)

	case model.TransactionTypeExpense:
		next.Yield = position.Yield.Sub(amount)

	default:
		return model.Position{}, &apperrors.ValidationError{
			Message: fmt.Sprintf("Unknown transaction type %q", tx.TransactionTypeKey),
			Action:  "Please review submitted data",
			Fields:  []string{"transaction_type_key"},
		}
	}

	return next, nil
}

// Replay folds an ordered transaction history into a fresh aggregate starting
// from the zero baseline. Amendments and deletions of past transactions go
// through here so the aggregate can never drift from the log.
func Replay(userID uint, assetID string, txs []model.Transaction, allowShort bool) (model.Position, error) {
	position := NewBaseline(userID, assetID)
	for i := range txs {
		next, err := Step(position, &txs[i], allowShort)
		if err != nil {
			return model.Position{}, err
		}
		position = next
	}
	return position, nil
}

func avgCost(totalCost, quantity decimal.Decimal) decimal.Decimal {
	if quantity.IsZero() {
		return decimal.Zero
	}
	return decimals.DivRoundHalfEven(totalCost, quantity)
}

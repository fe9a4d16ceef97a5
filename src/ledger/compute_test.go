package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"assetledger/src/apperrors"
	"assetledger/src/model"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func tx(t *testing.T, kind, quantity, unitPrice string) *model.Transaction {
	t.Helper()
	return &model.Transaction{
		ID:                 "tx-" + kind + "-" + quantity,
		UserID:             1,
		AssetID:            "asset-1",
		TransactionTypeKey: kind,
		Quantity:           dec(t, quantity),
		UnitPrice:          dec(t, unitPrice),
		CurrencyCode:       "USD",
		OccurredAt:         time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func assertField(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(t, want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func TestStepBuyThenSellEverything(t *testing.T) {
	p := NewBaseline(1, "asset-1")

	p, err := Step(p, tx(t, model.TransactionTypeBuy, "10", "3"), false)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	p, err = Step(p, tx(t, model.TransactionTypeSell, "10", "3"), false)
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	assertField(t, "quantity", p.Quantity, "0")
	assertField(t, "total_cost", p.TotalCost, "0")
	assertField(t, "avg_cost", p.AvgCost, "0")
	assertField(t, "realized_pnl", p.RealizedPnl, "0")
}

func TestStepPartialSellRealizesPnl(t *testing.T) {
	p := NewBaseline(1, "asset-1")

	p, err := Step(p, tx(t, model.TransactionTypeBuy, "10", "3.00000000"), false)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	assertField(t, "avg_cost before sale", p.AvgCost, "3.00000000")

	p, err = Step(p, tx(t, model.TransactionTypeSell, "4", "5.00000000"), false)
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	assertField(t, "quantity", p.Quantity, "6")
	assertField(t, "total_cost", p.TotalCost, "18.00000000")
	assertField(t, "avg_cost", p.AvgCost, "3.00000000")
	assertField(t, "realized_pnl", p.RealizedPnl, "8.00000000")
	assertField(t, "yield", p.Yield, "0")
}

func TestStepRealizedPnlAccumulatesAcrossSales(t *testing.T) {
	p := NewBaseline(1, "asset-1")

	var err error
	p, err = Step(p, tx(t, model.TransactionTypeBuy, "10", "2"), false)
	if err != nil {
		t.Fatal(err)
	}
	p, err = Step(p, tx(t, model.TransactionTypeSell, "2", "3"), false)
	if err != nil {
		t.Fatal(err)
	}
	p, err = Step(p, tx(t, model.TransactionTypeSell, "2", "4"), false)
	if err != nil {
		t.Fatal(err)
	}

	// (3-2)*2 + (4-2)*2
	assertField(t, "realized_pnl", p.RealizedPnl, "6")
}

func TestStepIncomeAndExpenseOnlyMoveYield(t *testing.T) {
	p := NewBaseline(1, "asset-1")

	var err error
	p, err = Step(p, tx(t, model.TransactionTypeBuy, "5", "10"), false)
	if err != nil {
		t.Fatal(err)
	}
	before := p

	p, err = Step(p, tx(t, model.TransactionTypeIncome, "100", "1"), false)
	if err != nil {
		t.Fatal(err)
	}
	p, err = Step(p, tx(t, model.TransactionTypeExpense, "30", "1"), false)
	if err != nil {
		t.Fatal(err)
	}

	assertField(t, "yield", p.Yield, "70.00000000")
	assertField(t, "quantity", p.Quantity, before.Quantity.String())
	assertField(t, "total_cost", p.TotalCost, before.TotalCost.String())
	assertField(t, "avg_cost", p.AvgCost, before.AvgCost.String())
	assertField(t, "realized_pnl", p.RealizedPnl, before.RealizedPnl.String())
}

func TestStepAvgCostIsZeroNotErrorOnEmptyPosition(t *testing.T) {
	p := NewBaseline(1, "asset-1")

	p, err := Step(p, tx(t, model.TransactionTypeIncome, "1", "1"), false)
	if err != nil {
		t.Fatal(err)
	}

	assertField(t, "quantity", p.Quantity, "0")
	assertField(t, "avg_cost", p.AvgCost, "0")
}

func TestStepRejectsOversellByDefault(t *testing.T) {
	p := NewBaseline(1, "asset-1")

	p, err := Step(p, tx(t, model.TransactionTypeBuy, "3", "1"), false)
	if err != nil {
		t.Fatal(err)
	}

	_, err = Step(p, tx(t, model.TransactionTypeSell, "5", "1"), false)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation failure for oversell, got %v", err)
	}
}

func TestStepAllowsShortWhenEnabled(t *testing.T) {
	p := NewBaseline(1, "asset-1")

	p, err := Step(p, tx(t, model.TransactionTypeSell, "5", "2"), true)
	if err != nil {
		t.Fatalf("short sell failed: %v", err)
	}

	assertField(t, "quantity", p.Quantity, "-5")
	assertField(t, "total_cost", p.TotalCost, "-10")
}

func TestStepRejectsUnknownType(t *testing.T) {
	_, err := Step(NewBaseline(1, "asset-1"), tx(t, "TRANSFER", "1", "1"), false)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation failure for unknown type, got %v", err)
	}
}

func TestStepAvgCostRoundsHalfEven(t *testing.T) {
	p := NewBaseline(1, "asset-1")

	// 1 / 3 = 0.333... -> 0.33333333 at scale 8.
	p, err := Step(p, tx(t, model.TransactionTypeBuy, "3", "0.33333333"), false)
	if err != nil {
		t.Fatal(err)
	}
	assertField(t, "avg_cost", p.AvgCost, "0.33333333")
}

func TestReplayMatchesSequentialSteps(t *testing.T) {
	history := []model.Transaction{
		*tx(t, model.TransactionTypeBuy, "10", "3.5"),
		*tx(t, model.TransactionTypeBuy, "2.5", "4.2"),
		*tx(t, model.TransactionTypeIncome, "100", "0.01"),
		*tx(t, model.TransactionTypeSell, "4", "5.25"),
		*tx(t, model.TransactionTypeExpense, "3", "0.5"),
	}

	sequential := NewBaseline(1, "asset-1")
	for i := range history {
		next, err := Step(sequential, &history[i], false)
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		sequential = next
	}

	replayed, err := Replay(1, "asset-1", history, false)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	for _, field := range []struct {
		name      string
		got, want decimal.Decimal
	}{
		{"quantity", replayed.Quantity, sequential.Quantity},
		{"total_cost", replayed.TotalCost, sequential.TotalCost},
		{"avg_cost", replayed.AvgCost, sequential.AvgCost},
		{"realized_pnl", replayed.RealizedPnl, sequential.RealizedPnl},
		{"yield", replayed.Yield, sequential.Yield},
	} {
		if !field.got.Equal(field.want) {
			t.Fatalf("replay %s = %s, sequential = %s", field.name, field.got, field.want)
		}
	}
}

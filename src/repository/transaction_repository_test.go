package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"assetledger/src/model"
)

func TestTransactionRepositoryCreate(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&TransactionRepository{}).WithDB(mockDB)

	tx := &model.Transaction{
		ID:                 "tx-1",
		UserID:             1,
		AssetID:            "asset-1",
		TransactionTypeKey: model.TransactionTypeBuy,
		Quantity:           decimal.NewFromInt(10),
		UnitPrice:          decimal.RequireFromString("3.5"),
		CurrencyCode:       "USD",
		OccurredAt:         time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "transactions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), tx); err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTransactionRepositoryFindByAssetOrdersForReplay(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&TransactionRepository{}).WithDB(mockDB)

	occurred := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "asset_id", "transaction_type_key", "quantity", "unit_price", "currency_code", "occurred_at",
	}).
		AddRow("tx-1", 1, "asset-1", "BUY", "10", "3", "USD", occurred).
		AddRow("tx-2", 1, "asset-1", "SELL", "4", "5", "USD", occurred.Add(time.Hour))

	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE asset_id = \$1 ORDER BY occurred_at ASC, created_at ASC, id ASC`).
		WithArgs("asset-1").
		WillReturnRows(rows)

	history, err := repo.FindByAsset(context.Background(), "asset-1")
	if err != nil {
		t.Fatalf("unexpected error listing history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(history))
	}
	if history[0].TransactionTypeKey != "BUY" || history[1].TransactionTypeKey != "SELL" {
		t.Fatalf("history not in replay order: %+v", history)
	}
}

func TestTransactionRepositoryFindByIDMiss(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&TransactionRepository{}).WithDB(mockDB)

	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE id = \$1`).
		WithArgs("tx-404", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tx, err := repo.FindByID(context.Background(), "tx-404")
	if err != nil {
		t.Fatalf("a miss must map to (nil, nil): %v", err)
	}
	if tx != nil {
		t.Fatalf("expected nil transaction, got %+v", tx)
	}
}

func TestTransactionRepositoryDeleteMissingRow(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&TransactionRepository{}).WithDB(mockDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "transactions" WHERE id = \$1`).
		WithArgs("tx-404").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "tx-404")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}

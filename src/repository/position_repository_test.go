package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}

func positionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "asset_id", "quantity", "total_cost", "avg_cost", "realized_pnl", "yield", "updated_at",
	})
}

func TestPositionRepositoryListByUser(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&PositionRepository{}).WithDB(mockDB)

	updated := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := positionRows().
		AddRow("pos-1", 1, "asset-1", "10", "30", "3", "0", "0", updated).
		AddRow("pos-2", 1, "asset-2", "2.5", "100", "40", "5", "1.25", updated)

	mock.ExpectQuery(`SELECT \* FROM "positions" WHERE user_id = \$1`).
		WithArgs(uint(1)).
		WillReturnRows(rows)

	positions, err := repo.ListByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error listing positions: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	if !positions[0].Quantity.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("quantity scanned wrong: %s", positions[0].Quantity)
	}
	if !positions[1].Yield.Equal(decimal.RequireFromString("1.25")) {
		t.Fatalf("yield scanned wrong: %s", positions[1].Yield)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestPositionRepositoryListByUserEmptyIsNotAnError(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&PositionRepository{}).WithDB(mockDB)

	mock.ExpectQuery(`SELECT \* FROM "positions" WHERE user_id = \$1`).
		WithArgs(uint(7)).
		WillReturnRows(positionRows())

	positions, err := repo.ListByUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("empty result must not fail: %v", err)
	}
	if len(positions) != 0 {
		t.Fatalf("expected no positions, got %d", len(positions))
	}
}

func TestPositionRepositoryFindByIDAndUserMiss(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&PositionRepository{}).WithDB(mockDB)

	mock.ExpectQuery(`SELECT \* FROM "positions" WHERE id = \$1 AND user_id = \$2`).
		WithArgs("pos-404", uint(1), 1).
		WillReturnRows(positionRows())

	position, err := repo.FindByIDAndUser(context.Background(), "pos-404", 1)
	if err != nil {
		t.Fatalf("a miss must map to (nil, nil): %v", err)
	}
	if position != nil {
		t.Fatalf("expected nil position, got %+v", position)
	}
}

func TestPositionRepositorySummaryByUser(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&PositionRepository{}).WithDB(mockDB)

	rows := sqlmock.NewRows([]string{
		"id", "asset_id", "name", "code", "currency_code",
		"quantity", "total_cost", "avg_cost", "total_market_value",
		"yield", "realized_pnl", "y_finance_compatible",
	}).AddRow("pos-1", "asset-1", "Apple Inc", "AAPL", "USD",
		"10", "30", "3", "1750", "0", "0", true)

	mock.ExpectQuery(`FROM positions p JOIN assets a ON a\.id = p\.asset_id WHERE p\.user_id = \$1`).
		WithArgs(uint(1)).
		WillReturnRows(rows)

	summaries, err := repo.SummaryByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error building summary: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary row, got %d", len(summaries))
	}
	if summaries[0].Code != "AAPL" || !summaries[0].YFinanceCompatible {
		t.Fatalf("asset metadata not joined: %+v", summaries[0])
	}
	if !summaries[0].TotalMarketValue.Equal(decimal.NewFromInt(1750)) {
		t.Fatalf("market value scanned wrong: %s", summaries[0].TotalMarketValue)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

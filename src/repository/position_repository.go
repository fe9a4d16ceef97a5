package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"assetledger/src/database"
	"assetledger/src/model"
)

// PositionRepository handles read/write operations on position aggregates.
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new repository instance using the main
// read/write database.
func NewPositionRepository() *PositionRepository {
	return &PositionRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *PositionRepository) WithDB(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// FindForUpdate loads the position for (user, asset) with a row lock, so the
// read-modify-write in the ledger is serialized against concurrent applies on
// the same key. Returns (nil, nil) when no position exists yet.
func (r *PositionRepository) FindForUpdate(ctx context.Context, userID uint, assetID string) (*model.Position, error) {
	var position model.Position
	query := r.db.WithContext(ctx)
	// sqlite has no row locks; its single writer plus the ledger's keyed
	// mutex provide the serialization there.
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.
		Where("user_id = ? AND asset_id = ?", userID, assetID).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(map[string]interface{}{
			"repo":  "PositionRepository",
			"op":    "FindForUpdate",
			"user":  userID,
			"asset": assetID,
		}).WithError(err).Error("Failed to lock position row")
		return nil, err
	}
	return &position, nil
}

// FindByAssetAndUser loads the position without locking.
// Returns (nil, nil) when absent.
func (r *PositionRepository) FindByAssetAndUser(ctx context.Context, userID uint, assetID string) (*model.Position, error) {
	var position model.Position
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND asset_id = ?", userID, assetID).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &position, nil
}

// FindByIDAndUser loads a position by id scoped to its owner.
// Returns (nil, nil) when absent.
func (r *PositionRepository) FindByIDAndUser(ctx context.Context, id string, userID uint) (*model.Position, error) {
	var position model.Position
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &position, nil
}

// ListByUser returns all positions for a user. An empty slice is a valid
// result, not an error.
func (r *PositionRepository) ListByUser(ctx context.Context, userID uint) ([]model.Position, error) {
	var positions []model.Position
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&positions).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "ListByUser",
			"user": userID,
		}).WithError(err).Error("Failed to list positions")
		return nil, err
	}
	return positions, nil
}

// Save persists a new or updated aggregate.
func (r *PositionRepository) Save(ctx context.Context, position *model.Position) error {
	if err := r.db.WithContext(ctx).Save(position).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "PositionRepository",
			"op":    "Save",
			"user":  position.UserID,
			"asset": position.AssetID,
		}).WithError(err).Error("Failed to persist position")
		return err
	}
	return nil
}

// SummaryByUser joins position aggregates with asset display metadata. The
// total market value uses the asset's stored reference price; live quotes are
// layered on top by the caller.
func (r *PositionRepository) SummaryByUser(ctx context.Context, userID uint) ([]model.PositionSummary, error) {
	var summaries []model.PositionSummary
	err := r.db.WithContext(ctx).
		Table("positions p").
		Select(`p.id, p.asset_id, a.name, a.code, a.currency_code,
			p.quantity, p.total_cost, p.avg_cost,
			a.market_value * p.quantity AS total_market_value,
			p.yield, p.realized_pnl,
			a.yfinance_compatible AS y_finance_compatible`).
		Joins("JOIN assets a ON a.id = p.asset_id").
		Where("p.user_id = ?", userID).
		Scan(&summaries).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "SummaryByUser",
			"user": userID,
		}).WithError(err).Error("Failed to build position summary")
		return nil, err
	}
	return summaries, nil
}

package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"assetledger/src/database"
	"assetledger/src/model"
)

// TransactionRepository handles read/write operations on the transaction log.
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new repository instance using the main
// read/write database.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *TransactionRepository) WithDB(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create appends a transaction to the log.
func (r *TransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	logger.WithFields(map[string]interface{}{
		"repo":  "TransactionRepository",
		"op":    "Create",
		"asset": tx.AssetID,
		"type":  tx.TransactionTypeKey,
	}).Debug("Appending transaction")

	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TransactionRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to append transaction")
		return err
	}
	return nil
}

// FindByID fetches a single transaction by id. Returns (nil, nil) when the
// transaction does not exist.
func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	var tx model.Transaction
	err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(map[string]interface{}{
			"repo": "TransactionRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch transaction")
		return nil, err
	}
	return &tx, nil
}

// FindByAsset returns every transaction recorded for an asset, oldest first.
// The order matches the replay order used by the ledger.
func (r *TransactionRepository) FindByAsset(ctx context.Context, assetID string) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("occurred_at ASC, created_at ASC, id ASC").
		Find(&txs).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "TransactionRepository",
			"op":    "FindByAsset",
			"asset": assetID,
		}).WithError(err).Error("Failed to list asset transactions")
		return nil, err
	}
	return txs, nil
}

// Update rewrites an amended transaction in place. The ledger is responsible
// for replaying the aggregate afterwards, inside the same critical section.
func (r *TransactionRepository) Update(ctx context.Context, tx *model.Transaction) error {
	logger.WithFields(map[string]interface{}{
		"repo": "TransactionRepository",
		"op":   "Update",
		"id":   tx.ID,
	}).Debug("Amending transaction")

	if err := r.db.WithContext(ctx).Save(tx).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TransactionRepository",
			"op":   "Update",
			"id":   tx.ID,
		}).WithError(err).Error("Failed to amend transaction")
		return err
	}
	return nil
}

// Delete removes a transaction from the log. Like Update, the caller must
// replay the affected position afterwards.
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&model.Transaction{}, "id = ?", id)
	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TransactionRepository",
			"op":   "Delete",
			"id":   id,
		}).WithError(result.Error).Error("Failed to delete transaction")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

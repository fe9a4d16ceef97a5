package refdata

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"assetledger/src/database"
	"assetledger/src/model"
)

// Gatekeeper answers existence and ownership questions against the reference
// catalogs. It is the only thing the validator consults besides the candidate
// transaction itself.
type Gatekeeper struct {
	db *gorm.DB
}

// NewGatekeeper creates a gatekeeper backed by the main database.
func NewGatekeeper() *Gatekeeper {
	return &Gatekeeper{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (g *Gatekeeper) WithDB(db *gorm.DB) *Gatekeeper {
	return &Gatekeeper{db: db}
}

func (g *Gatekeeper) CurrencyExists(ctx context.Context, code string) (bool, error) {
	return g.exists(ctx, &model.Currency{}, "code = ?", code)
}

func (g *Gatekeeper) AssetTypeExists(ctx context.Context, code string) (bool, error) {
	return g.exists(ctx, &model.AssetType{}, "code = ?", code)
}

func (g *Gatekeeper) TransactionTypeExists(ctx context.Context, key string) (bool, error) {
	return g.exists(ctx, &model.TransactionType{}, "key = ?", key)
}

// AssetOwnedBy reports whether the asset exists and belongs to the given user.
// A missing asset and a foreign asset both return false; the validator decides
// how to report each.
func (g *Gatekeeper) AssetOwnedBy(ctx context.Context, assetID string, userID uint) (bool, error) {
	return g.exists(ctx, &model.Asset{}, "id = ? AND user_id = ?", assetID, userID)
}

// AssetExists reports whether the asset exists at all, regardless of owner.
func (g *Gatekeeper) AssetExists(ctx context.Context, assetID string) (bool, error) {
	return g.exists(ctx, &model.Asset{}, "id = ?", assetID)
}

func (g *Gatekeeper) exists(ctx context.Context, mdl any, query string, args ...any) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(mdl).Where(query, args...).Count(&count).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		logger.WithFields(map[string]interface{}{
			"component": "Gatekeeper",
			"query":     query,
		}).WithError(err).Error("Reference lookup failed")
		return false, err
	}
	return count > 0, nil
}

// ListCurrencies returns every currency available for transactions.
func (g *Gatekeeper) ListCurrencies(ctx context.Context) ([]model.Currency, error) {
	var currencies []model.Currency
	if err := g.db.WithContext(ctx).Order("code").Find(&currencies).Error; err != nil {
		return nil, err
	}
	return currencies, nil
}

// ListAssetTypes returns the asset type catalog.
func (g *Gatekeeper) ListAssetTypes(ctx context.Context) ([]model.AssetType, error) {
	var types []model.AssetType
	if err := g.db.WithContext(ctx).Order("code").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// ListTransactionTypes returns the transaction type catalog.
func (g *Gatekeeper) ListTransactionTypes(ctx context.Context) ([]model.TransactionType, error) {
	var types []model.TransactionType
	if err := g.db.WithContext(ctx).Order("key").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

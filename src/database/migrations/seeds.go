package migrations

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"assetledger/src/model"
)

// Reference catalogs are immutable from the application's point of view; the
// seeds below only insert missing rows and never overwrite existing ones.

func seedTransactionTypes(db *gorm.DB) error {
	types := []model.TransactionType{
		{Key: model.TransactionTypeBuy, Name: "Buy", Description: "Increases the position; affects quantity and average cost"},
		{Key: model.TransactionTypeSell, Name: "Sell", Description: "Decreases the position; realizes P&L against the average cost"},
		{Key: model.TransactionTypeIncome, Name: "Income", Description: "Generic asset income (e.g. rent, dividends); does not change cost"},
		{Key: model.TransactionTypeExpense, Name: "Expense", Description: "Generic asset expense (e.g. maintenance, taxes); does not change cost"},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&types).Error
}

func seedCurrencies(db *gorm.DB) error {
	currencies := []model.Currency{
		{Code: "BRL", Name: "Brazilian Real", Symbol: "R$"},
		{Code: "USD", Name: "US Dollar", Symbol: "$"},
		{Code: "EUR", Name: "Euro", Symbol: "€"},
		{Code: "GBP", Name: "Pound Sterling", Symbol: "£"},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&currencies).Error
}

func seedAssetTypes(db *gorm.DB) error {
	types := []model.AssetType{
		{Code: "STOCK", Name: "Stock", Description: "Exchange-listed equity"},
		{Code: "ETF", Name: "ETF", Description: "Exchange-traded fund"},
		{Code: "FIXED_INCOME", Name: "Fixed Income", Description: "Bonds and other fixed income instruments"},
		{Code: "REAL_ESTATE", Name: "Real Estate", Description: "Property held directly"},
		{Code: "CRYPTO", Name: "Crypto", Description: "Cryptocurrency holdings"},
		{Code: "OTHER", Name: "Other", Description: "Anything that does not fit the above"},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&types).Error
}

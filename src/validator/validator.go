package validator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"assetledger/src/apperrors"
	"assetledger/src/decimals"
	"assetledger/src/model"
)

// ReferenceData is the slice of the gatekeeper the validator needs.
type ReferenceData interface {
	CurrencyExists(ctx context.Context, code string) (bool, error)
	TransactionTypeExists(ctx context.Context, key string) (bool, error)
	AssetOwnedBy(ctx context.Context, assetID string, userID uint) (bool, error)
	AssetExists(ctx context.Context, assetID string) (bool, error)
}

// Candidate is a proposed transaction as submitted by a caller. Quantity and
// UnitPrice arrive as strings so their decimal shape can be checked before any
// numeric conversion.
type Candidate struct {
	UserID             uint
	AssetID            string
	TransactionTypeKey string
	Quantity           string
	UnitPrice          string
	CurrencyCode       string
	Description        string
	OccurredAt         *time.Time
}

// Validator normalizes and validates candidates before they are admitted to
// the ledger. It is pure: no state is mutated, the reference data is only read.
type Validator struct {
	refs ReferenceData
	now  func() time.Time
}

func New(refs ReferenceData) *Validator {
	return &Validator{refs: refs, now: time.Now}
}

// WithClock overrides the submission-time source. Useful for tests.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	return &Validator{refs: v.refs, now: now}
}

// Validate returns the normalized transaction (decimals canonicalized to
// scale 8, occurred-at defaulted) or a typed failure. Shape failures are
// ValidationError; catalog misses are NotFoundError; ownership mismatch is
// UnauthorizedError.
func (v *Validator) Validate(ctx context.Context, c Candidate) (*model.Transaction, error) {
	if err := assertMandatory(c); err != nil {
		return nil, err
	}

	quantity, err := decimals.ParseAmount("quantity", c.Quantity)
	if err != nil {
		return nil, err
	}
	unitPrice, err := decimals.ParseAmount("unit_price", c.UnitPrice)
	if err != nil {
		return nil, err
	}

	occurredAt := v.now().UTC()
	if c.OccurredAt != nil {
		occurredAt = c.OccurredAt.UTC()
	}

	if err := v.assertReferences(ctx, c); err != nil {
		return nil, err
	}

	return &model.Transaction{
		ID:                 uuid.NewString(),
		UserID:             c.UserID,
		AssetID:            c.AssetID,
		TransactionTypeKey: c.TransactionTypeKey,
		Quantity:           quantity,
		UnitPrice:          unitPrice,
		Description:        c.Description,
		CurrencyCode:       c.CurrencyCode,
		OccurredAt:         occurredAt,
	}, nil
}

func assertMandatory(c Candidate) error {
	var missing []string
	if c.UserID == 0 {
		missing = append(missing, "user_id")
	}
	if c.AssetID == "" {
		missing = append(missing, "asset_id")
	}
	if c.TransactionTypeKey == "" {
		missing = append(missing, "transaction_type_key")
	}
	if c.Quantity == "" {
		missing = append(missing, "quantity")
	}
	if c.UnitPrice == "" {
		missing = append(missing, "unit_price")
	}
	if c.CurrencyCode == "" {
		missing = append(missing, "currency_code")
	}
	if len(missing) > 0 {
		return &apperrors.ValidationError{
			Message: "Mandatory fields cannot be empty nor null",
			Action:  "Please review submitted data",
			Fields:  missing,
		}
	}
	return nil
}

func (v *Validator) assertReferences(ctx context.Context, c Candidate) error {
	ok, err := v.refs.CurrencyExists(ctx, c.CurrencyCode)
	if err != nil {
		return &apperrors.StorageError{Message: "currency lookup failed", Err: err}
	}
	if !ok {
		return &apperrors.NotFoundError{
			Message: "Currency Not Found",
			Action:  "Please check if the currency code is correct",
		}
	}

	ok, err = v.refs.TransactionTypeExists(ctx, c.TransactionTypeKey)
	if err != nil {
		return &apperrors.StorageError{Message: "transaction type lookup failed", Err: err}
	}
	if !ok {
		return &apperrors.NotFoundError{
			Message: "Transaction Type Not Found",
			Action:  "Please check if the transaction type key is correct",
		}
	}

	ok, err = v.refs.AssetOwnedBy(ctx, c.AssetID, c.UserID)
	if err != nil {
		return &apperrors.StorageError{Message: "asset lookup failed", Err: err}
	}
	if ok {
		return nil
	}

	// Distinguish a missing asset from someone else's asset.
	exists, err := v.refs.AssetExists(ctx, c.AssetID)
	if err != nil {
		return &apperrors.StorageError{Message: "asset lookup failed", Err: err}
	}
	if !exists {
		return &apperrors.NotFoundError{
			Message: "Asset Not Found",
			Action:  "Please check the asset id",
		}
	}
	return &apperrors.UnauthorizedError{
		Message: "Asset and user are not related",
		Action:  "Please check if asset_id and user_id are correct",
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"assetledger/src/auth"
	"assetledger/src/ledger"
	"assetledger/src/model"
	"assetledger/src/refdata"
	"assetledger/src/repository"
	"assetledger/src/validator"
)

type transactionValidator interface {
	Validate(ctx context.Context, c validator.Candidate) (*model.Transaction, error)
}

type positionLedger interface {
	Apply(ctx context.Context, tx *model.Transaction) (*model.Position, error)
	Amend(ctx context.Context, amended *model.Transaction) (*model.Position, error)
	Remove(ctx context.Context, userID uint, transactionID string) (*model.Position, error)
}

type transactionReader interface {
	FindByID(ctx context.Context, id string) (*model.Transaction, error)
	FindByAsset(ctx context.Context, assetID string) ([]model.Transaction, error)
}

type assetOwnership interface {
	AssetOwnedBy(ctx context.Context, assetID string, userID uint) (bool, error)
}

type transactionRequest struct {
	AssetID            string     `json:"asset_id"`
	TransactionTypeKey string     `json:"transaction_type_key"`
	Quantity           string     `json:"quantity"`
	UnitPrice          string     `json:"unit_price"`
	CurrencyCode       string     `json:"currency_code"`
	Description        string     `json:"description"`
	OccurredAt         *time.Time `json:"occurred_at"`
}

// SubmitTransactionHandler validates a proposed transaction and folds it into
// the owner's position, returning the updated aggregate.
func SubmitTransactionHandler(v transactionValidator, l positionLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req transactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		tx, err := v.Validate(r.Context(), validator.Candidate{
			UserID:             userID,
			AssetID:            req.AssetID,
			TransactionTypeKey: req.TransactionTypeKey,
			Quantity:           req.Quantity,
			UnitPrice:          req.UnitPrice,
			CurrencyCode:       req.CurrencyCode,
			Description:        req.Description,
			OccurredAt:         req.OccurredAt,
		})
		if err != nil {
			respondFailure(w, err)
			return
		}

		position, err := l.Apply(r.Context(), tx)
		if err != nil {
			respondFailure(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, position)
	}
}

// AmendTransactionHandler rewrites an existing transaction. Omitted fields
// keep their current values; the affected position is replayed from the full
// history before the response is written.
func AmendTransactionHandler(v transactionValidator, l positionLedger, txs transactionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		transactionID := chi.URLParam(r, "id")

		var req struct {
			AssetID            *string    `json:"asset_id"`
			TransactionTypeKey *string    `json:"transaction_type_key"`
			Quantity           *string    `json:"quantity"`
			UnitPrice          *string    `json:"unit_price"`
			CurrencyCode       *string    `json:"currency_code"`
			Description        *string    `json:"description"`
			OccurredAt         *time.Time `json:"occurred_at"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		existing, err := txs.FindByID(r.Context(), transactionID)
		if err != nil {
			respondFailure(w, err)
			return
		}
		if existing == nil || existing.UserID != userID {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}

		candidate := validator.Candidate{
			UserID:             userID,
			AssetID:            existing.AssetID,
			TransactionTypeKey: existing.TransactionTypeKey,
			Quantity:           existing.Quantity.String(),
			UnitPrice:          existing.UnitPrice.String(),
			CurrencyCode:       existing.CurrencyCode,
			Description:        existing.Description,
			OccurredAt:         &existing.OccurredAt,
		}
		if req.AssetID != nil {
			candidate.AssetID = *req.AssetID
		}
		if req.TransactionTypeKey != nil {
			candidate.TransactionTypeKey = *req.TransactionTypeKey
		}
		if req.Quantity != nil {
			candidate.Quantity = *req.Quantity
		}
		if req.UnitPrice != nil {
			candidate.UnitPrice = *req.UnitPrice
		}
		if req.CurrencyCode != nil {
			candidate.CurrencyCode = *req.CurrencyCode
		}
		if req.Description != nil {
			candidate.Description = *req.Description
		}
		if req.OccurredAt != nil {
			candidate.OccurredAt = req.OccurredAt
		}

		amended, err := v.Validate(r.Context(), candidate)
		if err != nil {
			respondFailure(w, err)
			return
		}
		amended.ID = existing.ID

		position, err := l.Amend(r.Context(), amended)
		if err != nil {
			respondFailure(w, err)
			return
		}

		respondJSON(w, http.StatusOK, position)
	}
}

// DeleteTransactionHandler removes a log entry and replays the affected
// position.
func DeleteTransactionHandler(l positionLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		position, err := l.Remove(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			respondFailure(w, err)
			return
		}

		respondJSON(w, http.StatusOK, position)
	}
}

// ListAssetTransactionsHandler returns an asset's transaction history, oldest
// first, after checking the asset belongs to the caller.
func ListAssetTransactionsHandler(txs transactionReader, refs assetOwnership) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		assetID := chi.URLParam(r, "asset_id")
		owned, err := refs.AssetOwnedBy(r.Context(), assetID, userID)
		if err != nil {
			respondFailure(w, err)
			return
		}
		if !owned {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		history, err := txs.FindByAsset(r.Context(), assetID)
		if err != nil {
			respondFailure(w, err)
			return
		}
		if history == nil {
			history = []model.Transaction{}
		}
		respondJSON(w, http.StatusOK, history)
	}
}

// DefaultSubmitTransactionHandler wires the handler to production components.
func DefaultSubmitTransactionHandler() http.HandlerFunc {
	return SubmitTransactionHandler(validator.New(refdata.NewGatekeeper()), ledger.Default())
}

// DefaultAmendTransactionHandler wires the handler to production components.
func DefaultAmendTransactionHandler() http.HandlerFunc {
	return AmendTransactionHandler(validator.New(refdata.NewGatekeeper()), ledger.Default(), repository.NewTransactionRepository())
}

// DefaultDeleteTransactionHandler wires the handler to production components.
func DefaultDeleteTransactionHandler() http.HandlerFunc {
	return DeleteTransactionHandler(ledger.Default())
}

// DefaultListAssetTransactionsHandler wires the handler to production components.
func DefaultListAssetTransactionsHandler() http.HandlerFunc {
	return ListAssetTransactionsHandler(repository.NewTransactionRepository(), refdata.NewGatekeeper())
}

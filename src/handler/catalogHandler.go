package handler

import (
	"context"
	"net/http"

	"assetledger/src/auth"
	"assetledger/src/model"
	"assetledger/src/refdata"
)

type catalogReader interface {
	ListCurrencies(ctx context.Context) ([]model.Currency, error)
	ListAssetTypes(ctx context.Context) ([]model.AssetType, error)
	ListTransactionTypes(ctx context.Context) ([]model.TransactionType, error)
}

// ListCurrenciesHandler returns the currency catalog.
func ListCurrenciesHandler(catalog catalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.GetUserIDFromContext(r.Context()); !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		currencies, err := catalog.ListCurrencies(r.Context())
		if err != nil {
			respondFailure(w, err)
			return
		}
		respondJSON(w, http.StatusOK, currencies)
	}
}

// ListAssetTypesHandler returns the asset type catalog.
func ListAssetTypesHandler(catalog catalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.GetUserIDFromContext(r.Context()); !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		types, err := catalog.ListAssetTypes(r.Context())
		if err != nil {
			respondFailure(w, err)
			return
		}
		respondJSON(w, http.StatusOK, types)
	}
}

// ListTransactionTypesHandler returns the transaction type catalog.
func ListTransactionTypesHandler(catalog catalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.GetUserIDFromContext(r.Context()); !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		types, err := catalog.ListTransactionTypes(r.Context())
		if err != nil {
			respondFailure(w, err)
			return
		}
		respondJSON(w, http.StatusOK, types)
	}
}

// DefaultListCurrenciesHandler wires the handler to the production gatekeeper.
func DefaultListCurrenciesHandler() http.HandlerFunc {
	return ListCurrenciesHandler(refdata.NewGatekeeper())
}

func DefaultListAssetTypesHandler() http.HandlerFunc {
	return ListAssetTypesHandler(refdata.NewGatekeeper())
}

func DefaultListTransactionTypesHandler() http.HandlerFunc {
	return ListTransactionTypesHandler(refdata.NewGatekeeper())
}

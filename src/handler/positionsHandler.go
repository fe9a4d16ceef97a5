package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"assetledger/src/auth"
	"assetledger/src/decimals"
	"assetledger/src/marketdata"
	"assetledger/src/model"
	"assetledger/src/repository"
)

type positionReader interface {
	FindByIDAndUser(ctx context.Context, id string, userID uint) (*model.Position, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Position, error)
	SummaryByUser(ctx context.Context, userID uint) ([]model.PositionSummary, error)
}

// GetPositionHandler returns a single position by id, scoped to the caller.
func GetPositionHandler(positions positionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		position, err := positions.FindByIDAndUser(r.Context(), chi.URLParam(r, "id"), userID)
		if err != nil {
			respondFailure(w, err)
			return
		}
		if position == nil {
			respondJSON(w, http.StatusNotFound, errorResponse{
				Message: "Position Not Found",
				Action:  "Please check the position id",
			})
			return
		}

		respondJSON(w, http.StatusOK, position)
	}
}

// ListPositionsHandler returns every position the caller holds. An empty list
// is a valid result.
func ListPositionsHandler(positions positionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		list, err := positions.ListByUser(r.Context(), userID)
		if err != nil {
			respondFailure(w, err)
			return
		}
		if list == nil {
			list = []model.Position{}
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// PositionsSummaryHandler joins position aggregates with asset metadata and
// layers best-effort live quotes on top. A failing quote provider only means
// the live fields are omitted; the summary itself always succeeds.
func PositionsSummaryHandler(positions positionReader, prices marketdata.PriceProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		summaries, err := positions.SummaryByUser(r.Context(), userID)
		if err != nil {
			respondFailure(w, err)
			return
		}
		if summaries == nil {
			summaries = []model.PositionSummary{}
		}

		for i := range summaries {
			if !summaries[i].YFinanceCompatible || prices == nil {
				continue
			}
			price, _, err := prices.CurrentPrice(r.Context(), summaries[i].Code)
			if err != nil {
				logger.WithFields(map[string]interface{}{
					"component": "PositionsSummaryHandler",
					"code":      summaries[i].Code,
				}).WithError(err).Debug("No live quote, using stored market value")
				continue
			}
			value := decimals.Canonical(price.Mul(summaries[i].Quantity))
			summaries[i].LivePrice = decimalPtr(price)
			summaries[i].LiveValue = decimalPtr(value)
		}

		respondJSON(w, http.StatusOK, summaries)
	}
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

var defaultPriceProvider marketdata.PriceProvider = marketdata.NewYahooClient("")

// DefaultGetPositionHandler wires the handler to the production repository.
func DefaultGetPositionHandler() http.HandlerFunc {
	return GetPositionHandler(repository.NewPositionRepository())
}

// DefaultListPositionsHandler wires the handler to the production repository.
func DefaultListPositionsHandler() http.HandlerFunc {
	return ListPositionsHandler(repository.NewPositionRepository())
}

// DefaultPositionsSummaryHandler wires the handler to the production
// repository and quote client.
func DefaultPositionsSummaryHandler() http.HandlerFunc {
	return PositionsSummaryHandler(repository.NewPositionRepository(), defaultPriceProvider)
}

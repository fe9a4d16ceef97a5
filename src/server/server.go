package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"assetledger/src/auth"
	"assetledger/src/handler"
)

// NewRouter builds the API surface. Everything under /api/v1 requires a
// resolved owner; the healthcheck does not.
func NewRouter() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck write failed")
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Post("/transactions", handler.DefaultSubmitTransactionHandler())
		r.Patch("/transactions/{id}", handler.DefaultAmendTransactionHandler())
		r.Delete("/transactions/{id}", handler.DefaultDeleteTransactionHandler())
		r.Get("/transactions/{asset_id}", handler.DefaultListAssetTransactionsHandler())

		r.Get("/positions", handler.DefaultListPositionsHandler())
		r.Get("/positions/summary", handler.DefaultPositionsSummaryHandler())
		r.Get("/positions/{id}", handler.DefaultGetPositionHandler())

		r.Get("/currencies", handler.DefaultListCurrenciesHandler())
		r.Get("/asset_types", handler.DefaultListAssetTypesHandler())
		r.Get("/transaction_types", handler.DefaultListTransactionTypesHandler())
	})

	return r
}

func StartServer(port string) {
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(),
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"assetledger/src/apperrors"
)

type errorResponse struct {
	Message string   `json:"message"`
	Action  string   `json:"action,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

// respondFailure maps the failure taxonomy onto HTTP statuses. Anything not in
// the taxonomy is an internal error and its detail stays out of the response.
func respondFailure(w http.ResponseWriter, err error) {
	var validation *apperrors.ValidationError
	if errors.As(err, &validation) {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Message: validation.Message,
			Action:  validation.Action,
			Fields:  validation.Fields,
		})
		return
	}

	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		respondJSON(w, http.StatusNotFound, errorResponse{
			Message: notFound.Message,
			Action:  notFound.Action,
		})
		return
	}

	var unauthorized *apperrors.UnauthorizedError
	if errors.As(err, &unauthorized) {
		respondJSON(w, http.StatusForbidden, errorResponse{
			Message: unauthorized.Message,
			Action:  unauthorized.Action,
		})
		return
	}

	var conflict *apperrors.ConflictError
	if errors.As(err, &conflict) {
		respondJSON(w, http.StatusConflict, errorResponse{
			Message: conflict.Message,
			Action:  "Please retry the request",
		})
		return
	}

	logger.WithError(err).Error("request failed")
	respondJSON(w, http.StatusInternalServerError, errorResponse{
		Message: "Internal Server Error",
	})
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Josh363/small-business-app/internal/api/middleware"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/infrastructure/observability"
	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

type listResponse struct {
	Success    bool             `json:"success"`
	Count      int              `json:"count"`
	Pagination query.Pagination `json:"pagination"`
	Data       interface{}      `json:"data"`
}

type countResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Data    interface{} `json:"data"`
}

type dataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

func respondWithData(w http.ResponseWriter, statusCode int, data interface{}) {
	respondWithJSON(w, statusCode, dataResponse{Success: true, Data: data})
}

// respondWithAppError writes classified errors with their message. Anything
// that maps to a 500 is logged in full and reported as a bare server error.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.LoggerFromContext(r.Context())

	appErr, ok := apperrors.As(err)
	if !ok || appErr.HTTPStatus() == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		respondWithError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	if appErr.Type == apperrors.ErrorTypeExternal {
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Upstream failure")
	}
	respondWithError(w, appErr.HTTPStatus(), appErr.Message)
}

// respondWithPage projects a page onto the selected fields
func respondWithPage[T any](w http.ResponseWriter, r *http.Request, page *query.Page[T], fields []string) {
	data, err := query.ProjectAll(page.Items, fields)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, listResponse{
		Success:    true,
		Count:      len(data),
		Pagination: page.Pagination,
		Data:       data,
	})
}

// decodeJSON reads a JSON request body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.NewValidationError("Request body is empty")
		case errors.As(err, &tooLarge):
			return apperrors.NewValidationError("Request body is too large")
		}
		return apperrors.NewValidationError("Invalid request payload")
	}
	return nil
}

func currentUser(r *http.Request) *entities.User {
	return middleware.UserFromContext(r.Context())
}

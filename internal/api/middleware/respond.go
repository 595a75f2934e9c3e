package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

func writeAppError(w http.ResponseWriter, err error) {
	if appErr, ok := apperrors.As(err); ok && appErr.HTTPStatus() < http.StatusInternalServerError {
		writeError(w, appErr.HTTPStatus(), appErr.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, "Server Error")
}

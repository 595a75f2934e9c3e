package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS admits browser requests from allowedOrigins and carries the token cookie
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"X-Cache", "ETag"},
		AllowCredentials: true,
		MaxAge:           600,
	})
	return c.Handler
}

package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

const corsMaxAgeSeconds = 300

// CORS allows the configured origins. An origin may use a single "*"
// wildcard, e.g. "https://*.vercel.app".
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           corsMaxAgeSeconds,
	})
}

package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows cross-origin GET requests from origins. An empty list or "*"
// allows any origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", HeaderRequestID},
		ExposedHeaders: []string{HeaderRequestID, "Retry-After"},
		MaxAge:         300,
	})
}

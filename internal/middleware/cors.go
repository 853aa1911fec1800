package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware that applies the cross-origin policy for origins.
// Preflight requests fall through so Preflight can answer them.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:     origins,
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:     []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:     []string{RequestIDHeader},
		OptionsPassthrough: true,
		MaxAge:             300,
	})
}

// Preflight answers every OPTIONS request with an empty 200 body.
func Preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

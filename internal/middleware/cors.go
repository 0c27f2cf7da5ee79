package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the web dashboard origins; the mobile app talks to the API
// without an Origin header and is unaffected. OPTIONS preflights always get
// a 200 so a misconfigured origin list fails loud in the browser console,
// not as a silent 403.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

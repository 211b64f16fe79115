package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// devOrigins are the web portal's local dev servers
var devOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:3000",
}

// PortalCORS allows the web portal to call the API with credentials so the
// refresh cookie is sent. frontendURL may list several origins separated by
// commas; the local dev servers are added outside production.
func PortalCORS(frontendURL, environment string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   portalOrigins(frontendURL, environment),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           600,
	})
}

func portalOrigins(frontendURL, environment string) []string {
	seen := make(map[string]bool)
	var origins []string
	add := func(o string) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" && !seen[o] {
			seen[o] = true
			origins = append(origins, o)
		}
	}

	for _, o := range strings.Split(frontendURL, ",") {
		add(o)
	}
	if environment != "production" {
		for _, o := range devOrigins {
			add(o)
		}
	}
	return origins
}

package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qsecurex/portal/internal/api/handlers"
	"github.com/qsecurex/portal/internal/auth"
	"github.com/qsecurex/portal/internal/config"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/testutil"
)

func TestRouter_AccessControl(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{FrontendURL: "http://localhost:5173"},
		Auth:   config.AuthConfig{JWTSecret: "router-secret"},
	}
	log := logger.Nop()
	db := testutil.NewTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New(ctx, cfg, log, &Handlers{
		Health: handlers.NewHealthHandler(db, handlers.Backends{}, log),
	})

	userToken, err := auth.MintTokens("u1", "u@example.com", "user", cfg.Auth.JWTSecret, time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"readyz", http.MethodGet, "/readyz", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"download needs auth", http.MethodGet, "/api/download/macos-dmg", "", http.StatusUnauthorized},
		{"payment needs auth", http.MethodPost, "/api/payment/verify", "", http.StatusUnauthorized},
		{"admin needs auth", http.MethodGet, "/api/admin/stats", "", http.StatusUnauthorized},
		{"admin rejects users", http.MethodGet, "/api/admin/stats", userToken.AccessToken, http.StatusForbidden},
		{"approve rejects users", http.MethodPost, "/api/admin/licenses/free-requests/x/approve", userToken.AccessToken, http.StatusForbidden},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rr.Code, tt.wantStatus)
			}
			if rr.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID header")
			}
		})
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"regexp"
	"testing"
)

func TestPortalOrigins(t *testing.T) {
	tests := []struct {
		name        string
		frontendURL string
		environment string
		want        []string
	}{
		{
			name:        "production keeps configured origins only",
			frontendURL: "https://portal.qsecurex.com/, https://www.qsecurex.com",
			environment: "production",
			want:        []string{"https://portal.qsecurex.com", "https://www.qsecurex.com"},
		},
		{
			name:        "development adds local servers once",
			frontendURL: "http://localhost:5173",
			environment: "development",
			want:        []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := portalOrigins(tt.frontendURL, tt.environment); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("portalOrigins() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPortalCORS_Preflight(t *testing.T) {
	h := PortalCORS("https://portal.qsecurex.com", "production")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/refresh", nil)
	req.Header.Set("Origin", "https://portal.qsecurex.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://portal.qsecurex.com" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/auth/refresh", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("dev origin allowed in production: %q", got)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))
	uuidLike := regexp.MustCompile(`^[0-9a-f-]{36}$`)

	tests := []struct {
		name    string
		inbound string
		keep    bool
	}{
		{"generated when absent", "", false},
		{"caller id kept", "edge-7f3a9c21", true},
		{"too short replaced", "abc", false},
		{"log injection replaced", "ok-id-1234\nlevel=error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/licenses", nil)
			if tt.inbound != "" {
				req.Header.Set(RequestIDHeader, tt.inbound)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if got := rr.Header().Get(RequestIDHeader); got != seen {
				t.Errorf("response id %q != context id %q", got, seen)
			}
			if tt.keep && seen != tt.inbound {
				t.Errorf("id = %q, want %q", seen, tt.inbound)
			}
			if !tt.keep && !uuidLike.MatchString(seen) {
				t.Errorf("id = %q, want a fresh uuid", seen)
			}
		})
	}
}

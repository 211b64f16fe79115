package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/qsecurex/portal/internal/api/dto"
	"github.com/qsecurex/portal/internal/auth"
	"github.com/qsecurex/portal/internal/config"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/validator"
	"github.com/qsecurex/portal/internal/repository/postgres"
	"github.com/qsecurex/portal/internal/services"
	"github.com/qsecurex/portal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Refresh(t *testing.T) {
	db := testutil.NewTestDB(t)
	cfg := &config.Config{Auth: config.AuthConfig{
		JWTSecret:          "refresh-secret",
		AccessTokenExpiry:  time.Minute,
		RefreshTokenExpiry: time.Hour,
		BCryptCost:         4,
	}}
	log := logger.Nop()
	h := NewAuthHandler(services.NewUserService(postgres.NewUserRepository(db), cfg.Auth, log), cfg, log, validator.New())

	u := testutil.CreateUser(t, db, "demoted@example.com")
	pair, err := auth.MintTokens(u.ID, u.Email, "admin", cfg.Auth.JWTSecret, time.Minute, time.Hour)
	require.NoError(t, err)

	refresh := func(body string, cookie string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: "refreshToken", Value: cookie})
		}
		rr := httptest.NewRecorder()
		h.Refresh(rr, req)
		return rr
	}

	t.Run("access token is not accepted", func(t *testing.T) {
		rr := refresh(`{"refreshToken":"`+pair.AccessToken+`"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("role comes from the stored user", func(t *testing.T) {
		rr := refresh(`{"refreshToken":"`+pair.RefreshToken+`"}`, "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		env := decode(t, rr)
		var resp dto.AuthResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))

		claims, err := auth.ParseAccessClaims(resp.AccessToken, cfg.Auth.JWTSecret)
		require.NoError(t, err)
		assert.Equal(t, "user", claims.Role)
	})

	t.Run("cookie", func(t *testing.T) {
		rr := refresh("", pair.RefreshToken)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("deleted user", func(t *testing.T) {
		_, err := db.Exec(`DELETE FROM users WHERE id = $1`, u.ID)
		require.NoError(t, err)
		rr := refresh(`{"refreshToken":"`+pair.RefreshToken+`"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

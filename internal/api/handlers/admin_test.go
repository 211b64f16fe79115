package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qsecurex/portal/internal/domain/download"
	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/testutil"
)

func TestAdminHandler_ToggleDownloads(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateAdmin(t, env.db, "ops@example.com")
	u := testutil.CreateUser(t, env.db, "u@example.com")

	rr := httptest.NewRecorder()
	env.admin.ToggleDownloads(rr, newRequest(http.MethodPost, "/api/admin/download-settings/toggle", map[string]string{}, admin))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("toggle without enabled status = %d, want 400", rr.Code)
	}

	rr = httptest.NewRecorder()
	env.admin.ToggleDownloads(rr, newRequest(http.MethodPost, "/api/admin/download-settings/toggle", map[string]bool{"enabled": false}, admin))
	var s download.Settings
	if err := json.Unmarshal(decode(t, rr).Data, &s); err != nil {
		t.Fatal(err)
	}
	if s.Enabled || s.Remaining != download.GlobalFreeLimit {
		t.Errorf("settings = %+v", s)
	}

	rr = httptest.NewRecorder()
	env.download.CheckEligibility(rr, newRequest(http.MethodGet, "/api/download/check-eligibility", nil, u))
	var e download.Eligibility
	if err := json.Unmarshal(decode(t, rr).Data, &e); err != nil {
		t.Fatal(err)
	}
	if e.Eligible || e.Code != download.CodeDisabled {
		t.Errorf("eligibility = %+v", e)
	}
}

func TestAdminHandler_SendLicense(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateAdmin(t, env.db, "ops@example.com")
	u := testutil.CreateUser(t, env.db, "customer@example.com")

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{"sent", map[string]string{"userId": u.ID, "plan": "pro", "licenseKey": "QSEC-AAAA-BBBB-CCCC"}, http.StatusCreated},
		{"duplicate key", map[string]string{"userId": admin.ID, "plan": "pro", "licenseKey": "QSEC-AAAA-BBBB-CCCC"}, http.StatusConflict},
		{"bad plan", map[string]string{"userId": u.ID, "plan": "gold", "licenseKey": "QSEC-X"}, http.StatusBadRequest},
		{"key with spaces", map[string]string{"userId": u.ID, "plan": "personal", "licenseKey": "QSEC X"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			env.admin.SendLicense(rr, newRequest(http.MethodPost, "/api/admin/send-license", tt.body, admin))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus == http.StatusCreated {
				var l license.License
				if err := json.Unmarshal(decode(t, rr).Data, &l); err != nil {
					t.Fatal(err)
				}
				if l.MaxDevices != 3 || l.SentAt == nil {
					t.Errorf("license = %+v", l)
				}
			}
		})
	}
}

func TestAdminHandler_DeleteUser(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateAdmin(t, env.db, "ops@example.com")
	u := testutil.CreateUser(t, env.db, "gone@example.com")

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{"self", admin.ID, http.StatusBadRequest},
		{"user", u.ID, http.StatusNoContent},
		{"already deleted", u.ID, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			env.admin.DeleteUser(rr, newRequest(http.MethodDelete, "/api/admin/users/"+tt.id, nil, admin, "id", tt.id))
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestAdminHandler_ResetDownloads(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateAdmin(t, env.db, "ops@example.com")
	for _, email := range []string{"a@example.com", "b@example.com"} {
		u := testutil.CreateUser(t, env.db, email)
		rr := httptest.NewRecorder()
		env.download.FreeDMG(rr, newRequest(http.MethodGet, "/api/download/macos-dmg", nil, u))
		if rr.Code != http.StatusFound {
			t.Fatalf("download for %s = %d", email, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	env.admin.ResetDownloads(rr, newRequest(http.MethodPost, "/api/admin/download-settings/reset", nil, admin))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var body map[string]interface{}
	if err := json.Unmarshal(decode(t, rr).Data, &body); err != nil {
		t.Fatal(err)
	}
	if got, ok := body["deletedCount"]; !ok || got != float64(2) {
		t.Errorf("data = %v, want deletedCount 2", body)
	}
	if len(body) != 1 {
		t.Errorf("unexpected keys in %v", body)
	}
}

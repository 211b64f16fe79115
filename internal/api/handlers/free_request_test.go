package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qsecurex/portal/internal/domain/freerequest"
	"github.com/qsecurex/portal/internal/testutil"
)

func TestFreeRequestHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateAdmin(t, env.db, "ops@example.com")
	u := testutil.CreateUser(t, env.db, "asker@example.com")

	rr := httptest.NewRecorder()
	env.requests.Create(rr, newRequest(http.MethodPost, "/api/licenses/free-request", map[string]string{"plan": "pro"}, u))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d (body %s)", rr.Code, rr.Body.String())
	}
	var req freerequest.Request
	if err := json.Unmarshal(decode(t, rr).Data, &req); err != nil {
		t.Fatal(err)
	}

	rr = httptest.NewRecorder()
	env.requests.List(rr, newRequest(http.MethodGet, "/api/admin/licenses/free-requests?status=bogus", nil, admin))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad filter status = %d, want 400", rr.Code)
	}

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{"approve", req.ID, http.StatusOK},
		{"approve again", req.ID, http.StatusConflict},
		{"unknown", "missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			env.requests.Approve(rr, newRequest(http.MethodPost, "/api/admin/licenses/free-requests/"+tt.id+"/approve", nil, admin, "id", tt.id))
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}

	rr = httptest.NewRecorder()
	env.requests.ListMine(rr, newRequest(http.MethodGet, "/api/licenses/free-requests", nil, u))
	var mine []freerequest.Request
	if err := json.Unmarshal(decode(t, rr).Data, &mine); err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].Status != freerequest.StatusApproved {
		t.Errorf("requests = %+v", mine)
	}
}

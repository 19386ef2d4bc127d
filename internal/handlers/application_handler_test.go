package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/auth"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/dtos"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/services"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/store"
	"go.uber.org/zap"
)

type testAPI struct {
	router     *gin.Engine
	adminToken string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop().Sugar()

	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "applications.json"), logger)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	applicationService := services.NewApplicationService(st, "Татьяна", logger)
	syncService := services.NewSyncService("", "", logger)
	authService := auth.NewService("test-secret", time.Hour, "admin:pw:admin:Admin", logger)

	applicationHandler := NewApplicationHandler(applicationService, syncService, "Татьяна", logger)
	authHandler := NewAuthHandler(authService, logger)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/health", HealthCheck)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", authService.RequireAuth(), authHandler.Me)
	api.POST("/public/applications", applicationHandler.Create)
	admin := api.Group("/admin", authService.RequireAuth())
	admin.GET("/meta", applicationHandler.Meta)
	admin.GET("/applications", applicationHandler.List)
	admin.GET("/applications/:id", applicationHandler.Get)
	admin.PATCH("/applications/:id", authService.RequireAdmin(), applicationHandler.Update)
	admin.POST("/applications/:id/contact", authService.RequireAdmin(), applicationHandler.Contact)
	admin.GET("/export.csv", authService.RequireAdmin(), applicationHandler.ExportCSV)

	user, ok := authService.ValidateCredentials("admin", "pw")
	if !ok {
		t.Fatalf("test credentials rejected")
	}
	token, err := authService.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	return &testAPI{router: r, adminToken: token}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+a.adminToken)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) submit(t *testing.T, name, phone string) dtos.CreateApplicationResponse {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/public/applications", map[string]any{
		"fullName":       name,
		"phone":          phone,
		"city":           "Казань",
		"age18Confirmed": true,
	}, false)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: got=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp dtos.CreateApplicationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp
}

func TestHealthCheck(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/api/health", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: got=%d", rec.Code)
	}
}

func TestLoginAndMe(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/auth/login", dtos.LoginRequest{Username: "admin", Password: "nope"}, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: got=%d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/api/auth/login", dtos.LoginRequest{Username: "admin", Password: "pw"}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got=%d body=%s", rec.Code, rec.Body.String())
	}
	var login dtos.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.Token == "" || login.User.Role != auth.RoleAdmin {
		t.Fatalf("login response: %+v", login)
	}

	rec = api.do(t, http.MethodGet, "/api/auth/me", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: got=%d", rec.Code)
	}
}

func TestCreateRequiresFields(t *testing.T) {
	api := newTestAPI(t)

	cases := []map[string]any{
		{"phone": "123", "city": "X", "age18Confirmed": true},
		{"fullName": "A", "city": "X", "age18Confirmed": true},
		{"fullName": "A", "phone": "123", "age18Confirmed": true},
		{"fullName": "A", "phone": "123", "city": "X"},
		{"fullName": "A", "phone": "123", "city": "X", "age18Confirmed": false},
	}
	for i, payload := range cases {
		rec := api.do(t, http.MethodPost, "/api/public/applications", payload, false)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("case %d: got=%d want=%d", i, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestCreateReportsDuplicate(t *testing.T) {
	api := newTestAPI(t)

	first := api.submit(t, "A", "+7 900 111-22-33")
	if first.Duplicate {
		t.Fatalf("first record must not be duplicate")
	}
	if first.Excel.Synced || first.Excel.Reason != "missing_webhook_url" {
		t.Fatalf("sync side channel: %+v", first.Excel)
	}

	second := api.submit(t, "B", "79001112233")
	if !second.Duplicate || second.DuplicateOf == nil || *second.DuplicateOf != first.ID {
		t.Fatalf("duplicate not reported: %+v", second)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/api/admin/applications", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: got=%d", rec.Code)
	}
}

func TestListFiltersAndCounters(t *testing.T) {
	api := newTestAPI(t)
	api.submit(t, "A", "+7 900 111-22-33")
	created := api.submit(t, "B", "+7 999 000-00-00")

	rec := api.do(t, http.MethodPatch, "/api/admin/applications/"+created.ID, map[string]any{"status": "Approved"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: got=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodGet, "/api/admin/applications?status=Approved", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got=%d", rec.Code)
	}
	var list dtos.ListApplicationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 || list.Items[0].ID != created.ID {
		t.Fatalf("filtered list: %+v", list)
	}
	if list.Counters.Approved != 1 || list.Counters.New != 0 {
		t.Fatalf("counters over filtered set: %+v", list.Counters)
	}
}

func TestGetReturnsNotFound(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/api/admin/applications/missing", nil, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get missing: got=%d", rec.Code)
	}
}

func TestPatchNotFound(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPatch, "/api/admin/applications/missing", map[string]any{"status": "Approved"}, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("patch missing: got=%d", rec.Code)
	}
}

func TestContactDefaultsToCalled(t *testing.T) {
	api := newTestAPI(t)
	created := api.submit(t, "A", "+7 900 111-22-33")

	rec := api.do(t, http.MethodPost, "/api/admin/applications/"+created.ID+"/contact", map[string]any{"action": "shouted"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("contact: got=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp dtos.UpdateApplicationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode contact: %v", err)
	}
	if resp.Item.LastContactType == nil || *resp.Item.LastContactType != "called" {
		t.Fatalf("invalid action must default to called: %+v", resp.Item.LastContactType)
	}
	if resp.Item.Status != "Contacted" || resp.Item.ContactAttempts != 1 {
		t.Fatalf("contact transition: %+v", resp.Item)
	}
}

func TestExportCSV(t *testing.T) {
	api := newTestAPI(t)
	api.submit(t, "A", "+7 900 111-22-33")

	rec := api.do(t, http.MethodGet, "/api/admin/export.csv", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: got=%d", rec.Code)
	}
	body := rec.Body.Bytes()
	if len(body) < 3 || body[0] != 0xEF || body[1] != 0xBB || body[2] != 0xBF {
		t.Fatalf("csv must be BOM-prefixed")
	}
	if !strings.Contains(string(body), "ID,Timestamp,FullName") {
		t.Fatalf("csv header missing: %q", string(body[:60]))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "applications-") {
		t.Fatalf("content disposition: %q", rec.Header().Get("Content-Disposition"))
	}
}

package events

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventplanner/backend/internal/clock"
	"github.com/eventplanner/backend/internal/middleware"
	"github.com/eventplanner/backend/internal/models"
)

func newTestRouter(seed ...*models.Event) *gin.Engine {
	gin.SetMode(gin.TestMode)
	var ops []string
	svc := NewService(newFakeStore(&ops, seed...), NopCache{}, clock.NewFixed(testNow), nil)

	r := gin.New()
	r.Use(middleware.Tenant())
	NewHandler(svc).Register(r.Group("/api/v1"))
	return r
}

func doRequest(r *gin.Engine, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerErrorMapping(t *testing.T) {
	t.Parallel()

	e := liveEvent("tenant-a")
	tenantA := map[string]string{"X-Tenant-ID": "tenant-a"}
	tenantB := map[string]string{"X-Tenant-ID": "tenant-b"}

	tests := []struct {
		name    string
		method  string
		path    string
		body    []byte
		headers map[string]string
		want    int
	}{
		{
			name:    "unknown id is 404",
			method:  http.MethodGet,
			path:    "/api/v1/events/" + uuid.NewString(),
			headers: tenantA,
			want:    http.StatusNotFound,
		},
		{
			name:    "malformed id is 400",
			method:  http.MethodGet,
			path:    "/api/v1/events/not-a-uuid",
			headers: tenantA,
			want:    http.StatusBadRequest,
		},
		{
			name:    "wrong tenant is 403",
			method:  http.MethodGet,
			path:    "/api/v1/events/" + e.ID.String(),
			headers: tenantB,
			want:    http.StatusForbidden,
		},
		{
			name:   "missing tenant header on list is 400",
			method: http.MethodGet,
			path:   "/api/v1/events",
			want:   http.StatusBadRequest,
		},
		{
			name:    "trashing a live event is 409",
			method:  http.MethodPatch,
			path:    "/api/v1/events/" + e.ID.String() + "/trash",
			headers: tenantA,
			want:    http.StatusConflict,
		},
		{
			name:    "purging a non-trashed event is 409",
			method:  http.MethodDelete,
			path:    "/api/v1/events/" + e.ID.String() + "/purge",
			headers: tenantA,
			want:    http.StatusConflict,
		},
		{
			name:    "in-person without city is 400",
			method:  http.MethodPost,
			path:    "/api/v1/events",
			body:    []byte(`{"name":"expo","event_mode":"IN_PERSON"}`),
			headers: tenantA,
			want:    http.StatusBadRequest,
		},
		{
			name:    "unknown event mode fails binding",
			method:  http.MethodPost,
			path:    "/api/v1/events",
			body:    []byte(`{"name":"expo","event_mode":"METAVERSE"}`),
			headers: tenantA,
			want:    http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := newTestRouter(e)
			w := doRequest(r, tt.method, tt.path, tt.body, tt.headers)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestHandlerSuperAdminHeader(t *testing.T) {
	t.Parallel()

	e := liveEvent("tenant-b")
	r := newTestRouter(e)

	// SUPER_ADMIN role reads across tenants; header match is case-insensitive.
	w := doRequest(r, http.MethodGet, "/api/v1/events/"+e.ID.String(), nil, map[string]string{
		"X-User-Role": "super_admin",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for superadmin, got %d: %s", w.Code, w.Body.String())
	}

	// Any other role with no tenant header is denied.
	w = doRequest(r, http.MethodGet, "/api/v1/events/"+e.ID.String(), nil, map[string]string{
		"X-User-Role": "ORGANIZER",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestHandlerCreateAndLifecycle(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	tenantA := map[string]string{"X-Tenant-ID": "tenant-a"}

	start := testNow.Add(time.Hour).Format(time.RFC3339)
	end := testNow.Add(2 * time.Hour).Format(time.RFC3339)
	body := []byte(`{"name":"meetup","event_mode":"VIRTUAL","starts_at":"` + start + `","ends_at":"` + end + `"}`)

	w := doRequest(r, http.MethodPost, "/api/v1/events", body, tenantA)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

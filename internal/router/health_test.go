package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sposusu/eat-aware-scheduler/internal/auth"
	"github.com/sposusu/eat-aware-scheduler/internal/leaderboard"
	"github.com/sposusu/eat-aware-scheduler/internal/middleware"
)

func newTestRouter(t *testing.T, adminHash string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := leaderboard.NewService(leaderboard.NewMemoryStore())
	return NewRouter(Deps{
		Leaderboard:  leaderboard.NewHandler(svc),
		AllowOrigins: []string{"http://localhost:3000"},
		AdminKeyHash: adminHash,
	})
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestLeaderboardRoutesMounted(t *testing.T) {
	r := newTestRouter(t, "")

	body := []byte(`{"userId":"u1","items":[{"name":"Salmon","price":70,"count":2}],"totalPrice":140,"totalCalories":110}`)
	req := httptest.NewRequest(http.MethodPost, "/api/leaderboard", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"byPrice"`)) {
		t.Fatalf("board: %d %s", w.Code, w.Body.String())
	}
}

func TestAdminResetRequiresKey(t *testing.T) {
	hash, err := auth.HashAdminKey("ops")
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRouter(t, hash)

	submit := httptest.NewRequest(http.MethodPost, "/api/leaderboard", bytes.NewReader([]byte(`{"userId":"u1","items":[],"totalPrice":10}`)))
	submit.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), submit)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/u1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without key, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/admin/users/u1", nil)
	req.Header.Set(middleware.AdminKeyHeader, "ops")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d (%s)", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/admin/users/u1", nil)
	req.Header.Set(middleware.AdminKeyHeader, "ops")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for removed user, got %d", w.Code)
	}
}

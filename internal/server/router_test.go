package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/api"
	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/internal/engine"
	"github.com/Bleutonik/lovirtual-backend/internal/presence"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := engine.NewStore(nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return New(&api.Handler{
		Store:    store,
		Sessions: auth.NewSessions(time.Hour),
		Tracker:  presence.NewTracker(),
	})
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest("OPTIONS", "/api/auth/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin, got %q", got)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/auth/me", "/api/attendance", "/api/tasks", "/api/users"} {
		req, _ := http.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 for anonymous GET %s, got %d", path, w.Code)
		}
	}
}

func TestHealthNeedsNoToken(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 on health, got %d", w.Code)
	}
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("123456")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "123456" {
		t.Fatal("Expected the hash to differ from the plaintext")
	}
	if !CheckPassword(hash, "123456") {
		t.Error("Expected the correct password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("Expected a wrong password to fail")
	}
}

func TestSessionsIssueResolveRevoke(t *testing.T) {
	s := NewSessions(time.Hour)
	identity := Identity{UserID: 1, Username: "rock", Role: "employee"}

	token := s.Issue(identity)
	if token == "" {
		t.Fatal("Expected a token")
	}

	got, ok := s.Resolve(token)
	if !ok {
		t.Fatal("Expected the token to resolve")
	}
	if got != identity {
		t.Errorf("Expected %+v, got %+v", identity, got)
	}

	s.Revoke(token)
	if _, ok := s.Resolve(token); ok {
		t.Error("Expected a revoked token to stop resolving")
	}
}

func TestSessionsExpiry(t *testing.T) {
	s := NewSessions(time.Minute)
	current := time.Now()
	s.now = func() time.Time { return current }

	token := s.Issue(Identity{UserID: 1})
	if _, ok := s.Resolve(token); !ok {
		t.Fatal("Expected a fresh token to resolve")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := s.Resolve(token); ok {
		t.Error("Expected the token to expire")
	}
	// Expired tokens are dropped, not kept around.
	if len(s.tokens) != 0 {
		t.Errorf("Expected the expired token to be deleted, table has %d entries", len(s.tokens))
	}
}

func TestSessionsRevokeUser(t *testing.T) {
	s := NewSessions(time.Hour)
	first := s.Issue(Identity{UserID: 1})
	second := s.Issue(Identity{UserID: 1})
	other := s.Issue(Identity{UserID: 2})

	s.RevokeUser(1)
	if _, ok := s.Resolve(first); ok {
		t.Error("Expected the user's first token to be revoked")
	}
	if _, ok := s.Resolve(second); ok {
		t.Error("Expected the user's second token to be revoked")
	}
	if _, ok := s.Resolve(other); !ok {
		t.Error("Expected the other user's token to survive")
	}
}

func setupMiddlewareRouter(s *Sessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAuth(s), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentIdentity(c).UserID})
	})
	r.GET("/admin", RequireAuth(s), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	s := NewSessions(time.Hour)
	r := setupMiddlewareRouter(s)

	req, _ := http.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	req, _ = http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with bogus token, got %d", w.Code)
	}

	token := s.Issue(Identity{UserID: 7, Role: "employee"})
	req, _ = http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with valid token, got %d", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	s := NewSessions(time.Hour)
	r := setupMiddlewareRouter(s)

	employee := s.Issue(Identity{UserID: 1, Role: "employee"})
	req, _ := http.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+employee)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for employee on admin route, got %d", w.Code)
	}

	admin := s.Issue(Identity{UserID: 2, Role: "admin"})
	req, _ = http.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for admin, got %d", w.Code)
	}
}

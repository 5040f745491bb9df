package sdk

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeBackend mimics the API envelope for the routes the client exercises.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != "123456" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "test-token",
				"user":  map[string]any{"id": 1, "username": req.Username, "role": "admin"},
			},
		})
	})

	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "invalid or expired token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": 1, "username": "admin"},
				{"id": 2, "username": "rock"},
			},
		})
	})

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"status":      "ok",
				"backend":     "file",
				"collections": map[string]int{"users": 2},
			},
		})
	})

	return httptest.NewServer(mux)
}

func TestLoginStoresToken(t *testing.T) {
	srv := fakeBackend(t)
	defer srv.Close()

	client := New(srv.URL)
	user, err := client.Login("admin", "123456")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Username != "admin" {
		t.Errorf("Expected username admin, got %q", user.Username)
	}
	if client.Token() != "test-token" {
		t.Errorf("Expected the client to keep the token, got %q", client.Token())
	}
}

func TestLoginFailureSurfacesMessage(t *testing.T) {
	srv := fakeBackend(t)
	defer srv.Close()

	client := New(srv.URL)
	if _, err := client.Login("admin", "wrong"); err == nil {
		t.Fatal("Expected an error for bad credentials")
	}
}

func TestUsersRequiresToken(t *testing.T) {
	srv := fakeBackend(t)
	defer srv.Close()

	client := New(srv.URL)
	if _, err := client.Users(); err == nil {
		t.Fatal("Expected an error without a token")
	}

	client.SetToken("test-token")
	users, err := client.Users()
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(users))
	}
}

func TestHealth(t *testing.T) {
	srv := fakeBackend(t)
	defer srv.Close()

	status, err := New(srv.URL).Health()
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if status.Backend != "file" {
		t.Errorf("Expected file backend, got %q", status.Backend)
	}
	if status.Collections["users"] != 2 {
		t.Errorf("Expected 2 users, got %d", status.Collections["users"])
	}
}

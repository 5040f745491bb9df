// Package auth provides the security primitives of the backend: password
// hashing, opaque bearer session tokens and the gin middleware that turns a
// token back into an identity before any handler runs.
package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long a session stays valid without re-login.
const DefaultTokenTTL = 12 * time.Hour

const identityKey = "identity"

// Identity is the claim attached to the request once a token resolves.
type Identity struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type session struct {
	identity Identity
	expires  time.Time
}

// Sessions is the in-memory token table. Tokens are random UUIDs, volatile
// by design: a restart logs everyone out, same as the presence tracker.
type Sessions struct {
	mu     sync.Mutex
	tokens map[string]session
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a session table. A zero ttl falls back to
// DefaultTokenTTL.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Sessions{
		tokens: make(map[string]session),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a fresh token for the identity.
func (s *Sessions) Issue(id Identity) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = session{identity: id, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return token
}

// Resolve returns the identity behind a token, dropping it when expired.
func (s *Sessions) Resolve(token string) (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.tokens[token]
	if !ok {
		return Identity{}, false
	}
	if s.now().After(sess.expires) {
		delete(s.tokens, token)
		return Identity{}, false
	}
	return sess.identity, true
}

// Revoke invalidates a token (logout).
func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// RevokeUser invalidates every session of one user, used when the account is
// deleted or its password changes.
func (s *Sessions) RevokeUser(userID int) {
	s.mu.Lock()
	for token, sess := range s.tokens {
		if sess.identity.UserID == userID {
			delete(s.tokens, token)
		}
	}
	s.mu.Unlock()
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RequireAuth rejects requests without a valid bearer token and attaches the
// resolved identity to the context for the handlers downstream.
func RequireAuth(sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(401, gin.H{"success": false, "message": "missing or malformed authorization header"})
			return
		}
		identity, ok := sessions.Resolve(token)
		if !ok {
			c.AbortWithStatusJSON(401, gin.H{"success": false, "message": "invalid or expired token"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRole restricts the route to the given roles. It must run after
// RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(403, gin.H{"success": false, "message": "insufficient permissions"})
	}
}

// CurrentIdentity returns the identity attached by RequireAuth. Routes not
// behind RequireAuth get the zero Identity.
func CurrentIdentity(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}

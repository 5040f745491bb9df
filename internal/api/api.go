// Package api contains the route handlers. Handlers own all input
// validation and business rules; the store below them only knows about
// generic record access.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/internal/engine"
	"github.com/Bleutonik/lovirtual-backend/internal/presence"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// Handler carries the shared dependencies of every route.
type Handler struct {
	Store    *engine.Store
	Sessions *auth.Sessions
	Tracker  *presence.Tracker

	// Backend names the persistence backend in use; health reports it.
	Backend string

	// Now is overridable in tests; nil means time.Now.
	Now func() time.Time
}

func (h *Handler) clock() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) timestamp() string {
	return h.clock().UTC().Format(time.RFC3339)
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// failServer hides the cause from the client and keeps it in the server log.
func failServer(c *gin.Context, err error) {
	log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	fail(c, http.StatusInternalServerError, "internal server error")
}

// parseID reads the :id route parameter as the canonical integer id.
func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// canViewAll reports whether the identity may read other users' records.
func canViewAll(id auth.Identity) bool {
	return id.Role == schema.RoleAdmin || id.Role == schema.RoleSupervisor
}

// userName resolves a display name for denormalized responses.
func (h *Handler) userName(id int) string {
	if u, ok := h.Store.ResolveUser(id); ok {
		if u.Name != "" {
			return u.Name
		}
		return u.Username
	}
	return ""
}

// logActivity appends an audit entry; failures are logged, never surfaced,
// the triggering request already succeeded.
func (h *Handler) logActivity(userID int, event, detail string) {
	if _, err := h.Store.ActivityLogs().Insert(&schema.ActivityLog{
		UserID: userID,
		Event:  event,
		Detail: detail,
	}); err != nil {
		log.Printf("could not record activity %s for user %d: %v", event, userID, err)
	}
}

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/internal/presence"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

type heartbeatRequest struct {
	IsActive    bool `json:"is_active"`
	IdleSeconds int  `json:"idle_seconds" binding:"min=0"`
	AFK         bool `json:"afk"`
}

// Heartbeat records a presence report for the caller. AFK boundary
// crossings are additionally written to the activity log, so the history
// survives restarts even though the tracker itself does not.
func (h *Handler) Heartbeat(c *gin.Context) {
	var req heartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "idle_seconds must be >= 0")
		return
	}

	identity := auth.CurrentIdentity(c)
	status, transition := h.Tracker.Heartbeat(identity.UserID, req.IsActive, req.IdleSeconds, req.AFK)
	if transition != nil {
		h.logActivity(transition.UserID, transition.Event, "")
	}
	ok(c, gin.H{"status": status})
}

// PresenceStatus lists the derived presence of every tracked user.
// Admin/supervisor only.
func (h *Handler) PresenceStatus(c *gin.Context) {
	statuses := h.Tracker.Snapshot()

	type presenceView struct {
		UserName string              `json:"user_name"`
		Presence presence.UserStatus `json:"presence"`
	}
	out := make([]presenceView, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, presenceView{UserName: h.userName(s.UserID), Presence: s})
	}
	ok(c, out)
}

// ListActivityLogs returns the audit trail. Admin/supervisor see all,
// employees their own. Optional user_id filter.
func (h *Handler) ListActivityLogs(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	userFilter := 0
	if raw := c.Query("user_id"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "user_id must be an integer")
			return
		}
		userFilter = v
	}

	logs := h.Store.ActivityLogs().Find(func(l *schema.ActivityLog) bool {
		if !canViewAll(identity) && l.UserID != identity.UserID {
			return false
		}
		if userFilter != 0 && l.UserID != userFilter {
			return false
		}
		return true
	})
	ok(c, logs)
}

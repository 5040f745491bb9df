package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// ListIncidents returns incidents: reporters see their own, admin/supervisor
// see everything. Optional status filter.
func (h *Handler) ListIncidents(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	status := c.Query("status")
	incidents := h.Store.Incidents().Find(func(i *schema.Incident) bool {
		if !canViewAll(identity) && i.UserID != identity.UserID {
			return false
		}
		if status != "" && i.Status != status {
			return false
		}
		return true
	})

	type incidentView struct {
		*schema.Incident
		UserName string `json:"user_name"`
	}
	out := make([]incidentView, 0, len(incidents))
	for _, i := range incidents {
		out = append(out, incidentView{Incident: i, UserName: h.userName(i.UserID)})
	}
	ok(c, out)
}

type createIncidentRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required,oneof=technical hr safety general other"`
	Priority    string `json:"priority" binding:"required,oneof=low medium high critical"`
}

// CreateIncident files a new incident report for the caller.
func (h *Handler) CreateIncident(c *gin.Context) {
	var req createIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "title, description, a valid category and priority are required")
		return
	}
	incident, err := h.Store.Incidents().Insert(&schema.Incident{
		UserID:      auth.CurrentIdentity(c).UserID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      schema.IncidentOpen,
		Priority:    req.Priority,
	})
	if err != nil {
		failServer(c, err)
		return
	}
	created(c, incident)
}

type updateIncidentRequest struct {
	Status     *string `json:"status" binding:"omitempty,oneof=open in_review resolved closed"`
	Priority   *string `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	Resolution *string `json:"resolution"`
}

// UpdateIncident moves an incident through its workflow. Admin/supervisor
// only; entering resolved or closed stamps the resolver.
func (h *Handler) UpdateIncident(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req updateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload")
		return
	}

	identity := auth.CurrentIdentity(c)
	resolvedAt := h.timestamp()
	incident, found, err := h.Store.Incidents().Update(id, func(i *schema.Incident) {
		if req.Priority != nil {
			i.Priority = *req.Priority
		}
		if req.Resolution != nil {
			i.Resolution = *req.Resolution
		}
		if req.Status != nil {
			i.Status = *req.Status
			if *req.Status == schema.IncidentResolved || *req.Status == schema.IncidentClosed {
				i.ResolvedBy = &identity.UserID
				i.ResolvedAt = &resolvedAt
			}
		}
	})
	if err != nil {
		failServer(c, err)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, "incident not found")
		return
	}
	ok(c, incident)
}

// DeleteIncident removes an incident. Admin only.
func (h *Handler) DeleteIncident(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	removed, err := h.Store.Incidents().Delete(id)
	if err != nil {
		failServer(c, err)
		return
	}
	if !removed {
		fail(c, http.StatusNotFound, "incident not found")
		return
	}
	ok(c, nil)
}

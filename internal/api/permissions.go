package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// ListPermissions returns leave requests, scoped to the caller unless they
// are admin/supervisor. Optional status filter.
func (h *Handler) ListPermissions(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	status := c.Query("status")
	permissions := h.Store.Permissions().Find(func(p *schema.Permission) bool {
		if !canViewAll(identity) && p.UserID != identity.UserID {
			return false
		}
		if status != "" && p.Status != status {
			return false
		}
		return true
	})

	type permissionView struct {
		*schema.Permission
		UserName string `json:"user_name"`
	}
	out := make([]permissionView, 0, len(permissions))
	for _, p := range permissions {
		out = append(out, permissionView{Permission: p, UserName: h.userName(p.UserID)})
	}
	ok(c, out)
}

type createPermissionRequest struct {
	Type     string `json:"type" binding:"required,oneof=vacation sick_leave personal maternity paternity bereavement other"`
	DateFrom string `json:"date_from" binding:"required,datetime=2006-01-02"`
	DateTo   string `json:"date_to" binding:"required,datetime=2006-01-02"`
	Reason   string `json:"reason"`
}

// CreatePermission files a leave request for the caller. days_requested
// counts both endpoints of the range.
func (h *Handler) CreatePermission(c *gin.Context) {
	var req createPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "type, date_from and date_to (YYYY-MM-DD) are required")
		return
	}

	from, _ := time.Parse(dateLayout, req.DateFrom)
	to, _ := time.Parse(dateLayout, req.DateTo)
	if to.Before(from) {
		fail(c, http.StatusBadRequest, "date_to is before date_from")
		return
	}
	days := int(to.Sub(from).Hours()/24) + 1

	permission, err := h.Store.Permissions().Insert(&schema.Permission{
		UserID:        auth.CurrentIdentity(c).UserID,
		Type:          req.Type,
		DateFrom:      req.DateFrom,
		DateTo:        req.DateTo,
		DaysRequested: days,
		Reason:        req.Reason,
		Status:        schema.PermissionPending,
	})
	if err != nil {
		failServer(c, err)
		return
	}
	created(c, permission)
}

type reviewPermissionRequest struct {
	Status         string `json:"status" binding:"required,oneof=approved rejected"`
	RejectedReason string `json:"rejected_reason"`
}

// ReviewPermission approves or rejects a pending request. Admin/supervisor
// only; a request that already left pending cannot be reviewed again.
func (h *Handler) ReviewPermission(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req reviewPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "status must be approved or rejected")
		return
	}

	existing, found := h.Store.Permissions().ByID(id)
	if !found {
		fail(c, http.StatusNotFound, "permission request not found")
		return
	}
	if existing.Status != schema.PermissionPending {
		fail(c, http.StatusBadRequest, "request already processed")
		return
	}

	identity := auth.CurrentIdentity(c)
	approvedAt := h.timestamp()
	permission, _, err := h.Store.Permissions().Update(id, func(p *schema.Permission) {
		p.Status = req.Status
		p.ApprovedBy = &identity.UserID
		p.ApprovedAt = &approvedAt
		if req.Status == schema.PermissionRejected {
			p.RejectedReason = req.RejectedReason
		}
	})
	if err != nil {
		failServer(c, err)
		return
	}
	ok(c, permission)
}

// CancelPermission lets the owner withdraw a still-pending request.
func (h *Handler) CancelPermission(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	identity := auth.CurrentIdentity(c)
	existing, found := h.Store.Permissions().ByID(id)
	if !found {
		fail(c, http.StatusNotFound, "permission request not found")
		return
	}
	if existing.UserID != identity.UserID {
		fail(c, http.StatusForbidden, "not your request")
		return
	}
	if existing.Status != schema.PermissionPending {
		fail(c, http.StatusBadRequest, "request already processed")
		return
	}

	permission, _, err := h.Store.Permissions().Update(id, func(p *schema.Permission) {
		p.Status = schema.PermissionCancelled
	})
	if err != nil {
		failServer(c, err)
		return
	}
	ok(c, permission)
}

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// maxBreakMinutes is the allowance per break type; anything beyond counts as
// overtime.
func maxBreakMinutes(breakType string) int {
	if breakType == schema.BreakLunch {
		return 60
	}
	return 15
}

type startBreakRequest struct {
	Type string `json:"type" binding:"required,oneof=break_am lunch break_pm other"`
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time string `json:"time" binding:"omitempty,datetime=15:04"`
}

// StartBreak opens a break for the caller. Only one break may be running at
// a time.
func (h *Handler) StartBreak(c *gin.Context) {
	var req startBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "type must be one of break_am, lunch, break_pm, other")
		return
	}
	now := h.clock()
	if req.Date == "" {
		req.Date = now.Format(dateLayout)
	}
	if req.Time == "" {
		req.Time = now.Format(timeLayout)
	}

	identity := auth.CurrentIdentity(c)
	_, active := h.Store.Breaks().FindOne(func(b *schema.Break) bool {
		return b.UserID == identity.UserID && b.EndTime == nil
	})
	if active {
		fail(c, http.StatusBadRequest, "a break is already in progress")
		return
	}

	record, err := h.Store.Breaks().Insert(&schema.Break{
		UserID:    identity.UserID,
		Date:      req.Date,
		Type:      req.Type,
		StartTime: req.Time,
	})
	if err != nil {
		failServer(c, err)
		return
	}
	created(c, record)
}

type endBreakRequest struct {
	Time string `json:"time" binding:"omitempty,datetime=15:04"`
}

// EndBreak closes the caller's running break, computing duration and the
// overtime beyond the type's allowance.
func (h *Handler) EndBreak(c *gin.Context) {
	var req endBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "time must be HH:MM")
		return
	}
	if req.Time == "" {
		req.Time = h.clock().Format(timeLayout)
	}

	identity := auth.CurrentIdentity(c)
	active, found := h.Store.Breaks().FindOne(func(b *schema.Break) bool {
		return b.UserID == identity.UserID && b.EndTime == nil
	})
	if !found {
		fail(c, http.StatusBadRequest, "no break in progress")
		return
	}

	duration, err := minutesBetween(active.StartTime, req.Time)
	if err != nil || duration < 0 {
		fail(c, http.StatusBadRequest, "end time is before the break started")
		return
	}
	maxDuration := maxBreakMinutes(active.Type)
	overtime := duration - maxDuration
	if overtime < 0 {
		overtime = 0
	}

	record, _, err := h.Store.Breaks().Update(active.ID, func(b *schema.Break) {
		b.EndTime = &req.Time
		b.DurationMinutes = duration
		b.IsOvertime = overtime > 0
		b.Overtime = overtime
	})
	if err != nil {
		failServer(c, err)
		return
	}
	ok(c, gin.H{
		"break":       record,
		"is_overtime": record.IsOvertime,
		"overtime":    record.Overtime,
	})
}

// ListBreaks returns break records, scoped like attendance.
func (h *Handler) ListBreaks(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	date := c.Query("date")
	records := h.Store.Breaks().Find(func(b *schema.Break) bool {
		if !canViewAll(identity) && b.UserID != identity.UserID {
			return false
		}
		if date != "" && b.Date != date {
			return false
		}
		return true
	})
	ok(c, records)
}

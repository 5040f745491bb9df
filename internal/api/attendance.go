package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// Clock-ins at or after this wall time are marked late.
const lateThreshold = "09:00"

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// minutesBetween computes the span between two HH:MM values on one day.
func minutesBetween(from, to string) (int, error) {
	start, err := time.Parse(timeLayout, from)
	if err != nil {
		return 0, err
	}
	end, err := time.Parse(timeLayout, to)
	if err != nil {
		return 0, err
	}
	return int(end.Sub(start).Minutes()), nil
}

type clockInRequest struct {
	Date  string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time  string `json:"time" binding:"omitempty,datetime=15:04"`
	Notes string `json:"notes"`
}

// ClockIn opens the caller's attendance record for the day. One record per
// user per day.
func (h *Handler) ClockIn(c *gin.Context) {
	var req clockInRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "date must be YYYY-MM-DD and time HH:MM")
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
	_, exists := h.Store.Attendance().FindOne(func(a *schema.Attendance) bool {
		return a.UserID == identity.UserID && a.Date == req.Date
	})
	if exists {
		fail(c, http.StatusBadRequest, "attendance already registered for this date")
		return
	}

	status := schema.AttendancePresent
	if req.Time >= lateThreshold {
		status = schema.AttendanceLate
	}
	record, err := h.Store.Attendance().Insert(&schema.Attendance{
		UserID:  identity.UserID,
		Date:    req.Date,
		ClockIn: req.Time,
		Status:  status,
		Notes:   req.Notes,
	})
	if err != nil {
		failServer(c, err)
		return
	}
	created(c, record)
}

type clockOutRequest struct {
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time string `json:"time" binding:"omitempty,datetime=15:04"`
}

// ClockOut closes the caller's open attendance record and computes the
// worked minutes.
func (h *Handler) ClockOut(c *gin.Context) {
	var req clockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "date must be YYYY-MM-DD and time HH:MM")
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
	open, found := h.Store.Attendance().FindOne(func(a *schema.Attendance) bool {
		return a.UserID == identity.UserID && a.Date == req.Date && a.ClockOut == nil
	})
	if !found {
		fail(c, http.StatusBadRequest, "no open attendance record for this date")
		return
	}

	worked, err := minutesBetween(open.ClockIn, req.Time)
	if err != nil || worked < 0 {
		fail(c, http.StatusBadRequest, "clock-out time is before clock-in")
		return
	}
	record, _, err := h.Store.Attendance().Update(open.ID, func(a *schema.Attendance) {
		a.ClockOut = &req.Time
		a.WorkedMinutes = worked
	})
	if err != nil {
		failServer(c, err)
		return
	}
	ok(c, record)
}

// ListAttendance returns attendance records. Employees see their own;
// admin/supervisor see everyone, optionally filtered by date and user_id.
func (h *Handler) ListAttendance(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	date := c.Query("date")
	userFilter := 0
	if raw := c.Query("user_id"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "user_id must be an integer")
			return
		}
		userFilter = v
	}

	records := h.Store.Attendance().Find(func(a *schema.Attendance) bool {
		if !canViewAll(identity) && a.UserID != identity.UserID {
			return false
		}
		if date != "" && a.Date != date {
			return false
		}
		if userFilter != 0 && a.UserID != userFilter {
			return false
		}
		return true
	})

	type attendanceView struct {
		*schema.Attendance
		UserName string `json:"user_name"`
	}
	out := make([]attendanceView, 0, len(records))
	for _, a := range records {
		out = append(out, attendanceView{Attendance: a, UserName: h.userName(a.UserID)})
	}
	ok(c, out)
}

type updateAttendanceRequest struct {
	Status   *string `json:"status" binding:"omitempty,oneof=present late absent half_day"`
	ClockIn  *string `json:"clock_in" binding:"omitempty,datetime=15:04"`
	ClockOut *string `json:"clock_out" binding:"omitempty,datetime=15:04"`
	Notes    *string `json:"notes"`
}

// UpdateAttendance lets a supervisor or admin correct a record.
func (h *Handler) UpdateAttendance(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req updateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload")
		return
	}

	record, found, err := h.Store.Attendance().Update(id, func(a *schema.Attendance) {
		if req.Status != nil {
			a.Status = *req.Status
		}
		if req.ClockIn != nil {
			a.ClockIn = *req.ClockIn
		}
		if req.ClockOut != nil {
			a.ClockOut = req.ClockOut
		}
		if req.Notes != nil {
			a.Notes = *req.Notes
		}
		if a.ClockOut != nil {
			if worked, err := minutesBetween(a.ClockIn, *a.ClockOut); err == nil && worked >= 0 {
				a.WorkedMinutes = worked
			}
		}
	})
	if err != nil {
		failServer(c, err)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, "attendance record not found")
		return
	}
	ok(c, record)
}

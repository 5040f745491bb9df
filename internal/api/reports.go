package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// ListDailyReports returns reports, scoped like attendance, with an optional
// date filter.
func (h *Handler) ListDailyReports(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	date := c.Query("date")
	reports := h.Store.DailyReports().Find(func(r *schema.DailyReport) bool {
		if !canViewAll(identity) && r.UserID != identity.UserID {
			return false
		}
		if date != "" && r.Date != date {
			return false
		}
		return true
	})

	type reportView struct {
		*schema.DailyReport
		UserName string `json:"user_name"`
	}
	out := make([]reportView, 0, len(reports))
	for _, r := range reports {
		out = append(out, reportView{DailyReport: r, UserName: h.userName(r.UserID)})
	}
	ok(c, out)
}

type dailyReportRequest struct {
	Date     string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Content  string `json:"content" binding:"required"`
	Blockers string `json:"blockers"`
}

// SubmitDailyReport stores the caller's report for the day, replacing any
// earlier submission for the same date.
func (h *Handler) SubmitDailyReport(c *gin.Context) {
	var req dailyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "content is required")
		return
	}
	if req.Date == "" {
		req.Date = h.clock().Format(dateLayout)
	}

	identity := auth.CurrentIdentity(c)
	existing, found := h.Store.DailyReports().FindOne(func(r *schema.DailyReport) bool {
		return r.UserID == identity.UserID && r.Date == req.Date
	})
	if found {
		report, _, err := h.Store.DailyReports().Update(existing.ID, func(r *schema.DailyReport) {
			r.Content = req.Content
			r.Blockers = req.Blockers
		})
		if err != nil {
			failServer(c, err)
			return
		}
		ok(c, report)
		return
	}

	report, err := h.Store.DailyReports().Insert(&schema.DailyReport{
		UserID:   identity.UserID,
		Date:     req.Date,
		Content:  req.Content,
		Blockers: req.Blockers,
	})
	if err != nil {
		failServer(c, err)
		return
	}
	created(c, report)
}

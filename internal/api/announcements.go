package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// ListAnnouncements returns every announcement with the author name joined.
func (h *Handler) ListAnnouncements(c *gin.Context) {
	announcements := h.Store.Announcements().All()

	type announcementView struct {
		*schema.Announcement
		AuthorName string `json:"author_name"`
	}
	out := make([]announcementView, 0, len(announcements))
	for _, a := range announcements {
		out = append(out, announcementView{Announcement: a, AuthorName: h.userName(a.AuthorID)})
	}
	ok(c, out)
}

type announcementRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category" binding:"required,oneof=general important urgent event policy"`
	Pinned   bool   `json:"pinned"`
}

// CreateAnnouncement publishes a new announcement. Admin/supervisor only.
func (h *Handler) CreateAnnouncement(c *gin.Context) {
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "title, content and a valid category are required")
		return
	}
	announcement, err := h.Store.Announcements().Insert(&schema.Announcement{
		AuthorID: auth.CurrentIdentity(c).UserID,
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Pinned:   req.Pinned,
	})
	if err != nil {
		failServer(c, err)
		return
	}
	created(c, announcement)
}

type updateAnnouncementRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category" binding:"omitempty,oneof=general important urgent event policy"`
	Pinned   *bool   `json:"pinned"`
}

// UpdateAnnouncement edits an announcement. Admin/supervisor only.
func (h *Handler) UpdateAnnouncement(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req updateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload")
		return
	}

	announcement, found, err := h.Store.Announcements().Update(id, func(a *schema.Announcement) {
		if req.Title != nil {
			a.Title = *req.Title
		}
		if req.Content != nil {
			a.Content = *req.Content
		}
		if req.Category != nil {
			a.Category = *req.Category
		}
		if req.Pinned != nil {
			a.Pinned = *req.Pinned
		}
	})
	if err != nil {
		failServer(c, err)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, "announcement not found")
		return
	}
	ok(c, announcement)
}

// DeleteAnnouncement removes an announcement. Admin/supervisor only.
func (h *Handler) DeleteAnnouncement(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	removed, err := h.Store.Announcements().Delete(id)
	if err != nil {
		failServer(c, err)
		return
	}
	if !removed {
		fail(c, http.StatusNotFound, "announcement not found")
		return
	}
	ok(c, nil)
}

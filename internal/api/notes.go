package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// ListNotes returns the caller's own notes, pinned first is left to clients;
// collection order is kept.
func (h *Handler) ListNotes(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	notes := h.Store.Notes().Find(func(n *schema.Note) bool { return n.UserID == identity.UserID })
	ok(c, notes)
}

type noteRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
	Pinned  bool   `json:"pinned"`
}

// CreateNote adds a private note for the caller.
func (h *Handler) CreateNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "title is required")
		return
	}
	note, err := h.Store.Notes().Insert(&schema.Note{
		UserID:  auth.CurrentIdentity(c).UserID,
		Title:   req.Title,
		Content: req.Content,
		Pinned:  req.Pinned,
	})
	if err != nil {
		failServer(c, err)
		return
	}
	created(c, note)
}

type updateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Pinned  *bool   `json:"pinned"`
}

// UpdateNote edits one of the caller's notes.
func (h *Handler) UpdateNote(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload")
		return
	}

	identity := auth.CurrentIdentity(c)
	existing, found := h.Store.Notes().ByID(id)
	if !found {
		fail(c, http.StatusNotFound, "note not found")
		return
	}
	if existing.UserID != identity.UserID {
		fail(c, http.StatusForbidden, "not your note")
		return
	}

	note, _, err := h.Store.Notes().Update(id, func(n *schema.Note) {
		if req.Title != nil {
			n.Title = *req.Title
		}
		if req.Content != nil {
			n.Content = *req.Content
		}
		if req.Pinned != nil {
			n.Pinned = *req.Pinned
		}
	})
	if err != nil {
		failServer(c, err)
		return
	}
	ok(c, note)
}

// DeleteNote removes one of the caller's notes.
func (h *Handler) DeleteNote(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	identity := auth.CurrentIdentity(c)
	existing, found := h.Store.Notes().ByID(id)
	if !found {
		fail(c, http.StatusNotFound, "note not found")
		return
	}
	if existing.UserID != identity.UserID {
		fail(c, http.StatusForbidden, "not your note")
		return
	}
	if _, err := h.Store.Notes().Delete(id); err != nil {
		failServer(c, err)
		return
	}
	ok(c, nil)
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// ListChatMessages returns the global channel plus every direct message the
// caller sent or received, with sender names joined.
func (h *Handler) ListChatMessages(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	messages := h.Store.ChatMessages().Find(func(m *schema.ChatMessage) bool {
		if m.ToUserID == nil {
			return true
		}
		return m.UserID == identity.UserID || *m.ToUserID == identity.UserID
	})

	type chatView struct {
		*schema.ChatMessage
		UserName string `json:"user_name"`
	}
	out := make([]chatView, 0, len(messages))
	for _, m := range messages {
		out = append(out, chatView{ChatMessage: m, UserName: h.userName(m.UserID)})
	}
	ok(c, out)
}

type chatRequest struct {
	Content  string `json:"content" binding:"required"`
	ToUserID *int   `json:"to_user_id"`
}

// PostChatMessage sends a global message, or a direct message when
// to_user_id is set.
func (h *Handler) PostChatMessage(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "content is required")
		return
	}
	if req.ToUserID != nil {
		if _, found := h.Store.Users().ByID(*req.ToUserID); !found {
			fail(c, http.StatusBadRequest, "recipient does not exist")
			return
		}
	}

	message, err := h.Store.ChatMessages().Insert(&schema.ChatMessage{
		UserID:   auth.CurrentIdentity(c).UserID,
		ToUserID: req.ToUserID,
		Content:  req.Content,
	})
	if err != nil {
		failServer(c, err)
		return
	}
	created(c, message)
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, found := h.Store.Users().FindOne(func(u *schema.User) bool { return u.Username == req.Username })
	if !found || !auth.CheckPassword(user.Password, req.Password) {
		fail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := h.Sessions.Issue(auth.Identity{UserID: user.ID, Username: user.Username, Role: user.Role})
	h.logActivity(user.ID, schema.EventLogin, "")
	ok(c, gin.H{"token": token, "user": user.Sanitized()})
}

// Logout revokes the caller's token.
func (h *Handler) Logout(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	h.Sessions.Revoke(auth.BearerToken(c))
	h.logActivity(identity.UserID, schema.EventLogout, "")
	ok(c, nil)
}

// Me returns the caller's own account.
func (h *Handler) Me(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	user, found := h.Store.Users().ByID(identity.UserID)
	if !found {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	ok(c, user.Sanitized())
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword updates the caller's password and revokes their other
// sessions.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "current_password and new_password (min 6 chars) are required")
		return
	}

	identity := auth.CurrentIdentity(c)
	user, found := h.Store.Users().ByID(identity.UserID)
	if !found {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		fail(c, http.StatusForbidden, "current password does not match")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		failServer(c, err)
		return
	}
	if _, _, err := h.Store.Users().Update(user.ID, func(u *schema.User) { u.Password = hash }); err != nil {
		failServer(c, err)
		return
	}
	h.Sessions.RevokeUser(user.ID)
	ok(c, nil)
}

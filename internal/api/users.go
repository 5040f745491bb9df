package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// ListUsers returns every account with passwords stripped. Admin only.
func (h *Handler) ListUsers(c *gin.Context) {
	users := h.Store.Users().All()
	out := make([]schema.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	ok(c, out)
}

type createUserRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required,min=6"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Role       string `json:"role" binding:"required,oneof=admin supervisor employee"`
	Department string `json:"department"`
}

// CreateUser registers a new account. Admin only.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "username, password, name, email and a valid role are required")
		return
	}

	_, taken := h.Store.Users().FindOne(func(u *schema.User) bool {
		return u.Username == req.Username || u.Email == req.Email
	})
	if taken {
		fail(c, http.StatusConflict, "username or email already in use")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		failServer(c, err)
		return
	}
	user, err := h.Store.Users().Insert(&schema.User{
		Username:   req.Username,
		Password:   hash,
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		failServer(c, err)
		return
	}
	created(c, user.Sanitized())
}

type updateUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Role       *string `json:"role" binding:"omitempty,oneof=admin supervisor employee"`
	Department *string `json:"department"`
	Password   *string `json:"password" binding:"omitempty,min=6"`
}

// UpdateUser applies a partial update to an account. Admin only.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload")
		return
	}

	if req.Email != nil {
		_, taken := h.Store.Users().FindOne(func(u *schema.User) bool {
			return u.Email == *req.Email && u.ID != id
		})
		if taken {
			fail(c, http.StatusConflict, "email already in use")
			return
		}
	}

	var hash string
	if req.Password != nil {
		var err error
		if hash, err = auth.HashPassword(*req.Password); err != nil {
			failServer(c, err)
			return
		}
	}

	user, found, err := h.Store.Users().Update(id, func(u *schema.User) {
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Email != nil {
			u.Email = *req.Email
		}
		if req.Role != nil {
			u.Role = *req.Role
		}
		if req.Department != nil {
			u.Department = *req.Department
		}
		if req.Password != nil {
			u.Password = hash
		}
	})
	if err != nil {
		failServer(c, err)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	ok(c, user.Sanitized())
}

// DeleteUser removes an account and everything it owns. Admin only; deleting
// your own account is rejected.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	if auth.CurrentIdentity(c).UserID == id {
		fail(c, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	removed, err := h.Store.DeleteUserCascade(id)
	if err != nil {
		failServer(c, err)
		return
	}
	if !removed {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	h.Sessions.RevokeUser(id)
	h.Tracker.Forget(id)
	ok(c, nil)
}

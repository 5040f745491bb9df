package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// ListTasks returns tasks: employees see those assigned to them,
// admin/supervisor see everything. Optional status filter.
func (h *Handler) ListTasks(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	status := c.Query("status")
	tasks := h.Store.Tasks().Find(func(t *schema.Task) bool {
		if !canViewAll(identity) && t.UserID != identity.UserID {
			return false
		}
		if status != "" && t.Status != status {
			return false
		}
		return true
	})

	type taskView struct {
		*schema.Task
		UserName string `json:"user_name"`
	}
	out := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskView{Task: t, UserName: h.userName(t.UserID)})
	}
	ok(c, out)
}

type createTaskRequest struct {
	UserID      int    `json:"user_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" binding:"required,oneof=low medium high urgent"`
	DueDate     string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

// CreateTask assigns a new task. Admin/supervisor only.
func (h *Handler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "user_id, title and a valid priority are required")
		return
	}
	if _, found := h.Store.Users().ByID(req.UserID); !found {
		fail(c, http.StatusBadRequest, "assignee does not exist")
		return
	}

	task, err := h.Store.Tasks().Insert(&schema.Task{
		UserID:      req.UserID,
		AssignedBy:  auth.CurrentIdentity(c).UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      schema.TaskPending,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		failServer(c, err)
		return
	}
	created(c, task)
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate     *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateTask applies a partial update. Employees may only move their own
// tasks between statuses; supervisors and admins may edit everything.
func (h *Handler) UpdateTask(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload")
		return
	}

	identity := auth.CurrentIdentity(c)
	existing, found := h.Store.Tasks().ByID(id)
	if !found {
		fail(c, http.StatusNotFound, "task not found")
		return
	}
	if !canViewAll(identity) {
		if existing.UserID != identity.UserID {
			fail(c, http.StatusForbidden, "not your task")
			return
		}
		if req.Title != nil || req.Description != nil || req.Priority != nil || req.DueDate != nil {
			fail(c, http.StatusForbidden, "employees may only change the task status")
			return
		}
	}

	completedAt := h.timestamp()
	task, _, err := h.Store.Tasks().Update(id, func(t *schema.Task) {
		if req.Title != nil {
			t.Title = *req.Title
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Priority != nil {
			t.Priority = *req.Priority
		}
		if req.DueDate != nil {
			t.DueDate = *req.DueDate
		}
		if req.Status != nil {
			t.Status = *req.Status
			if *req.Status == schema.TaskCompleted {
				t.CompletedAt = &completedAt
			} else {
				t.CompletedAt = nil
			}
		}
	})
	if err != nil {
		failServer(c, err)
		return
	}
	ok(c, task)
}

// DeleteTask removes a task. Admin/supervisor only.
func (h *Handler) DeleteTask(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	removed, err := h.Store.Tasks().Delete(id)
	if err != nil {
		failServer(c, err)
		return
	}
	if !removed {
		fail(c, http.StatusNotFound, "task not found")
		return
	}
	ok(c, nil)
}

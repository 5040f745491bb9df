// Package server wires the route handlers into a gin engine.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/api"
	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// CORS allows the web client to talk to the API from any origin.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// New assembles the full API surface around a handler.
func New(h *api.Handler) *gin.Engine {
	r := gin.Default()
	r.Use(CORS())

	root := r.Group("/api")
	root.GET("/health", h.Health)
	root.POST("/auth/login", h.Login)

	authed := root.Group("")
	authed.Use(auth.RequireAuth(h.Sessions))
	{
		authed.POST("/auth/logout", h.Logout)
		authed.GET("/auth/me", h.Me)
		authed.PUT("/auth/password", h.ChangePassword)

		authed.POST("/attendance/clock-in", h.ClockIn)
		authed.POST("/attendance/clock-out", h.ClockOut)
		authed.GET("/attendance", h.ListAttendance)

		authed.POST("/breaks/start", h.StartBreak)
		authed.POST("/breaks/end", h.EndBreak)
		authed.GET("/breaks", h.ListBreaks)

		authed.GET("/tasks", h.ListTasks)
		authed.PUT("/tasks/:id", h.UpdateTask)

		authed.GET("/notes", h.ListNotes)
		authed.POST("/notes", h.CreateNote)
		authed.PUT("/notes/:id", h.UpdateNote)
		authed.DELETE("/notes/:id", h.DeleteNote)

		authed.GET("/incidents", h.ListIncidents)
		authed.POST("/incidents", h.CreateIncident)

		authed.GET("/permissions", h.ListPermissions)
		authed.POST("/permissions", h.CreatePermission)
		authed.PUT("/permissions/:id/cancel", h.CancelPermission)

		authed.GET("/announcements", h.ListAnnouncements)

		authed.GET("/chat", h.ListChatMessages)
		authed.POST("/chat", h.PostChatMessage)

		authed.GET("/reports", h.ListDailyReports)
		authed.POST("/reports", h.SubmitDailyReport)

		authed.POST("/activity/heartbeat", h.Heartbeat)
		authed.GET("/activity/logs", h.ListActivityLogs)
	}

	supervise := authed.Group("")
	supervise.Use(auth.RequireRole(schema.RoleAdmin, schema.RoleSupervisor))
	{
		supervise.PUT("/attendance/:id", h.UpdateAttendance)
		supervise.POST("/tasks", h.CreateTask)
		supervise.DELETE("/tasks/:id", h.DeleteTask)
		supervise.PUT("/incidents/:id", h.UpdateIncident)
		supervise.PUT("/permissions/:id/review", h.ReviewPermission)
		supervise.POST("/announcements", h.CreateAnnouncement)
		supervise.PUT("/announcements/:id", h.UpdateAnnouncement)
		supervise.DELETE("/announcements/:id", h.DeleteAnnouncement)
		supervise.GET("/activity/status", h.PresenceStatus)
	}

	admin := authed.Group("")
	admin.Use(auth.RequireRole(schema.RoleAdmin))
	{
		admin.GET("/users", h.ListUsers)
		admin.POST("/users", h.CreateUser)
		admin.PUT("/users/:id", h.UpdateUser)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.DELETE("/incidents/:id", h.DeleteIncident)
	}

	return r
}

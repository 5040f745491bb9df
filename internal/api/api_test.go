package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Bleutonik/lovirtual-backend/internal/api"
	"github.com/Bleutonik/lovirtual-backend/internal/auth"
	"github.com/Bleutonik/lovirtual-backend/internal/engine"
	"github.com/Bleutonik/lovirtual-backend/internal/presence"
	"github.com/Bleutonik/lovirtual-backend/internal/server"
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

type testEnv struct {
	router        *gin.Engine
	handler       *api.Handler
	store         *engine.Store
	employee      *schema.User
	admin         *schema.User
	employeeToken string
	adminToken    string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := engine.NewStore(nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	employeeHash, _ := auth.HashPassword("123456")
	adminHash, _ := auth.HashPassword("admin123")
	employee, _ := store.Users().Insert(&schema.User{
		Username: "rock", Password: employeeHash, Name: "Rock Demo",
		Email: "rock@example.com", Role: schema.RoleEmployee,
	})
	admin, _ := store.Users().Insert(&schema.User{
		Username: "admin", Password: adminHash, Name: "Administrator",
		Email: "admin@example.com", Role: schema.RoleAdmin,
	})

	sessions := auth.NewSessions(time.Hour)
	h := &api.Handler{Store: store, Sessions: sessions, Tracker: presence.NewTracker(), Backend: "file"}

	return &testEnv{
		router:   server.New(h),
		handler:  h,
		store:    store,
		employee: employee,
		admin:    admin,
		employeeToken: sessions.Issue(auth.Identity{
			UserID: employee.ID, Username: employee.Username, Role: employee.Role,
		}),
		adminToken: sessions.Issue(auth.Identity{
			UserID: admin.ID, Username: admin.Username, Role: admin.Role,
		}),
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Could not decode envelope: %v\nbody: %s", err, w.Body.String())
	}
	if !env.Success {
		t.Fatalf("Expected success envelope, got message %q", env.Message)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("Could not decode data: %v\ndata: %s", err, env.Data)
		}
	}
}

func TestLoginFlow(t *testing.T) {
	e := setup(t)

	w := e.do(t, "POST", "/api/auth/login", "", gin.H{"username": "rock", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %d", w.Code)
	}

	w = e.do(t, "POST", "/api/auth/login", "", gin.H{"username": "rock", "password": "123456"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result struct {
		Token string      `json:"token"`
		User  schema.User `json:"user"`
	}
	decodeData(t, w, &result)
	if result.Token == "" {
		t.Error("Expected a token")
	}
	if result.User.Password != "" {
		t.Error("Expected the password to be stripped from the login response")
	}

	w = e.do(t, "GET", "/api/auth/me", result.Token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 on /auth/me with fresh token, got %d", w.Code)
	}

	w = e.do(t, "GET", "/api/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}
}

func TestClockInStatusAndDuplicate(t *testing.T) {
	e := setup(t)

	w := e.do(t, "POST", "/api/attendance/clock-in", e.employeeToken,
		gin.H{"date": "2024-01-15", "time": "08:30"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var record schema.Attendance
	decodeData(t, w, &record)
	if record.Status != schema.AttendancePresent {
		t.Errorf("Expected present for 08:30, got %s", record.Status)
	}

	w = e.do(t, "POST", "/api/attendance/clock-in", e.employeeToken,
		gin.H{"date": "2024-01-16", "time": "09:15"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	decodeData(t, w, &record)
	if record.Status != schema.AttendanceLate {
		t.Errorf("Expected late for 09:15, got %s", record.Status)
	}

	// Second clock-in on an already-open day is rejected.
	w = e.do(t, "POST", "/api/attendance/clock-in", e.employeeToken,
		gin.H{"date": "2024-01-16", "time": "10:00"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate clock-in, got %d", w.Code)
	}
}

func TestClockOutComputesWorkedMinutes(t *testing.T) {
	e := setup(t)

	e.do(t, "POST", "/api/attendance/clock-in", e.employeeToken,
		gin.H{"date": "2024-01-15", "time": "08:30"})
	w := e.do(t, "POST", "/api/attendance/clock-out", e.employeeToken,
		gin.H{"date": "2024-01-15", "time": "17:30"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var record schema.Attendance
	decodeData(t, w, &record)
	if record.ClockOut == nil || *record.ClockOut != "17:30" {
		t.Errorf("Expected clock_out 17:30, got %v", record.ClockOut)
	}
	if record.WorkedMinutes != 540 {
		t.Errorf("Expected 540 worked minutes, got %d", record.WorkedMinutes)
	}

	w = e.do(t, "POST", "/api/attendance/clock-out", e.employeeToken,
		gin.H{"date": "2024-01-15", "time": "18:00"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 when no record is open, got %d", w.Code)
	}
}

func TestBreakLifecycleAndOvertime(t *testing.T) {
	e := setup(t)

	w := e.do(t, "POST", "/api/breaks/start", e.employeeToken,
		gin.H{"type": "lunch", "date": "2024-01-15", "time": "12:00"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var started schema.Break
	decodeData(t, w, &started)
	if started.EndTime != nil {
		t.Errorf("Expected end_time to be null while running, got %v", started.EndTime)
	}

	w = e.do(t, "POST", "/api/breaks/start", e.employeeToken,
		gin.H{"type": "other", "date": "2024-01-15", "time": "12:05"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for second concurrent break, got %d", w.Code)
	}

	// 75 minutes on a 60-minute lunch allowance.
	w = e.do(t, "POST", "/api/breaks/end", e.employeeToken, gin.H{"time": "13:15"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var ended struct {
		Break      schema.Break `json:"break"`
		IsOvertime bool         `json:"is_overtime"`
		Overtime   int          `json:"overtime"`
	}
	decodeData(t, w, &ended)
	if !ended.IsOvertime || ended.Overtime != 15 {
		t.Errorf("Expected overtime 15, got is_overtime=%v overtime=%d", ended.IsOvertime, ended.Overtime)
	}
	if ended.Break.DurationMinutes != 75 {
		t.Errorf("Expected duration 75, got %d", ended.Break.DurationMinutes)
	}

	w = e.do(t, "POST", "/api/breaks/end", e.employeeToken, gin.H{"time": "13:30"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 when no break is running, got %d", w.Code)
	}
}

func TestEndBreakWithoutBodyDefaultsToClock(t *testing.T) {
	e := setup(t)
	e.handler.Now = func() time.Time {
		return time.Date(2024, 1, 15, 12, 10, 0, 0, time.UTC)
	}

	w := e.do(t, "POST", "/api/breaks/start", e.employeeToken,
		gin.H{"type": "break_am", "date": "2024-01-15", "time": "12:00"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// No payload at all; the end time falls back to the server clock.
	w = e.do(t, "POST", "/api/breaks/end", e.employeeToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for body-less end, got %d: %s", w.Code, w.Body.String())
	}
	var ended struct {
		Break schema.Break `json:"break"`
	}
	decodeData(t, w, &ended)
	if ended.Break.EndTime == nil || *ended.Break.EndTime != "12:10" {
		t.Errorf("Expected end_time 12:10 from the clock, got %v", ended.Break.EndTime)
	}
	if ended.Break.DurationMinutes != 10 {
		t.Errorf("Expected duration 10, got %d", ended.Break.DurationMinutes)
	}
}

func TestPermissionLifecycle(t *testing.T) {
	e := setup(t)

	w := e.do(t, "POST", "/api/permissions", e.employeeToken, gin.H{
		"type": "vacation", "date_from": "2024-02-01", "date_to": "2024-02-03",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var request schema.Permission
	decodeData(t, w, &request)
	if request.DaysRequested != 3 {
		t.Errorf("Expected 3 days requested, got %d", request.DaysRequested)
	}
	if request.Status != schema.PermissionPending {
		t.Errorf("Expected pending, got %s", request.Status)
	}

	// Employees cannot review.
	path := "/api/permissions/1/review"
	w = e.do(t, "PUT", path, e.employeeToken, gin.H{"status": "approved"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for employee review, got %d", w.Code)
	}

	w = e.do(t, "PUT", path, e.adminToken, gin.H{"status": "approved"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var reviewed schema.Permission
	decodeData(t, w, &reviewed)
	if reviewed.Status != schema.PermissionApproved {
		t.Errorf("Expected approved, got %s", reviewed.Status)
	}
	if reviewed.ApprovedBy == nil || *reviewed.ApprovedBy != e.admin.ID {
		t.Errorf("Expected approved_by %d, got %v", e.admin.ID, reviewed.ApprovedBy)
	}
	if reviewed.ApprovedAt == nil {
		t.Error("Expected approved_at to be stamped")
	}

	w = e.do(t, "PUT", path, e.adminToken, gin.H{"status": "approved"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an already processed request, got %d", w.Code)
	}

	// A processed request cannot be cancelled by its owner either.
	w = e.do(t, "PUT", "/api/permissions/1/cancel", e.employeeToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 cancelling a processed request, got %d", w.Code)
	}

	w = e.do(t, "POST", "/api/permissions", e.employeeToken, gin.H{
		"type": "vacation", "date_from": "2024-02-10", "date_to": "2024-02-01",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an inverted date range, got %d", w.Code)
	}
}

func TestUserAdministration(t *testing.T) {
	e := setup(t)

	w := e.do(t, "GET", "/api/users", e.employeeToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for employee listing users, got %d", w.Code)
	}

	w = e.do(t, "GET", "/api/users", e.adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var users []schema.User
	decodeData(t, w, &users)
	if len(users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.Password != "" {
			t.Errorf("Expected passwords stripped, user %s has one", u.Username)
		}
	}

	w = e.do(t, "POST", "/api/users", e.adminToken, gin.H{
		"username": "rock", "password": "secret1", "name": "Dup",
		"email": "dup@example.com", "role": "employee",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate username, got %d", w.Code)
	}

	w = e.do(t, "DELETE", "/api/users/2", e.adminToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for self-delete, got %d", w.Code)
	}

	w = e.do(t, "DELETE", "/api/users/1", e.adminToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 deleting the employee, got %d: %s", w.Code, w.Body.String())
	}
	// The deleted user's sessions stop working.
	w = e.do(t, "GET", "/api/auth/me", e.employeeToken, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for the deleted user's token, got %d", w.Code)
	}
}

func TestTaskWorkflow(t *testing.T) {
	e := setup(t)

	w := e.do(t, "POST", "/api/tasks", e.employeeToken, gin.H{
		"user_id": e.employee.ID, "title": "nope", "priority": "low",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for employee creating tasks, got %d", w.Code)
	}

	w = e.do(t, "POST", "/api/tasks", e.adminToken, gin.H{
		"user_id": e.employee.ID, "title": "Prepare report", "priority": "high",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var task schema.Task
	decodeData(t, w, &task)
	if task.Status != schema.TaskPending || task.AssignedBy != e.admin.ID {
		t.Errorf("Unexpected new task: %+v", task)
	}

	// The assignee may move it; completed stamps completed_at.
	w = e.do(t, "PUT", "/api/tasks/1", e.employeeToken, gin.H{"status": "completed"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	decodeData(t, w, &task)
	if task.CompletedAt == nil {
		t.Error("Expected completed_at to be stamped")
	}

	// The assignee may not retitle it.
	w = e.do(t, "PUT", "/api/tasks/1", e.employeeToken, gin.H{"title": "renamed"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for employee editing the title, got %d", w.Code)
	}

	w = e.do(t, "POST", "/api/tasks", e.adminToken, gin.H{
		"user_id": 999, "title": "ghost", "priority": "low",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown assignee, got %d", w.Code)
	}
}

func TestNotesAreOwnerOnly(t *testing.T) {
	e := setup(t)

	w := e.do(t, "POST", "/api/notes", e.employeeToken, gin.H{"title": "mine", "content": "secret"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = e.do(t, "PUT", "/api/notes/1", e.adminToken, gin.H{"title": "stolen"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for another user's note, got %d", w.Code)
	}

	w = e.do(t, "GET", "/api/notes", e.adminToken, nil)
	var notes []schema.Note
	decodeData(t, w, &notes)
	if len(notes) != 0 {
		t.Errorf("Expected the admin to see no foreign notes, got %d", len(notes))
	}
}

func TestIncidentWorkflow(t *testing.T) {
	e := setup(t)

	w := e.do(t, "POST", "/api/incidents", e.employeeToken, gin.H{
		"title": "Broken badge reader", "description": "Door 3 reader rejects all cards",
		"category": "technical", "priority": "high",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = e.do(t, "PUT", "/api/incidents/1", e.adminToken, gin.H{
		"status": "resolved", "resolution": "Reader replaced",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var incident schema.Incident
	decodeData(t, w, &incident)
	if incident.ResolvedBy == nil || *incident.ResolvedBy != e.admin.ID {
		t.Errorf("Expected resolved_by %d, got %v", e.admin.ID, incident.ResolvedBy)
	}
	if incident.ResolvedAt == nil {
		t.Error("Expected resolved_at to be stamped")
	}

	// Bad enum value is rejected at the boundary.
	w = e.do(t, "POST", "/api/incidents", e.employeeToken, gin.H{
		"title": "x", "description": "y", "category": "bogus", "priority": "high",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid category, got %d", w.Code)
	}
}

func TestChatScoping(t *testing.T) {
	e := setup(t)

	e.do(t, "POST", "/api/chat", e.employeeToken, gin.H{"content": "hello everyone"})
	e.do(t, "POST", "/api/chat", e.adminToken, gin.H{"content": "hi rock", "to_user_id": e.employee.ID})

	third, _ := e.store.Users().Insert(&schema.User{Username: "eve", Role: schema.RoleEmployee})
	thirdToken := e.handler.Sessions.Issue(auth.Identity{UserID: third.ID, Username: "eve", Role: schema.RoleEmployee})

	w := e.do(t, "GET", "/api/chat", thirdToken, nil)
	var messages []schema.ChatMessage
	decodeData(t, w, &messages)
	if len(messages) != 1 {
		t.Errorf("Expected eve to see only the global message, got %d", len(messages))
	}

	w = e.do(t, "GET", "/api/chat", e.employeeToken, nil)
	decodeData(t, w, &messages)
	if len(messages) != 2 {
		t.Errorf("Expected rock to see the global message and the DM, got %d", len(messages))
	}

	w = e.do(t, "POST", "/api/chat", e.employeeToken, gin.H{"content": "hi ghost", "to_user_id": 999})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown recipient, got %d", w.Code)
	}
}

func TestDailyReportReplacedPerDay(t *testing.T) {
	e := setup(t)

	w := e.do(t, "POST", "/api/reports", e.employeeToken, gin.H{
		"date": "2024-01-15", "content": "first version",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = e.do(t, "POST", "/api/reports", e.employeeToken, gin.H{
		"date": "2024-01-15", "content": "final version",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on resubmission, got %d: %s", w.Code, w.Body.String())
	}

	w = e.do(t, "GET", "/api/reports?date=2024-01-15", e.employeeToken, nil)
	var reports []schema.DailyReport
	decodeData(t, w, &reports)
	if len(reports) != 1 {
		t.Fatalf("Expected a single report for the day, got %d", len(reports))
	}
	if reports[0].Content != "final version" {
		t.Errorf("Expected the resubmission to win, got %q", reports[0].Content)
	}
}

func TestHeartbeatWritesAFKTransitions(t *testing.T) {
	e := setup(t)

	e.do(t, "POST", "/api/activity/heartbeat", e.employeeToken,
		gin.H{"is_active": true, "idle_seconds": 0})
	w := e.do(t, "POST", "/api/activity/heartbeat", e.employeeToken,
		gin.H{"is_active": false, "idle_seconds": 0, "afk": true})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result struct {
		Status string `json:"status"`
	}
	decodeData(t, w, &result)
	if result.Status != "afk" {
		t.Errorf("Expected afk, got %s", result.Status)
	}

	logs := e.store.ActivityLogs().Find(func(l *schema.ActivityLog) bool {
		return l.Event == schema.EventAFKStart
	})
	if len(logs) != 1 {
		t.Errorf("Expected one afk_start log entry, got %d", len(logs))
	}

	w = e.do(t, "GET", "/api/activity/status", e.employeeToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for employee on presence list, got %d", w.Code)
	}
	w = e.do(t, "GET", "/api/activity/status", e.adminToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for admin on presence list, got %d", w.Code)
	}
}

func TestAttendanceScoping(t *testing.T) {
	e := setup(t)

	e.do(t, "POST", "/api/attendance/clock-in", e.employeeToken,
		gin.H{"date": "2024-01-15", "time": "08:00"})
	e.do(t, "POST", "/api/attendance/clock-in", e.adminToken,
		gin.H{"date": "2024-01-15", "time": "08:05"})

	w := e.do(t, "GET", "/api/attendance", e.employeeToken, nil)
	var mine []schema.Attendance
	decodeData(t, w, &mine)
	if len(mine) != 1 || mine[0].UserID != e.employee.ID {
		t.Errorf("Expected the employee to see only their record, got %+v", mine)
	}

	w = e.do(t, "GET", "/api/attendance", e.adminToken, nil)
	var all []schema.Attendance
	decodeData(t, w, &all)
	if len(all) != 2 {
		t.Errorf("Expected the admin to see both records, got %d", len(all))
	}

	// Supervisors may correct records, employees may not.
	w = e.do(t, "PUT", "/api/attendance/1", e.employeeToken, gin.H{"status": "half_day"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for employee correction, got %d", w.Code)
	}
	w = e.do(t, "PUT", "/api/attendance/1", e.adminToken, gin.H{"status": "half_day"})
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for admin correction, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHealthIsPublic(t *testing.T) {
	e := setup(t)
	w := e.do(t, "GET", "/api/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var result struct {
		Status      string         `json:"status"`
		Backend     string         `json:"backend"`
		Collections map[string]int `json:"collections"`
	}
	decodeData(t, w, &result)
	if result.Status != "ok" {
		t.Errorf("Expected status ok, got %q", result.Status)
	}
	if result.Backend != "file" {
		t.Errorf("Expected the active backend in the payload, got %q", result.Backend)
	}
	if result.Collections["users"] != 2 {
		t.Errorf("Expected 2 users in the counts, got %d", result.Collections["users"])
	}
}

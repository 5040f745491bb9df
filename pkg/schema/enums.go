package schema

// Account roles.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleEmployee   = "employee"
)

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceLate    = "late"
	AttendanceAbsent  = "absent"
	AttendanceHalfDay = "half_day"
)

// Break types.
const (
	BreakAM    = "break_am"
	BreakLunch = "lunch"
	BreakPM    = "break_pm"
	BreakOther = "other"
)

// Task statuses.
const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
)

// Incident statuses.
const (
	IncidentOpen     = "open"
	IncidentInReview = "in_review"
	IncidentResolved = "resolved"
	IncidentClosed   = "closed"
)

// Permission statuses.
const (
	PermissionPending   = "pending"
	PermissionApproved  = "approved"
	PermissionRejected  = "rejected"
	PermissionCancelled = "cancelled"
)

// ActivityLog events recorded by the presence endpoints.
const (
	EventAFKStart = "afk_start"
	EventAFKEnd   = "afk_end"
	EventLogin    = "login"
	EventLogout   = "logout"
)

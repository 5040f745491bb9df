// Package schema defines the record types shared by the store, the API
// handlers and the SDK. Every record embeds Meta, which carries the fields
// the engine manages on behalf of all collections.
package schema

// Meta holds the reserved fields of every record. The engine assigns ID and
// CreatedAt on insert and stamps UpdatedAt on every successful update;
// handlers never set these directly.
type Meta struct {
	ID        int    `json:"id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Record is the capability the engine requires of every collection element.
// It is implemented once, by *Meta, through embedding.
type Record interface {
	RecordID() int
	SetRecordID(id int)
	RecordCreatedAt() string
	SetRecordCreatedAt(ts string)
	SetRecordUpdatedAt(ts string)
}

func (m *Meta) RecordID() int                { return m.ID }
func (m *Meta) SetRecordID(id int)           { m.ID = id }
func (m *Meta) RecordCreatedAt() string      { return m.CreatedAt }
func (m *Meta) SetRecordCreatedAt(ts string) { m.CreatedAt = ts }
func (m *Meta) SetRecordUpdatedAt(ts string) { m.UpdatedAt = ts }

// User is an account that can authenticate against the API. Password holds
// the bcrypt hash; it is persisted but must be blanked by Sanitized before a
// user leaves the process over HTTP.
type User struct {
	Meta
	Username   string `json:"username"`
	Password   string `json:"password,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// Sanitized returns a copy safe to serialize in API responses.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// Attendance is one user's clock-in/out record for one calendar day.
// ClockOut is nil while the user is still clocked in.
type Attendance struct {
	Meta
	UserID        int     `json:"user_id"`
	Date          string  `json:"date"`
	ClockIn       string  `json:"clock_in"`
	ClockOut      *string `json:"clock_out"`
	Status        string  `json:"status"`
	WorkedMinutes int     `json:"worked_minutes,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// Break is one rest period inside a working day. EndTime is nil while the
// break is running.
type Break struct {
	Meta
	UserID          int     `json:"user_id"`
	Date            string  `json:"date"`
	Type            string  `json:"type"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
	IsOvertime      bool    `json:"is_overtime"`
	Overtime        int     `json:"overtime,omitempty"`
}

// Task is a unit of work assigned to a user.
type Task struct {
	Meta
	UserID      int     `json:"user_id"`
	AssignedBy  int     `json:"assigned_by"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     string  `json:"due_date,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

// Note is a private note owned by one user.
type Note struct {
	Meta
	UserID  int    `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Pinned  bool   `json:"pinned"`
}

// Incident is a reported issue with a resolution workflow.
type Incident struct {
	Meta
	UserID      int     `json:"user_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Resolution  string  `json:"resolution,omitempty"`
	ResolvedBy  *int    `json:"resolved_by,omitempty"`
	ResolvedAt  *string `json:"resolved_at,omitempty"`
}

// Permission is a leave request. DaysRequested counts both endpoints of the
// date range inclusively.
type Permission struct {
	Meta
	UserID         int     `json:"user_id"`
	Type           string  `json:"type"`
	DateFrom       string  `json:"date_from"`
	DateTo         string  `json:"date_to"`
	DaysRequested  int     `json:"days_requested"`
	Reason         string  `json:"reason,omitempty"`
	Status         string  `json:"status"`
	ApprovedBy     *int    `json:"approved_by,omitempty"`
	ApprovedAt     *string `json:"approved_at,omitempty"`
	RejectedReason string  `json:"rejected_reason,omitempty"`
}

// Announcement is a company-wide message authored by an admin or supervisor.
type Announcement struct {
	Meta
	AuthorID int    `json:"author_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Pinned   bool   `json:"pinned"`
}

// ChatMessage is either a global message (ToUserID nil) or a direct message
// to one user.
type ChatMessage struct {
	Meta
	UserID   int    `json:"user_id"`
	ToUserID *int   `json:"to_user_id,omitempty"`
	Content  string `json:"content"`
}

// DailyReport is one user's end-of-day summary; at most one per user per day.
type DailyReport struct {
	Meta
	UserID   int    `json:"user_id"`
	Date     string `json:"date"`
	Content  string `json:"content"`
	Blockers string `json:"blockers,omitempty"`
}

// ActivityLog is an audit trail entry (AFK transitions, logins, and similar
// events worth keeping after the in-memory presence state is gone).
type ActivityLog struct {
	Meta
	UserID int    `json:"user_id"`
	Event  string `json:"event"`
	Detail string `json:"detail,omitempty"`
}

// Package engine implements the record store shared by every route handler:
// a mutex-guarded in-memory snapshot of all collections, rewritten in full to
// the backing medium on every mutation.
package engine

import (
	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// Snapshot is the full persisted state: one ordered slice per collection.
// Slice order is insertion order, which after deletions is not id order.
type Snapshot struct {
	Users         []*schema.User         `json:"users"`
	Attendance    []*schema.Attendance   `json:"attendance"`
	Breaks        []*schema.Break        `json:"breaks"`
	Tasks         []*schema.Task         `json:"tasks"`
	Notes         []*schema.Note         `json:"notes"`
	Incidents     []*schema.Incident     `json:"incidents"`
	Permissions   []*schema.Permission   `json:"permissions"`
	Announcements []*schema.Announcement `json:"announcements"`
	ChatMessages  []*schema.ChatMessage  `json:"chat_messages"`
	DailyReports  []*schema.DailyReport  `json:"daily_reports"`
	ActivityLogs  []*schema.ActivityLog  `json:"activity_logs"`
}

// Persister is the backing medium behind a Store. Load must return an empty
// snapshot (not an error) when the medium is missing or unreadable, so that
// startup can fall through to seeding.
type Persister interface {
	Load() (*Snapshot, error)
	Save(state *Snapshot) error
	Close() error
}

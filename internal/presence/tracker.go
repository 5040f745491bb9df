// Package presence tracks who is currently active. The state is a plain
// in-process map fed by heartbeats; statuses are derived at read time from
// timestamp comparisons and everything is lost on restart, which is fine
// because AFK transitions are separately written to the activity log.
package presence

import (
	"sort"
	"sync"
	"time"
)

// Status classifies a user's recent activity.
type Status string

const (
	StatusActive  Status = "active"
	StatusIdle    Status = "idle"
	StatusAFK     Status = "afk"
	StatusOffline Status = "offline"
)

// Derivation thresholds.
const (
	OfflineAfter = 5 * time.Minute
	AFKAfterIdle = 3 * time.Minute
)

// UserStatus is the derived view returned to callers.
type UserStatus struct {
	UserID        int       `json:"user_id"`
	Status        Status    `json:"status"`
	IsActive      bool      `json:"is_active"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	LastActivity  time.Time `json:"last_activity"`
	IdleSeconds   int       `json:"idle_seconds"`
}

// Transition reports an AFK boundary crossing detected by a heartbeat, so
// the caller can append it to the activity log.
type Transition struct {
	UserID int
	Event  string // "afk_start" or "afk_end"
}

type entry struct {
	isActive      bool
	afk           bool
	idleSeconds   int
	lastHeartbeat time.Time
	lastActivity  time.Time
}

// Tracker is the process-lifetime presence map.
type Tracker struct {
	mu      sync.Mutex
	entries map[int]*entry
	now     func() time.Time
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[int]*entry), now: time.Now}
}

func (e *entry) derive(now time.Time) Status {
	switch {
	case now.Sub(e.lastHeartbeat) > OfflineAfter:
		return StatusOffline
	case e.afk || time.Duration(e.idleSeconds)*time.Second > AFKAfterIdle:
		return StatusAFK
	case e.isActive:
		return StatusActive
	default:
		return StatusIdle
	}
}

// Heartbeat records a client report and returns the derived status plus an
// AFK transition when this heartbeat crossed the boundary.
func (t *Tracker) Heartbeat(userID int, isActive bool, idleSeconds int, afk bool) (Status, *Transition) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	e, known := t.entries[userID]
	wasAFK := false
	if known {
		wasAFK = e.derive(now) == StatusAFK
	} else {
		e = &entry{lastActivity: now}
		t.entries[userID] = e
	}

	e.isActive = isActive
	e.afk = afk
	e.idleSeconds = idleSeconds
	e.lastHeartbeat = now
	if isActive && !afk {
		e.lastActivity = now
	}

	status := e.derive(now)
	isAFK := status == StatusAFK
	var transition *Transition
	if isAFK && !wasAFK {
		transition = &Transition{UserID: userID, Event: "afk_start"}
	} else if !isAFK && wasAFK {
		transition = &Transition{UserID: userID, Event: "afk_end"}
	}
	return status, transition
}

// StatusOf derives the current status for one user. Users that never sent a
// heartbeat are offline.
func (t *Tracker) StatusOf(userID int) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[userID]
	if !ok {
		return StatusOffline
	}
	return e.derive(t.now())
}

// Snapshot derives the status of every tracked user, ordered by user id.
func (t *Tracker) Snapshot() []UserStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	out := make([]UserStatus, 0, len(t.entries))
	for userID, e := range t.entries {
		out = append(out, UserStatus{
			UserID:        userID,
			Status:        e.derive(now),
			IsActive:      e.isActive,
			LastHeartbeat: e.lastHeartbeat,
			LastActivity:  e.lastActivity,
			IdleSeconds:   e.idleSeconds,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Forget drops a user from the tracker (account deletion).
func (t *Tracker) Forget(userID int) {
	t.mu.Lock()
	delete(t.entries, userID)
	t.mu.Unlock()
}

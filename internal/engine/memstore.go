package engine

import (
	"sync"
	"time"

	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// Store owns the in-memory snapshot and serializes all access to it. Every
// mutating call writes the full snapshot back through the persister before
// returning; a write failure leaves memory ahead of disk and is reported to
// the caller, never rolled back.
type Store struct {
	mu        sync.RWMutex
	state     *Snapshot
	persister Persister
	now       func() time.Time
}

// NewStore loads the persisted state (empty when the medium is missing or
// malformed) and wraps it in a Store. A nil persister gives a purely
// in-memory store, which the tests use.
func NewStore(p Persister) (*Store, error) {
	state := &Snapshot{}
	if p != nil {
		loaded, err := p.Load()
		if err != nil {
			return nil, err
		}
		if loaded != nil {
			state = loaded
		}
	}
	return &Store{state: state, persister: p, now: time.Now}, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// persistLocked writes the whole snapshot through the persister. Callers
// must hold the write lock.
func (s *Store) persistLocked() error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Save(s.state)
}

// Reload discards the in-memory state and re-reads the backing medium.
func (s *Store) Reload() error {
	if s.persister == nil {
		return nil
	}
	state, err := s.persister.Load()
	if err != nil {
		return err
	}
	if state == nil {
		state = &Snapshot{}
	}
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}

// Counts reports the size of every collection, keyed by collection name.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"users":         len(s.state.Users),
		"attendance":    len(s.state.Attendance),
		"breaks":        len(s.state.Breaks),
		"tasks":         len(s.state.Tasks),
		"notes":         len(s.state.Notes),
		"incidents":     len(s.state.Incidents),
		"permissions":   len(s.state.Permissions),
		"announcements": len(s.state.Announcements),
		"chat_messages": len(s.state.ChatMessages),
		"daily_reports": len(s.state.DailyReports),
		"activity_logs": len(s.state.ActivityLogs),
	}
}

// ResolveUser is the read-side join helper: it returns a sanitized copy of
// the user for attaching display fields to denormalized responses.
func (s *Store) ResolveUser(id int) (schema.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.state.Users {
		if u.ID == id {
			return u.Sanitized(), true
		}
	}
	return schema.User{}, false
}

// DeleteUserCascade removes a user together with every record owned by them.
// Both backends apply the same cascade policy.
func (s *Store) DeleteUserCascade(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	users := s.state.Users[:0]
	for _, u := range s.state.Users {
		if u.ID == id {
			found = true
			continue
		}
		users = append(users, u)
	}
	if !found {
		return false, nil
	}
	s.state.Users = users

	s.state.Attendance = dropOwned(s.state.Attendance, func(r *schema.Attendance) bool { return r.UserID == id })
	s.state.Breaks = dropOwned(s.state.Breaks, func(r *schema.Break) bool { return r.UserID == id })
	s.state.Tasks = dropOwned(s.state.Tasks, func(r *schema.Task) bool { return r.UserID == id })
	s.state.Notes = dropOwned(s.state.Notes, func(r *schema.Note) bool { return r.UserID == id })
	s.state.Incidents = dropOwned(s.state.Incidents, func(r *schema.Incident) bool { return r.UserID == id })
	s.state.Permissions = dropOwned(s.state.Permissions, func(r *schema.Permission) bool { return r.UserID == id })
	s.state.ChatMessages = dropOwned(s.state.ChatMessages, func(r *schema.ChatMessage) bool {
		return r.UserID == id || (r.ToUserID != nil && *r.ToUserID == id)
	})
	s.state.DailyReports = dropOwned(s.state.DailyReports, func(r *schema.DailyReport) bool { return r.UserID == id })
	s.state.ActivityLogs = dropOwned(s.state.ActivityLogs, func(r *schema.ActivityLog) bool { return r.UserID == id })

	return true, s.persistLocked()
}

func dropOwned[T any](items []T, owned func(T) bool) []T {
	kept := items[:0]
	for _, r := range items {
		if !owned(r) {
			kept = append(kept, r)
		}
	}
	return kept
}

// recordPtr constrains a collection element to a pointer to its record
// struct, which is what lets the read side hand out detached copies.
type recordPtr[T any] interface {
	schema.Record
	*T
}

// Collection is a typed view over one snapshot slice. All operations lock
// the owning store, and every record crossing the API is a detached copy,
// so callers may serialize or mutate results without holding any lock.
type Collection[T any, PT recordPtr[T]] struct {
	store *Store
	slice func(*Snapshot) *[]PT
}

// detach copies the record behind r so the snapshot keeps sole ownership
// of its own pointers.
func (c *Collection[T, PT]) detach(r PT) PT {
	cp := *(*T)(r)
	return PT(&cp)
}

// All returns the full ordered contents of the collection as copies.
func (c *Collection[T, PT]) All() []PT {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	items := *c.slice(c.store.state)
	out := make([]PT, len(items))
	for i, r := range items {
		out[i] = c.detach(r)
	}
	return out
}

// ByID scans for the first record with the given id.
func (c *Collection[T, PT]) ByID(id int) (PT, bool) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	for _, r := range *c.slice(c.store.state) {
		if r.RecordID() == id {
			return c.detach(r), true
		}
	}
	var zero PT
	return zero, false
}

// Find returns every record satisfying pred, preserving collection order.
func (c *Collection[T, PT]) Find(pred func(PT) bool) []PT {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	var out []PT
	for _, r := range *c.slice(c.store.state) {
		if pred(r) {
			out = append(out, c.detach(r))
		}
	}
	return out
}

// FindOne returns the first record satisfying pred.
func (c *Collection[T, PT]) FindOne(pred func(PT) bool) (PT, bool) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	for _, r := range *c.slice(c.store.state) {
		if pred(r) {
			return c.detach(r), true
		}
	}
	var zero PT
	return zero, false
}

// Insert assigns the next id (1 + current maximum, so ids are never reused
// after deletions), stamps created_at unless the caller supplied one,
// appends and persists. The snapshot stores its own copy; rec stays with
// the caller.
func (c *Collection[T, PT]) Insert(rec PT) (PT, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()
	items := c.slice(s.state)
	maxID := 0
	for _, r := range *items {
		if r.RecordID() > maxID {
			maxID = r.RecordID()
		}
	}
	rec.SetRecordID(maxID + 1)
	if rec.RecordCreatedAt() == "" {
		rec.SetRecordCreatedAt(s.timestamp())
	}
	*items = append(*items, c.detach(rec))
	return rec, s.persistLocked()
}

// Update locates the record by id and applies the caller's mutation to it.
// id and created_at survive the mutation untouched, updated_at is stamped.
// A miss reports (zero, false, nil) and performs no persistence write.
func (c *Collection[T, PT]) Update(id int, apply func(PT)) (PT, bool, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range *c.slice(s.state) {
		if r.RecordID() == id {
			createdAt := r.RecordCreatedAt()
			apply(r)
			r.SetRecordID(id)
			r.SetRecordCreatedAt(createdAt)
			r.SetRecordUpdatedAt(s.timestamp())
			return c.detach(r), true, s.persistLocked()
		}
	}
	var zero PT
	return zero, false, nil
}

// Delete removes the first record with the given id and reports whether a
// removal occurred. A miss performs no persistence write.
func (c *Collection[T, PT]) Delete(id int) (bool, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()
	items := c.slice(s.state)
	for i, r := range *items {
		if r.RecordID() == id {
			*items = append((*items)[:i], (*items)[i+1:]...)
			return true, s.persistLocked()
		}
	}
	return false, nil
}

// Typed collection handles.

func (s *Store) Users() *Collection[schema.User, *schema.User] {
	return &Collection[schema.User, *schema.User]{store: s, slice: func(st *Snapshot) *[]*schema.User { return &st.Users }}
}

func (s *Store) Attendance() *Collection[schema.Attendance, *schema.Attendance] {
	return &Collection[schema.Attendance, *schema.Attendance]{store: s, slice: func(st *Snapshot) *[]*schema.Attendance { return &st.Attendance }}
}

func (s *Store) Breaks() *Collection[schema.Break, *schema.Break] {
	return &Collection[schema.Break, *schema.Break]{store: s, slice: func(st *Snapshot) *[]*schema.Break { return &st.Breaks }}
}

func (s *Store) Tasks() *Collection[schema.Task, *schema.Task] {
	return &Collection[schema.Task, *schema.Task]{store: s, slice: func(st *Snapshot) *[]*schema.Task { return &st.Tasks }}
}

func (s *Store) Notes() *Collection[schema.Note, *schema.Note] {
	return &Collection[schema.Note, *schema.Note]{store: s, slice: func(st *Snapshot) *[]*schema.Note { return &st.Notes }}
}

func (s *Store) Incidents() *Collection[schema.Incident, *schema.Incident] {
	return &Collection[schema.Incident, *schema.Incident]{store: s, slice: func(st *Snapshot) *[]*schema.Incident { return &st.Incidents }}
}

func (s *Store) Permissions() *Collection[schema.Permission, *schema.Permission] {
	return &Collection[schema.Permission, *schema.Permission]{store: s, slice: func(st *Snapshot) *[]*schema.Permission { return &st.Permissions }}
}

func (s *Store) Announcements() *Collection[schema.Announcement, *schema.Announcement] {
	return &Collection[schema.Announcement, *schema.Announcement]{store: s, slice: func(st *Snapshot) *[]*schema.Announcement { return &st.Announcements }}
}

func (s *Store) ChatMessages() *Collection[schema.ChatMessage, *schema.ChatMessage] {
	return &Collection[schema.ChatMessage, *schema.ChatMessage]{store: s, slice: func(st *Snapshot) *[]*schema.ChatMessage { return &st.ChatMessages }}
}

func (s *Store) DailyReports() *Collection[schema.DailyReport, *schema.DailyReport] {
	return &Collection[schema.DailyReport, *schema.DailyReport]{store: s, slice: func(st *Snapshot) *[]*schema.DailyReport { return &st.DailyReports }}
}

func (s *Store) ActivityLogs() *Collection[schema.ActivityLog, *schema.ActivityLog] {
	return &Collection[schema.ActivityLog, *schema.ActivityLog]{store: s, slice: func(st *Snapshot) *[]*schema.ActivityLog { return &st.ActivityLogs }}
}

// Package activity keeps the newest-first window of a user's recent actions.
//
// Record inserts an optimistic entry immediately; ApplyRecord reconciles it
// with the backend's echo. Refresh replaces the whole window. Like feed.Feed,
// a Log performs no I/O and is owned by a single goroutine.
package activity

import (
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/justestif/moodmuse/internal/logging"
	"github.com/justestif/moodmuse/internal/metrics"
	"github.com/justestif/moodmuse/internal/model"
)

// DefaultWindow is the number of records kept.
const DefaultWindow = 10

// ActionSearch is recorded for every recommendation query.
const ActionSearch = "search"

// Status is the reconciliation state of a record.
type Status int

const (
	Confirmed Status = iota
	Pending
	Unconfirmed
)

func (s Status) String() string {
	switch s {
	case Confirmed:
		return "confirmed"
	case Pending:
		return "pending"
	case Unconfirmed:
		return "unconfirmed"
	default:
		return "unknown"
	}
}

// Record is one entry of the window.
type Record struct {
	model.Activity
	Status Status
}

// RefreshRequest asks for the latest Limit activities of UserID.
type RefreshRequest struct {
	Generation uint64
	UserID     string
	Limit      int
}

type RefreshResult struct {
	Generation uint64
	Activities []model.Activity
	Err        error
}

// RecordRequest asks the backend to store an activity. LocalID identifies
// the optimistic record it reconciles.
type RecordRequest struct {
	LocalID string
	UserID  string
	Action  string
	Mood    string
}

type RecordResult struct {
	LocalID  string
	UserID   string
	Activity model.Activity
	Err      error
}

// Log is the activity window of the current user.
type Log struct {
	window     int
	records    []Record
	userID     string
	generation uint64
	now        func() time.Time
}

// New returns an empty log. A window below 1 uses DefaultWindow.
func New(window int) *Log {
	if window < 1 {
		window = DefaultWindow
	}
	return &Log{window: window, now: time.Now}
}

// Refresh returns the request that reloads the window for userID. It returns
// false for an empty userID. Switching users drops the previous user's
// records right away.
func (l *Log) Refresh(userID string) (RefreshRequest, bool) {
	if userID == "" {
		return RefreshRequest{}, false
	}
	l.switchUser(userID)
	l.generation++
	return RefreshRequest{Generation: l.generation, UserID: userID, Limit: l.window}, true
}

// ApplyRefresh replaces the window with the fetched activities. A result
// from an older Refresh is discarded and false is returned. A failed
// refresh keeps the current window.
func (l *Log) ApplyRefresh(res RefreshResult) bool {
	if res.Generation != l.generation {
		logging.Debug().Uint64("generation", res.Generation).Uint64("current", l.generation).Msg("stale activity refresh discarded")
		metrics.StaleResponses.WithLabelValues("activity").Inc()
		return false
	}
	if res.Err != nil {
		logging.Warn().Err(res.Err).Str("user_id", l.userID).Msg("activity refresh failed")
		return true
	}

	acts := slices.Clone(res.Activities)
	if allTimestamped(acts) {
		slices.SortStableFunc(acts, func(a, b model.Activity) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	if len(acts) > l.window {
		acts = acts[:l.window]
	}

	l.records = make([]Record, len(acts))
	for i, a := range acts {
		l.records[i] = Record{Activity: a, Status: Confirmed}
	}
	return true
}

func allTimestamped(acts []model.Activity) bool {
	for _, a := range acts {
		if a.CreatedAt.IsZero() {
			return false
		}
	}
	return true
}

// Record inserts a pending record at the head and returns the request that
// stores it. It returns false for an empty userID.
func (l *Log) Record(userID, action, mood string) (RecordRequest, bool) {
	if userID == "" {
		return RecordRequest{}, false
	}
	if userID != l.userID {
		l.switchUser(userID)
		l.generation++
	}

	id := ulid.Make().String()
	rec := Record{
		Activity: model.Activity{
			ID:        id,
			UserID:    userID,
			Action:    action,
			Mood:      mood,
			CreatedAt: l.now().UTC(),
		},
		Status: Pending,
	}
	l.push(rec)

	return RecordRequest{LocalID: id, UserID: userID, Action: action, Mood: mood}, true
}

// ApplyRecord reconciles a stored activity with its optimistic record.
//
// On success the pending record is replaced in place by the echo, or, if a
// refresh already dropped it, the echo is inserted at the head unless a
// record with its id is present. On failure the record is marked
// Unconfirmed and kept.
func (l *Log) ApplyRecord(res RecordResult) {
	if res.UserID != l.userID {
		logging.Debug().Str("user_id", res.UserID).Msg("activity result for a previous user discarded")
		metrics.StaleResponses.WithLabelValues("activity").Inc()
		return
	}

	idx := l.indexOf(res.LocalID)

	if res.Err != nil {
		logging.Warn().Err(res.Err).Str("local_id", res.LocalID).Msg("activity logging failed")
		if idx >= 0 {
			l.records[idx].Status = Unconfirmed
		}
		return
	}

	echo := res.Activity
	if idx >= 0 {
		pending := l.records[idx].Activity
		if echo.ID == "" {
			echo.ID = pending.ID
		}
		if echo.CreatedAt.IsZero() {
			echo.CreatedAt = pending.CreatedAt
		}
		l.records[idx] = Record{Activity: echo, Status: Confirmed}
		return
	}

	if echo.ID != "" && l.indexOf(echo.ID) >= 0 {
		return
	}
	if echo.ID == "" {
		echo.ID = res.LocalID
	}
	if echo.CreatedAt.IsZero() {
		echo.CreatedAt = l.now().UTC()
	}
	l.push(Record{Activity: echo, Status: Confirmed})
}

// Clear empties the log and forgets the user. Outstanding results are
// discarded when they arrive.
func (l *Log) Clear() {
	l.records = nil
	l.userID = ""
	l.generation++
}

// Records returns a copy of the window, newest first.
func (l *Log) Records() []Record {
	return slices.Clone(l.records)
}

// UserID returns the user the window belongs to.
func (l *Log) UserID() string { return l.userID }

func (l *Log) switchUser(userID string) {
	if userID != l.userID {
		l.records = nil
	}
	l.userID = userID
}

func (l *Log) push(rec Record) {
	l.records = append([]Record{rec}, l.records...)
	if len(l.records) > l.window {
		l.records = l.records[:l.window]
	}
}

func (l *Log) indexOf(id string) int {
	return slices.IndexFunc(l.records, func(r Record) bool { return r.ID == id })
}

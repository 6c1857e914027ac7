package app

import (
	"slices"

	"github.com/justestif/moodmuse/internal/activity"
	"github.com/justestif/moodmuse/internal/feed"
	"github.com/justestif/moodmuse/internal/model"
	"github.com/justestif/moodmuse/internal/mood"
	"github.com/justestif/moodmuse/internal/router"
	"github.com/justestif/moodmuse/internal/session"
)

// Level is the severity of a notification.
type Level int

const (
	Info Level = iota
	Success
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notification is a transient message for the user.
type Notification struct {
	Level   Level
	Message string
}

// State is an immutable copy of the app state.
type State struct {
	View          router.View
	AuthModalOpen bool
	Session       session.Session

	Query   feed.Query
	Items   []model.Item
	HasMore bool
	Loading bool

	// Groups and Ungrouped partition Items by vibe when grouping is on.
	Groups    []mood.Group
	Ungrouped []model.Item

	Activity []activity.Record

	Notifications []Notification
}

// state copies the loop-owned state and drains notifications.
func (a *App) state() State {
	st := State{
		View:          a.router.Current(),
		AuthModalOpen: a.authModal,
		Session:       a.sess.Current(),
		Query:         a.feed.Query(),
		Items:         a.feed.Items(),
		HasMore:       a.feed.HasMore(),
		Loading:       a.feed.InFlight(),
		Groups:        slices.Clone(a.grouped),
		Ungrouped:     slices.Clone(a.ungrouped),
		Activity:      a.log.Records(),
		Notifications: a.notes,
	}
	if st.Session.Token != nil {
		tok := *st.Session.Token
		st.Session.Token = &tok
	}
	a.notes = nil
	return st
}

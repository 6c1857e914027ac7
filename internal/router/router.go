// Package router is the view state machine of the MoodMuse client.
package router

import (
	"errors"
	"fmt"
)

// View is the active screen.
type View int

const (
	Auth View = iota
	Landing
	Recommendations
	Profile
)

// Views lists every view.
var Views = []View{Auth, Landing, Recommendations, Profile}

func (v View) String() string {
	switch v {
	case Auth:
		return "auth"
	case Landing:
		return "landing"
	case Recommendations:
		return "recommendations"
	case Profile:
		return "profile"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// Event drives a transition.
type Event int

const (
	Authenticated Event = iota
	MoodSubmitted
	ProfileRequested
	Back
	Logout
)

// Events lists every event.
var Events = []Event{Authenticated, MoodSubmitted, ProfileRequested, Back, Logout}

func (e Event) String() string {
	switch e {
	case Authenticated:
		return "authenticated"
	case MoodSubmitted:
		return "mood_submitted"
	case ProfileRequested:
		return "profile_requested"
	case Back:
		return "back"
	case Logout:
		return "logout"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotAuthenticated  = errors.New("not authenticated")
)

type edge struct {
	from View
	on   Event
}

// transitions holds every legal edge except Logout, which is accepted from
// any view.
var transitions = map[edge]View{
	{Auth, Authenticated}:       Landing,
	{Landing, MoodSubmitted}:    Recommendations,
	{Landing, ProfileRequested}: Profile,
	{Recommendations, Back}:     Landing,
	{Profile, Back}:             Landing,
}

// Next returns the view reached from v on e without changing any state.
func Next(v View, e Event) (View, bool) {
	if e == Logout {
		return Auth, true
	}
	next, ok := transitions[edge{v, e}]
	return next, ok
}

// Router holds the current view.
type Router struct {
	current View
}

// New returns a router on the Auth view.
func New() *Router {
	return &Router{current: Auth}
}

// NewAt returns a router starting on v.
func NewAt(v View) *Router {
	return &Router{current: v}
}

// Current returns the active view.
func (r *Router) Current() View {
	return r.current
}

// Fire applies e. Views other than Auth require authenticated to be true.
// On error the current view is unchanged.
func (r *Router) Fire(e Event, authenticated bool) (View, error) {
	next, ok := Next(r.current, e)
	if !ok {
		return r.current, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, r.current)
	}
	if next != Auth && !authenticated {
		return r.current, fmt.Errorf("%w: %s requires a session", ErrNotAuthenticated, next)
	}
	r.current = next
	return next, nil
}

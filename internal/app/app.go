// Package app runs the MoodMuse client state machine.
//
// An App owns the session, the view router, the recommendation feed and the
// activity log. All of them are touched only by the goroutine running Run.
// Commands are queued with Dispatch; backend calls run as effects on their
// own goroutines and post their results back to the loop, which applies
// them in arrival order.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/justestif/moodmuse/internal/activity"
	"github.com/justestif/moodmuse/internal/feed"
	"github.com/justestif/moodmuse/internal/gateway"
	"github.com/justestif/moodmuse/internal/logging"
	"github.com/justestif/moodmuse/internal/model"
	"github.com/justestif/moodmuse/internal/mood"
	"github.com/justestif/moodmuse/internal/router"
	"github.com/justestif/moodmuse/internal/session"
	"github.com/justestif/moodmuse/internal/spotify"
)

// DefaultTimeout bounds every effect.
const DefaultTimeout = 10 * time.Second

// ErrStopped is returned by Snapshot and Settle once Run has returned.
var ErrStopped = errors.New("app stopped")

// Gateway is the backend the app talks to. *gateway.Client implements it.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*gateway.AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (*gateway.AuthResponse, error)
	Logout(ctx context.Context) error
	RecentActivity(ctx context.Context, userID string, limit int) ([]model.Activity, error)
	LogActivity(ctx context.Context, userID, action, mood string) (model.Activity, error)
	Recommend(ctx context.Context, req gateway.RecommendRequest) ([]model.Item, error)
}

// Enricher fills in song details after a page is fetched.
type Enricher interface {
	Enrich(ctx context.Context, items []model.Item) ([]model.Item, []spotify.ItemError)
}

// SessionStore persists the session between runs. *session.Store
// implements it.
type SessionStore interface {
	Load() (*session.Session, error)
	Save(s session.Session) error
	Delete() error
}

// App is the client state machine.
type App struct {
	gw       Gateway
	timeout  time.Duration
	store    SessionStore
	enricher Enricher
	groups   int

	inbox chan message
	done  chan struct{}

	// Loop-owned state.
	sess      *session.Manager
	router    *router.Router
	feed      *feed.Feed
	log       *activity.Log
	authModal bool
	authGen   uint64 // bumped by each sign-in attempt and by logout
	grouped   []mood.Group
	ungrouped []model.Item
	notes     []Notification
	inFlight  int
	waiters   []chan State
	ctx       context.Context
}

// Option configures an App.
type Option func(*App)

// WithTimeout bounds each backend call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithPageSize sets the recommendation page size.
func WithPageSize(n int) Option {
	return func(a *App) {
		a.feed = feed.New(n)
	}
}

// WithWindow sets the activity window size.
func WithWindow(n int) Option {
	return func(a *App) {
		a.log = activity.New(n)
	}
}

// WithSessionStore restores the session on start and keeps it saved.
func WithSessionStore(s SessionStore) Option {
	return func(a *App) {
		a.store = s
	}
}

// WithEnricher enriches song results before they reach the feed.
func WithEnricher(e Enricher) Option {
	return func(a *App) {
		a.enricher = e
	}
}

// WithGrouping groups song results into k vibe groups. k < 1 disables it.
func WithGrouping(k int) Option {
	return func(a *App) {
		a.groups = k
	}
}

// New creates an app on the Auth view with an anonymous session.
func New(gw Gateway, opts ...Option) *App {
	a := &App{
		gw:        gw,
		timeout:   DefaultTimeout,
		inbox:     make(chan message, 64),
		done:      make(chan struct{}),
		sess:      session.NewManager(),
		router:    router.New(),
		feed:      feed.New(feed.DefaultPageSize),
		log:       activity.New(activity.DefaultWindow),
		authModal: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run processes commands and effect results until ctx is done. A persisted
// session is restored first. Run must be called once.
func (a *App) Run(ctx context.Context) error {
	defer close(a.done)
	a.ctx = ctx

	a.restore()

	for {
		select {
		case <-ctx.Done():
			for _, w := range a.waiters {
				close(w)
			}
			a.waiters = nil
			return nil
		case msg := <-a.inbox:
			msg.apply(a)
			a.settle()
		}
	}
}

// Dispatch queues a command. It returns false if the app has stopped.
func (a *App) Dispatch(cmd Command) bool {
	return a.post(cmd)
}

// Snapshot returns the current state and drains pending notifications.
func (a *App) Snapshot(ctx context.Context) (State, error) {
	return a.request(ctx, snapshotRequest{reply: make(chan State, 1)})
}

// Settle waits until every queued command and effect has been applied, then
// returns the state like Snapshot.
func (a *App) Settle(ctx context.Context) (State, error) {
	return a.request(ctx, settleRequest{reply: make(chan State, 1)})
}

type replier interface {
	message
	replyChan() chan State
}

func (a *App) request(ctx context.Context, r replier) (State, error) {
	select {
	case a.inbox <- r:
	case <-a.done:
		return State{}, ErrStopped
	case <-ctx.Done():
		return State{}, ctx.Err()
	}

	select {
	case st, ok := <-r.replyChan():
		if !ok {
			return State{}, ErrStopped
		}
		return st, nil
	case <-a.done:
		return State{}, ErrStopped
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

func (a *App) post(msg message) bool {
	select {
	case <-a.done:
		return false
	default:
	}
	select {
	case a.inbox <- msg:
		return true
	case <-a.done:
		return false
	}
}

// settle answers Settle callers once nothing is in flight.
func (a *App) settle() {
	if a.inFlight > 0 || len(a.waiters) == 0 || len(a.inbox) > 0 {
		return
	}
	st := a.state()
	for _, w := range a.waiters {
		w <- st
	}
	a.waiters = nil
}

// spawn runs fn off the loop with a bounded context carrying the session
// token, then applies its result on the loop.
func (a *App) spawn(op gateway.Op, fn func(ctx context.Context) func(*App)) {
	a.inFlight++
	tok := a.sess.Current().Token

	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, a.timeout)
		defer cancel()
		ctx = logging.WithCorrelationID(ctx, logging.NewCorrelationID())
		ctx = gateway.WithToken(ctx, tok)

		logging.Ctx(ctx).Debug().Str("op", string(op)).Msg("effect started")
		done := fn(ctx)
		a.post(effectResult{fn: done})
	}()
}

func (a *App) notify(level Level, msg string) {
	a.notes = append(a.notes, Notification{Level: level, Message: msg})
}

func (a *App) restore() {
	if a.store == nil {
		return
	}
	s, err := a.store.Load()
	if err != nil {
		logging.Warn().Err(err).Msg("loading saved session")
		return
	}
	if s == nil || !a.sess.Restore(*s) {
		return
	}

	a.router = router.NewAt(router.Landing)
	a.authModal = false
	logging.Info().Str("user_id", s.UserID).Msg("session restored")
	a.refreshActivity()
}

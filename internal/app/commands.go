package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/justestif/moodmuse/internal/activity"
	"github.com/justestif/moodmuse/internal/feed"
	"github.com/justestif/moodmuse/internal/gateway"
	"github.com/justestif/moodmuse/internal/logging"
	"github.com/justestif/moodmuse/internal/model"
	"github.com/justestif/moodmuse/internal/router"
	"github.com/justestif/moodmuse/internal/session"
)

// User-facing messages.
const (
	MsgLoggedOut        = "Logged out successfully"
	MsgRecommendNetwork = "Failed to fetch recommendations. Check your connection or server."

	msgWelcomeBack = "Welcome back, %s!"
	msgWelcomeNew  = "Welcome to MoodMuse, %s!"
)

type message interface {
	apply(a *App)
}

// Command is a user intent handled by the event loop.
type Command interface {
	message
	command()
}

// Login signs in with email and password.
type Login struct {
	Email    string
	Password string
}

// Register creates an account and signs in.
type Register struct {
	Name     string
	Email    string
	Password string
}

// Logout signs out. The local session is always cleared.
type Logout struct{}

// DismissAuth closes the authentication form without signing in.
type DismissAuth struct{}

// SubmitMood starts a recommendation query from the landing view.
type SubmitMood struct {
	Mood        string
	ContentType model.ContentType
	Language    string
	Text        string
}

// LoadMore fetches the next page of recommendations.
type LoadMore struct{}

// OpenProfile shows the profile view.
type OpenProfile struct{}

// Back returns to the landing view.
type Back struct{}

// RefreshActivity reloads the activity window.
type RefreshActivity struct{}

func (Login) command()           {}
func (Register) command()        {}
func (Logout) command()          {}
func (DismissAuth) command()     {}
func (SubmitMood) command()      {}
func (LoadMore) command()        {}
func (OpenProfile) command()     {}
func (Back) command()            {}
func (RefreshActivity) command() {}

func (c Login) apply(a *App) {
	if a.router.Current() != router.Auth {
		logging.Debug().Msg("login ignored outside the auth view")
		return
	}
	if err := session.ValidateLogin(c.Email, c.Password); err != nil {
		a.notify(Error, validationMessage(err))
		return
	}

	a.authGen++
	gen := a.authGen
	a.spawn(gateway.OpLogin, func(ctx context.Context) func(*App) {
		resp, err := a.gw.Login(ctx, c.Email, c.Password)
		return func(a *App) {
			if gen != a.authGen || a.router.Current() != router.Auth {
				logging.Debug().Msg("login result discarded, superseded")
				return
			}
			s, err := a.sess.ApplyLogin(c.Email, resp, err)
			if err != nil {
				a.authFailed(err)
				return
			}
			a.authenticated(s, fmt.Sprintf(msgWelcomeBack, s.Name))
		}
	})
}

func (c Register) apply(a *App) {
	if a.router.Current() != router.Auth {
		logging.Debug().Msg("register ignored outside the auth view")
		return
	}
	if err := session.ValidateRegister(c.Name, c.Email, c.Password); err != nil {
		a.notify(Error, validationMessage(err))
		return
	}

	a.authGen++
	gen := a.authGen
	a.spawn(gateway.OpRegister, func(ctx context.Context) func(*App) {
		resp, err := a.gw.Register(ctx, c.Name, c.Email, c.Password)
		return func(a *App) {
			if gen != a.authGen || a.router.Current() != router.Auth {
				logging.Debug().Msg("register result discarded, superseded")
				return
			}
			s, err := a.sess.ApplyRegister(c.Name, c.Email, resp, err)
			if err != nil {
				a.authFailed(err)
				return
			}
			a.authenticated(s, fmt.Sprintf(msgWelcomeNew, s.Name))
		}
	})
}

// validationMessage returns the user-facing text of a form error.
func validationMessage(err error) string {
	var (
		fe *feed.ValidationError
		se *session.ValidationError
	)
	switch {
	case errors.As(err, &fe):
		return fe.Message
	case errors.As(err, &se):
		return se.Message
	default:
		return err.Error()
	}
}

func (a *App) authFailed(err error) {
	var ae *session.AuthError
	if errors.As(err, &ae) {
		a.notify(Error, ae.Reason)
	} else {
		a.notify(Error, err.Error())
	}
	logging.Info().Err(err).Msg("authentication failed")
}

func (a *App) authenticated(s session.Session, welcome string) {
	if _, err := a.router.Fire(router.Authenticated, s.Authenticated); err != nil {
		logging.Error().Err(err).Msg("advancing after authentication")
		return
	}
	a.authModal = false
	a.notify(Success, welcome)
	logging.Info().Str("user_id", s.UserID).Msg("signed in")

	if a.store != nil {
		if err := a.store.Save(s); err != nil {
			logging.Warn().Err(err).Msg("saving session")
		}
	}
	a.refreshActivity()
}

func (Logout) apply(a *App) {
	if a.sess.Current().Authenticated {
		// Best effort, sent with the token of the session being closed.
		a.spawn(gateway.OpLogout, func(ctx context.Context) func(*App) {
			err := a.gw.Logout(ctx)
			return func(*App) {
				if err != nil {
					logging.Warn().Err(err).Msg("backend logout failed")
				}
			}
		})
	}

	a.authGen++
	a.sess.Reset()
	if _, err := a.router.Fire(router.Logout, false); err != nil {
		logging.Error().Err(err).Msg("routing logout")
	}
	a.feed.Reset()
	a.log.Clear()
	a.grouped, a.ungrouped = nil, nil
	a.authModal = true

	if a.store != nil {
		if err := a.store.Delete(); err != nil {
			logging.Warn().Err(err).Msg("deleting saved session")
		}
	}
	a.notify(Success, MsgLoggedOut)
}

func (DismissAuth) apply(a *App) {
	if a.router.Current() == router.Auth {
		a.authModal = false
	}
}

func (c SubmitMood) apply(a *App) {
	s := a.sess.Current()
	if _, ok := router.Next(a.router.Current(), router.MoodSubmitted); !ok || !s.Authenticated {
		logging.Debug().Str("view", a.router.Current().String()).Msg("mood submission ignored")
		return
	}

	req, err := a.feed.Submit(c.Mood, c.ContentType, c.Language, c.Text)
	if err != nil {
		a.notify(Error, validationMessage(err))
		return
	}
	if _, err := a.router.Fire(router.MoodSubmitted, true); err != nil {
		logging.Error().Err(err).Msg("routing mood submission")
		return
	}
	a.grouped, a.ungrouped = nil, nil

	a.fetchPage(req)

	// Logged after the query is dispatched; failures never touch the feed.
	label := req.Query.Mood
	if label == "" {
		label = req.Query.Text
	}
	if rec, ok := a.log.Record(s.UserID, activity.ActionSearch, label); ok {
		a.recordActivity(rec)
	}
}

func (LoadMore) apply(a *App) {
	if a.router.Current() != router.Recommendations {
		return
	}
	if req, ok := a.feed.LoadMore(); ok {
		a.fetchPage(req)
	}
}

func (OpenProfile) apply(a *App) {
	if _, err := a.router.Fire(router.ProfileRequested, a.sess.Current().Authenticated); err != nil {
		logging.Debug().Err(err).Msg("profile request ignored")
		return
	}
	a.refreshActivity()
}

func (Back) apply(a *App) {
	if _, err := a.router.Fire(router.Back, a.sess.Current().Authenticated); err != nil {
		logging.Debug().Err(err).Msg("back ignored")
	}
}

func (RefreshActivity) apply(a *App) {
	a.refreshActivity()
}

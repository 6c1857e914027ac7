// Package session holds the identity and authentication state of the
// current MoodMuse user.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/justestif/moodmuse/internal/gateway"
)

// AnonymousName is the display name of a signed-out user.
const AnonymousName = "User"

// Session is the current identity. Token is only set after a login whose
// response carried an access token.
type Session struct {
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	UserID        string        `json:"user_id"`
	Authenticated bool          `json:"authenticated"`
	Token         *oauth2.Token `json:"token,omitempty"`
}

// Anonymous returns the signed-out session.
func Anonymous() Session {
	return Session{Name: AnonymousName}
}

// Valid reports whether s can be restored at now: it is authenticated and
// its token, if any, has not expired.
func (s Session) Valid(now time.Time) bool {
	if !s.Authenticated {
		return false
	}
	if s.Token == nil || s.Token.Expiry.IsZero() {
		return true
	}
	return now.Before(s.Token.Expiry)
}

// ValidationError is a form error caught before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AuthError is a failed login or register. Reason is the text shown to the
// user.
type AuthError struct {
	Op     gateway.Op
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

var networkReasons = map[gateway.Op]string{
	gateway.OpLogin:    "Login failed. Try again later.",
	gateway.OpRegister: "Registration failed. Try again later.",
}

func authError(op gateway.Op, err error) *AuthError {
	if msg, ok := gateway.ServerMessage(err); ok {
		return &AuthError{Op: op, Reason: msg, Err: err}
	}
	reason := networkReasons[op]
	if !gateway.IsNetwork(err) {
		reason = gateway.GenericMessage(op)
	}
	return &AuthError{Op: op, Reason: reason, Err: err}
}

// ValidateLogin checks the login form.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// ValidateRegister checks the registration form.
func ValidateRegister(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	return ValidateLogin(email, password)
}

// Manager owns the current session. It is not safe for concurrent use; the
// app event loop is its only writer.
type Manager struct {
	current Session
	now     func() time.Time
}

// NewManager returns a manager holding the anonymous session.
func NewManager() *Manager {
	return &Manager{current: Anonymous(), now: time.Now}
}

// Current returns a copy of the current session.
func (m *Manager) Current() Session {
	return m.current
}

// ApplyLogin applies the outcome of a login call for email. On error the
// current session is left untouched and an *AuthError is returned.
func (m *Manager) ApplyLogin(email string, resp *gateway.AuthResponse, err error) (Session, error) {
	if err != nil {
		return m.current, authError(gateway.OpLogin, err)
	}
	if resp == nil {
		resp = &gateway.AuthResponse{}
	}

	name := firstNonEmpty(resp.UserMetadata.Name, resp.Name, AnonymousName)
	m.current = Session{
		Name:          name,
		Email:         firstNonEmpty(resp.User, email),
		UserID:        firstNonEmpty(string(resp.UserID), resp.User, email),
		Authenticated: true,
		Token:         tokenFromResponse(resp),
	}
	return m.current, nil
}

// ApplyRegister applies the outcome of a register call. The display name
// comes from the form since the backend does not echo it.
func (m *Manager) ApplyRegister(name, email string, resp *gateway.AuthResponse, err error) (Session, error) {
	if err != nil {
		return m.current, authError(gateway.OpRegister, err)
	}
	if resp == nil {
		resp = &gateway.AuthResponse{}
	}

	m.current = Session{
		Name:          firstNonEmpty(strings.TrimSpace(name), AnonymousName),
		Email:         firstNonEmpty(resp.User, email),
		UserID:        firstNonEmpty(string(resp.UserID), resp.User, email),
		Authenticated: true,
	}
	return m.current, nil
}

// Restore adopts a persisted session if it is still valid.
func (m *Manager) Restore(s Session) bool {
	if !s.Valid(m.now()) {
		return false
	}
	m.current = s
	return true
}

// Reset signs the user out locally.
func (m *Manager) Reset() {
	m.current = Anonymous()
}

// tokenFromResponse builds the bearer token. When the access token is a JWT
// its exp claim sets the expiry; the signature is the backend's concern.
func tokenFromResponse(resp *gateway.AuthResponse) *oauth2.Token {
	if resp.AccessToken == "" {
		return nil
	}

	tok := &oauth2.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    "Bearer",
	}
	if exp, err := jwtExpiry(resp.AccessToken); err == nil {
		tok.Expiry = exp
	}
	return tok
}

var errNoExpiry = errors.New("token has no exp claim")

func jwtExpiry(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errNoExpiry
	}
	return exp.Time, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

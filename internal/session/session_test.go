package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/justestif/moodmuse/internal/gateway"
	"github.com/justestif/moodmuse/internal/model"
)

func TestApplyLogin(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		resp      *gateway.AuthResponse
		wantName  string
		wantEmail string
		wantID    string
		wantToken string
	}{
		{
			name:  "metadata name and token",
			email: "a@b.com",
			resp: func() *gateway.AuthResponse {
				r := &gateway.AuthResponse{User: "a@b.com", AccessToken: "t1"}
				r.UserMetadata.Name = "Ann"
				return r
			}(),
			wantName:  "Ann",
			wantEmail: "a@b.com",
			wantID:    "a@b.com",
			wantToken: "t1",
		},
		{
			name:      "top-level name and numeric id",
			email:     "a@b.com",
			resp:      &gateway.AuthResponse{User: "a@b.com", Name: "Annie", UserID: model.FlexString("42")},
			wantName:  "Annie",
			wantEmail: "a@b.com",
			wantID:    "42",
		},
		{
			name:      "empty response falls back to submitted email",
			email:     "c@d.com",
			resp:      &gateway.AuthResponse{},
			wantName:  AnonymousName,
			wantEmail: "c@d.com",
			wantID:    "c@d.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			got, err := m.ApplyLogin(tt.email, tt.resp, nil)
			if err != nil {
				t.Fatalf("ApplyLogin() error = %v", err)
			}

			if !got.Authenticated {
				t.Error("Authenticated = false")
			}
			if got.Name != tt.wantName || got.Email != tt.wantEmail || got.UserID != tt.wantID {
				t.Errorf("session = %+v, want name=%q email=%q id=%q", got, tt.wantName, tt.wantEmail, tt.wantID)
			}
			if tt.wantToken == "" {
				if got.Token != nil {
					t.Errorf("Token = %+v, want nil", got.Token)
				}
			} else if got.Token == nil || got.Token.AccessToken != tt.wantToken {
				t.Errorf("Token = %+v, want %q", got.Token, tt.wantToken)
			}
			if m.Current() != got {
				t.Error("Current() does not match returned session")
			}
		})
	}
}

func TestApplyLogin_FailureLeavesSession(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantReason string
	}{
		{
			name:       "server message",
			err:        &gateway.ServerError{Op: gateway.OpLogin, Status: 401, Message: "Invalid login credentials"},
			wantReason: "Invalid login credentials",
		},
		{
			name:       "network failure",
			err:        &gateway.NetworkError{Op: gateway.OpLogin, Err: context.DeadlineExceeded},
			wantReason: "Login failed. Try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			before, _ := m.ApplyRegister("Ann", "a@b.com", &gateway.AuthResponse{User: "a@b.com"}, nil)

			got, err := m.ApplyLogin("x@y.com", nil, tt.err)
			var authErr *AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("error = %v, want *AuthError", err)
			}
			if authErr.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", authErr.Reason, tt.wantReason)
			}
			if !errors.Is(err, tt.err) {
				t.Error("AuthError does not wrap the gateway error")
			}
			if got != before || m.Current() != before {
				t.Errorf("session changed on failure: %+v, want %+v", m.Current(), before)
			}
		})
	}
}

func TestApplyRegister(t *testing.T) {
	m := NewManager()
	got, err := m.ApplyRegister("  Ann ", "a@b.com", &gateway.AuthResponse{User: "a@b.com"}, nil)
	if err != nil {
		t.Fatalf("ApplyRegister() error = %v", err)
	}
	want := Session{Name: "Ann", Email: "a@b.com", UserID: "a@b.com", Authenticated: true}
	if got != want {
		t.Errorf("session = %+v, want %+v", got, want)
	}

	_, err = m.ApplyRegister("Bob", "b@c.com", nil, &gateway.NetworkError{Op: gateway.OpRegister, Err: errors.New("refused")})
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Reason != "Registration failed. Try again later." {
		t.Errorf("error = %v, want network AuthError", err)
	}
	if m.Current() != want {
		t.Error("failed register changed the session")
	}
}

func TestReset(t *testing.T) {
	m := NewManager()
	if _, err := m.ApplyLogin("a@b.com", &gateway.AuthResponse{AccessToken: "t1"}, nil); err != nil {
		t.Fatal(err)
	}

	m.Reset()
	if m.Current() != Anonymous() {
		t.Errorf("Current() = %+v, want anonymous", m.Current())
	}
	if m.Current().Name != "User" {
		t.Errorf("Name = %q, want User", m.Current().Name)
	}
}

func TestTokenExpiryFromJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "a@b.com",
		"exp": exp.Unix(),
	}).SignedString([]byte("unrelated-secret"))
	if err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	got, err := m.ApplyLogin("a@b.com", &gateway.AuthResponse{AccessToken: raw, RefreshToken: "r1"}, nil)
	if err != nil {
		t.Fatalf("ApplyLogin() error = %v", err)
	}
	if !got.Token.Expiry.Equal(exp) {
		t.Errorf("Expiry = %v, want %v", got.Token.Expiry, exp)
	}
	if got.Token.RefreshToken != "r1" {
		t.Errorf("RefreshToken = %q, want r1", got.Token.RefreshToken)
	}
}

func TestValid(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		s    Session
		want bool
	}{
		{"anonymous", Anonymous(), false},
		{"no token", Session{Authenticated: true}, true},
		{"token without expiry", Session{Authenticated: true, Token: &oauth2.Token{AccessToken: "t"}}, true},
		{"unexpired", Session{Authenticated: true, Token: &oauth2.Token{AccessToken: "t", Expiry: now.Add(time.Minute)}}, true},
		{"expired", Session{Authenticated: true, Token: &oauth2.Token{AccessToken: "t", Expiry: now.Add(-time.Minute)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Valid(now); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRestore(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager()
	m.now = func() time.Time { return now }

	expired := Session{Name: "Ann", Authenticated: true, Token: &oauth2.Token{AccessToken: "t", Expiry: now.Add(-time.Second)}}
	if m.Restore(expired) {
		t.Error("Restore(expired) = true")
	}
	if m.Current().Authenticated {
		t.Error("expired session was adopted")
	}

	valid := Session{Name: "Ann", Email: "a@b.com", UserID: "a@b.com", Authenticated: true}
	if !m.Restore(valid) {
		t.Error("Restore(valid) = false")
	}
	if m.Current() != valid {
		t.Errorf("Current() = %+v, want %+v", m.Current(), valid)
	}
}

func TestValidateForms(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantField string
	}{
		{"login ok", ValidateLogin("a@b.com", "x"), ""},
		{"login no email", ValidateLogin("  ", "x"), "email"},
		{"login no password", ValidateLogin("a@b.com", ""), "password"},
		{"register no name", ValidateRegister("", "a@b.com", "x"), "name"},
		{"register no email", ValidateRegister("Ann", "", "x"), "email"},
		{"register ok", ValidateRegister("Ann", "a@b.com", "x"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantField == "" {
				if tt.err != nil {
					t.Errorf("error = %v, want nil", tt.err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(tt.err, &ve) || ve.Field != tt.wantField {
				t.Errorf("error = %v, want ValidationError on %q", tt.err, tt.wantField)
			}
		})
	}
}

package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/justestif/moodmuse/internal/store"
)

// ErrInvalidToken is returned for access tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the claims of an access token. Subject is the user ID.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 access tokens and keeps refresh tokens in memory.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	refresh map[string]string // refresh token -> user ID
}

// NewTokenIssuer creates an issuer signing with secret.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		refresh: make(map[string]string),
	}
}

// Issue creates an access token and a refresh token for u.
func (t *TokenIssuer) Issue(u *store.User) (*oauth2.Token, error) {
	now := t.now()
	claims := Claims{
		Email: u.Email,
		Name:  u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    "moodmuse-dev",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	refresh, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.refresh[refresh] = u.ID
	t.mu.Unlock()

	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		Expiry:       now.Add(t.ttl),
	}, nil
}

// Verify parses and validates an access token.
func (t *TokenIssuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

// Revoke drops every refresh token of userID.
func (t *TokenIssuer) Revoke(userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for tok, id := range t.refresh {
		if id == userID {
			delete(t.refresh, tok)
			n++
		}
	}
	return n
}

// RefreshTokens returns the number of live refresh tokens.
func (t *TokenIssuer) RefreshTokens() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.refresh)
}

// generateRefreshToken creates a cryptographically random refresh token.
func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

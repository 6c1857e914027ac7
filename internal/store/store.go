// Package store persists development-backend users and activities in
// memory, SQLite or PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/moodmuse/internal/model"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// User is a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Store defines the persistence used by the development backend.
type Store interface {
	// CreateUser inserts u, assigning ID and CreatedAt. Returns ErrConflict
	// if the email is taken.
	CreateUser(ctx context.Context, u *User) error

	// UserByEmail returns ErrNotFound if no user has the email.
	UserByEmail(ctx context.Context, email string) (*User, error)

	// AddActivity inserts a, assigning ID and, when zero, CreatedAt.
	AddActivity(ctx context.Context, a *model.Activity) error

	// RecentActivities returns up to limit activities of userID, newest first.
	RecentActivities(ctx context.Context, userID string, limit int) ([]model.Activity, error)

	Close() error
}

// Open returns the store named by kind: "memory", "sqlite" (dsn is a file
// path) or "postgres" (dsn is a connection URL).
func Open(ctx context.Context, kind, dsn string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}

func newID() string {
	return uuid.NewString()
}

func prepareUser(u *User) {
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
}

func prepareActivity(a *model.Activity) {
	a.ID = newID()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
}

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/justestif/moodmuse/internal/model"
)

// stores returns every Store implementation available in this environment.
// PostgreSQL is exercised only when MOODMUSE_TEST_POSTGRES_DSN is set.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	out := map[string]Store{"memory": NewMemory()}

	s, err := NewSQLite(filepath.Join(t.TempDir(), "sub", "moodmuse.db"))
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	out["sqlite"] = s

	if dsn := os.Getenv("MOODMUSE_TEST_POSTGRES_DSN"); dsn != "" {
		p, err := NewPostgres(context.Background(), dsn)
		if err != nil {
			t.Fatalf("NewPostgres() error = %v", err)
		}
		if _, err := p.Pool().Exec(context.Background(), `TRUNCATE users, activity_log`); err != nil {
			t.Fatalf("truncating: %v", err)
		}
		out["postgres"] = p
	}

	for _, s := range out {
		t.Cleanup(func() { s.Close() })
	}
	return out
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			u := &User{Name: "Ann", Email: "ann@example.com", PasswordHash: []byte("hash")}
			if err := s.CreateUser(ctx, u); err != nil {
				t.Fatalf("CreateUser() error = %v", err)
			}
			if u.ID == "" {
				t.Error("CreateUser() did not assign an ID")
			}

			dup := &User{Name: "Other", Email: "ANN@example.com", PasswordHash: []byte("x")}
			if err := s.CreateUser(ctx, dup); !errors.Is(err, ErrConflict) {
				t.Errorf("CreateUser(duplicate) error = %v, want ErrConflict", err)
			}

			got, err := s.UserByEmail(ctx, "Ann@Example.com")
			if err != nil {
				t.Fatalf("UserByEmail() error = %v", err)
			}
			if got.ID != u.ID || got.Name != "Ann" || string(got.PasswordHash) != "hash" {
				t.Errorf("UserByEmail() = %+v, want %+v", got, u)
			}

			if _, err := s.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
				t.Errorf("UserByEmail(unknown) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_RecentActivities(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i := range 12 {
				a := &model.Activity{
					UserID:    "u1",
					Action:    "search",
					Mood:      "Happy",
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				}
				if err := s.AddActivity(ctx, a); err != nil {
					t.Fatalf("AddActivity() error = %v", err)
				}
				if a.ID == "" {
					t.Fatal("AddActivity() did not assign an ID")
				}
			}
			other := &model.Activity{UserID: "u2", Action: "search", Mood: "Sad"}
			if err := s.AddActivity(ctx, other); err != nil {
				t.Fatalf("AddActivity() error = %v", err)
			}

			got, err := s.RecentActivities(ctx, "u1", 10)
			if err != nil {
				t.Fatalf("RecentActivities() error = %v", err)
			}
			if len(got) != 10 {
				t.Fatalf("len = %d, want 10", len(got))
			}
			want := base.Add(11 * time.Minute)
			if !got[0].CreatedAt.Equal(want) {
				t.Errorf("first CreatedAt = %v, want %v", got[0].CreatedAt, want)
			}
			for i := 1; i < len(got); i++ {
				if got[i].CreatedAt.After(got[i-1].CreatedAt) {
					t.Fatalf("not newest first at %d", i)
				}
				if got[i].UserID != "u1" {
					t.Errorf("activity %d belongs to %q", i, got[i].UserID)
				}
			}

			none, err := s.RecentActivities(ctx, "nobody", 10)
			if err != nil {
				t.Fatalf("RecentActivities() error = %v", err)
			}
			if len(none) != 0 {
				t.Errorf("len = %d, want 0", len(none))
			}
		})
	}
}

func TestStore_SameTimestampNewestInsertFirst(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			first := &model.Activity{UserID: "u1", Action: "search", Mood: "Happy", CreatedAt: at}
			second := &model.Activity{UserID: "u1", Action: "search", Mood: "Calm", CreatedAt: at}
			for _, a := range []*model.Activity{first, second} {
				if err := s.AddActivity(ctx, a); err != nil {
					t.Fatalf("AddActivity() error = %v", err)
				}
			}

			got, err := s.RecentActivities(ctx, "u1", 0)
			if err != nil {
				t.Fatalf("RecentActivities() error = %v", err)
			}
			if len(got) != 2 || got[0].Mood != "Calm" {
				t.Errorf("RecentActivities() = %+v, want Calm first", got)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, "memory", "")
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("Open(memory) = %T", s)
	}

	s, err = Open(ctx, "sqlite", filepath.Join(t.TempDir(), "x.db"))
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	s.Close()

	if _, err := Open(ctx, "mongo", ""); err == nil {
		t.Error("Open(mongo) error = nil")
	}
	if _, err := NewSQLite(""); err == nil {
		t.Error("NewSQLite(\"\") error = nil")
	}
}

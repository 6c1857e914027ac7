package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/justestif/moodmuse/internal/model"
)

// Memory is an in-process Store.
type Memory struct {
	mu         sync.RWMutex
	users      map[string]*User // by lower-cased email
	activities []model.Activity // insertion order
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{users: make(map[string]*User)}
}

func (m *Memory) CreateUser(_ context.Context, u *User) error {
	key := strings.ToLower(u.Email)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[key]; ok {
		return ErrConflict
	}
	prepareUser(u)
	cp := *u
	m.users[key] = &cp
	return nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) AddActivity(_ context.Context, a *model.Activity) error {
	prepareActivity(a)

	m.mu.Lock()
	m.activities = append(m.activities, *a)
	m.mu.Unlock()
	return nil
}

func (m *Memory) RecentActivities(_ context.Context, userID string, limit int) ([]model.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Activity
	for _, a := range slices.Backward(m.activities) {
		if a.UserID != userID {
			continue
		}
		out = append(out, a)
	}

	slices.SortStableFunc(out, func(a, b model.Activity) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

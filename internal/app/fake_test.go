package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/justestif/moodmuse/internal/gateway"
	"github.com/justestif/moodmuse/internal/model"
)

// fakeGateway is a scripted Gateway. Zero values succeed with empty
// responses.
type fakeGateway struct {
	mu sync.Mutex

	login        func(ctx context.Context, email string) (*gateway.AuthResponse, error)
	loginResp    *gateway.AuthResponse
	loginErr     error
	registerResp *gateway.AuthResponse
	registerErr  error
	logoutErr    error
	activities   []model.Activity
	activityErr  error
	logErr       error
	recommend    func(ctx context.Context, req gateway.RecommendRequest) ([]model.Item, error)

	calls    map[string]int
	requests []gateway.RecommendRequest
	logged   []string // moods passed to LogActivity
	nextID   int
}

func (f *fakeGateway) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
}

func (f *fakeGateway) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) Login(ctx context.Context, email, _ string) (*gateway.AuthResponse, error) {
	f.count("login")
	if f.login != nil {
		return f.login(ctx, email)
	}
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.loginResp != nil {
		return f.loginResp, nil
	}
	return &gateway.AuthResponse{User: email}, nil
}

func (f *fakeGateway) Register(_ context.Context, _, email, _ string) (*gateway.AuthResponse, error) {
	f.count("register")
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	if f.registerResp != nil {
		return f.registerResp, nil
	}
	return &gateway.AuthResponse{User: email}, nil
}

func (f *fakeGateway) Logout(context.Context) error {
	f.count("logout")
	return f.logoutErr
}

func (f *fakeGateway) RecentActivity(_ context.Context, _ string, _ int) ([]model.Activity, error) {
	f.count("recent_activity")
	if f.activityErr != nil {
		return nil, f.activityErr
	}
	return append([]model.Activity(nil), f.activities...), nil
}

func (f *fakeGateway) LogActivity(_ context.Context, userID, action, mood string) (model.Activity, error) {
	f.count("log_activity")
	f.mu.Lock()
	f.logged = append(f.logged, mood)
	f.nextID++
	id := f.nextID
	f.mu.Unlock()

	if f.logErr != nil {
		return model.Activity{}, f.logErr
	}
	return model.Activity{
		ID:        fmt.Sprintf("srv-%d", id),
		UserID:    userID,
		Action:    action,
		Mood:      mood,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (f *fakeGateway) Recommend(ctx context.Context, req gateway.RecommendRequest) ([]model.Item, error) {
	f.count("recommend")
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fn := f.recommend
	f.mu.Unlock()

	if fn == nil {
		return []model.Item{}, nil
	}
	return fn(ctx, req)
}

// pages returns a recommend func serving total items split into pages.
func pages(total int) func(context.Context, gateway.RecommendRequest) ([]model.Item, error) {
	return func(_ context.Context, req gateway.RecommendRequest) ([]model.Item, error) {
		start := (req.Page - 1) * req.Limit
		var out []model.Item
		for i := start; i < total && i < start+req.Limit; i++ {
			out = append(out, model.Item{Title: fmt.Sprintf("%s %d", req.Mood, i+1)})
		}
		return out, nil
	}
}

// startApp runs a for the duration of the test.
func startApp(t *testing.T, a *App) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-errCh)
	})
}

func settle(t *testing.T, a *App) State {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := a.Settle(ctx)
	require.NoError(t, err)
	return st
}

// signedIn returns a running app on the landing view.
func signedIn(t *testing.T, gw *fakeGateway, opts ...Option) *App {
	t.Helper()

	a := New(gw, opts...)
	startApp(t, a)
	a.Dispatch(Login{Email: "a@b.com", Password: "x"})
	st := settle(t, a)
	require.True(t, st.Session.Authenticated)
	return a
}

func tokenExpiringAt(at time.Time) *oauth2.Token {
	return &oauth2.Token{AccessToken: "expired", TokenType: "Bearer", Expiry: at}
}

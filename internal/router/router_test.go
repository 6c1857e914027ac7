package router

import (
	"errors"
	"testing"
)

func TestTransitionTable(t *testing.T) {
	want := map[View]map[Event]View{
		Auth:            {Authenticated: Landing, Logout: Auth},
		Landing:         {MoodSubmitted: Recommendations, ProfileRequested: Profile, Logout: Auth},
		Recommendations: {Back: Landing, Logout: Auth},
		Profile:         {Back: Landing, Logout: Auth},
	}

	for _, v := range Views {
		for _, e := range Events {
			t.Run(v.String()+"/"+e.String(), func(t *testing.T) {
				wantNext, legal := want[v][e]

				r := NewAt(v)
				got, err := r.Fire(e, true)

				if !legal {
					if !errors.Is(err, ErrInvalidTransition) {
						t.Fatalf("Fire() error = %v, want ErrInvalidTransition", err)
					}
					if r.Current() != v || got != v {
						t.Errorf("view changed to %s on rejected transition", r.Current())
					}
					return
				}

				if err != nil {
					t.Fatalf("Fire() error = %v", err)
				}
				if got != wantNext || r.Current() != wantNext {
					t.Errorf("Fire() = %s, want %s", got, wantNext)
				}
			})
		}
	}
}

func TestUnauthenticatedOnlyReachesAuth(t *testing.T) {
	for _, v := range Views {
		for _, e := range Events {
			next, ok := Next(v, e)
			if !ok {
				continue
			}

			r := NewAt(v)
			got, err := r.Fire(e, false)
			if next == Auth {
				if err != nil || got != Auth {
					t.Errorf("%s on %s unauthenticated = %s, %v; want auth", e, v, got, err)
				}
				continue
			}
			if !errors.Is(err, ErrNotAuthenticated) {
				t.Errorf("%s on %s unauthenticated error = %v, want ErrNotAuthenticated", e, v, err)
			}
			if r.Current() != v {
				t.Errorf("%s on %s unauthenticated moved to %s", e, v, r.Current())
			}
		}
	}
}

func TestCycle(t *testing.T) {
	r := New()
	steps := []struct {
		event Event
		want  View
	}{
		{Authenticated, Landing},
		{MoodSubmitted, Recommendations},
		{Back, Landing},
		{ProfileRequested, Profile},
		{Back, Landing},
		{Logout, Auth},
		{Authenticated, Landing},
	}

	for i, s := range steps {
		got, err := r.Fire(s.event, true)
		if err != nil {
			t.Fatalf("step %d: Fire(%s) error = %v", i, s.event, err)
		}
		if got != s.want {
			t.Fatalf("step %d: Fire(%s) = %s, want %s", i, s.event, got, s.want)
		}
	}
}

func TestStrings(t *testing.T) {
	if View(99).String() != "View(99)" {
		t.Errorf("View(99).String() = %q", View(99).String())
	}
	if Event(99).String() != "Event(99)" {
		t.Errorf("Event(99).String() = %q", Event(99).String())
	}
}

package spotify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/moodmuse/internal/model"
)

const (
	idA = "4uLU6hMCjMI75M1A2tKUQC"
	idB = "7GhIk7Il098yCjg4BQjzvb"
	idC = "0VjIjW4GlUZAMYd2vXMi3b"
)

type fakeAPI struct {
	mu          sync.Mutex
	features    map[string]*spotify.AudioFeatures
	featuresErr error
	tracks      map[string]*spotify.FullTrack
	trackCalls  atomic.Int32
	batchSizes  []int
}

func (f *fakeAPI) GetAudioFeatures(_ context.Context, ids ...spotify.ID) ([]*spotify.AudioFeatures, error) {
	f.mu.Lock()
	f.batchSizes = append(f.batchSizes, len(ids))
	f.mu.Unlock()

	if f.featuresErr != nil {
		return nil, f.featuresErr
	}
	out := make([]*spotify.AudioFeatures, len(ids))
	for i, id := range ids {
		out[i] = f.features[id.String()]
	}
	return out, nil
}

func (f *fakeAPI) GetTrack(_ context.Context, id spotify.ID, _ ...spotify.RequestOption) (*spotify.FullTrack, error) {
	f.trackCalls.Add(1)
	t, ok := f.tracks[id.String()]
	if !ok {
		return nil, errors.New("not found")
	}
	return t, nil
}

func fullTrack(id string) *spotify.FullTrack {
	return &spotify.FullTrack{SimpleTrack: spotify.SimpleTrack{
		ID:           spotify.ID(id),
		ExternalURLs: map[string]string{"spotify": "https://open.spotify.com/track/" + id},
	}}
}

func TestIsTrackID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{idA, true},
		{"27205", false},
		{"", false},
		{"4uLU6hMCjMI75M1A2tKUQ!", false},
	}
	for _, tt := range tests {
		if got := IsTrackID(tt.id); got != tt.want {
			t.Errorf("IsTrackID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestEnrich(t *testing.T) {
	api := &fakeAPI{
		features: map[string]*spotify.AudioFeatures{
			idA: {ID: idA, Energy: 0.8, Valence: 0.6, Danceability: 0.7, Acousticness: 0.1, Tempo: 118},
			idB: {ID: idB, Energy: 0.2, Valence: 0.3, Danceability: 0.3, Acousticness: 0.9, Tempo: 70},
		},
		tracks: map[string]*spotify.FullTrack{
			idA: fullTrack(idA),
		},
	}

	items := []model.Item{
		{Title: "movie", ExternalID: "27205"},
		{Title: "song a", ExternalID: idA},
		{Title: "song b", ExternalID: idB, MediaURL: "https://example.com/b"},
		{Title: "song c", ExternalID: idC},
	}

	got, errs := NewEnricher(api, WithConcurrency(2)).Enrich(context.Background(), items)

	if items[1].Energy != nil || items[1].MediaURL != "" {
		t.Fatal("Enrich modified its input")
	}

	if got[0] != items[0] {
		t.Errorf("item without track id changed: %+v", got[0])
	}
	if got[1].Energy == nil || *got[1].Energy != 0.8 || got[1].Tempo == nil || *got[1].Tempo != 118 {
		t.Errorf("song a features = %+v", got[1].AudioFeatures)
	}
	if got[1].MediaURL != "https://open.spotify.com/track/"+idA {
		t.Errorf("song a url = %q", got[1].MediaURL)
	}
	if got[2].MediaURL != "https://example.com/b" {
		t.Errorf("existing url replaced: %q", got[2].MediaURL)
	}
	if got[2].Acousticness == nil || *got[2].Acousticness != 0.9 {
		t.Errorf("song b features = %+v", got[2].AudioFeatures)
	}

	if len(errs) != 1 || errs[0].Index != 3 || errs[0].ID != idC {
		t.Fatalf("errs = %+v, want one error for song c", errs)
	}
	if calls := api.trackCalls.Load(); calls != 2 {
		t.Errorf("GetTrack calls = %d, want 2 (song b already has a link)", calls)
	}
}

func TestEnrich_KeepsExistingFeatures(t *testing.T) {
	energy := float32(0.5)
	api := &fakeAPI{
		features: map[string]*spotify.AudioFeatures{idA: {ID: idA, Energy: 0.9}},
		tracks:   map[string]*spotify.FullTrack{idA: fullTrack(idA)},
	}
	items := []model.Item{{Title: "a", ExternalID: idA, AudioFeatures: model.AudioFeatures{Energy: &energy}}}

	got, errs := NewEnricher(api).Enrich(context.Background(), items)
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if *got[0].Energy != 0.5 {
		t.Errorf("Energy = %v, want stored 0.5", *got[0].Energy)
	}
}

func TestEnrich_FeatureFailureIsPerItem(t *testing.T) {
	boom := errors.New("rate limited")
	api := &fakeAPI{
		featuresErr: boom,
		tracks:      map[string]*spotify.FullTrack{idA: fullTrack(idA)},
	}
	items := []model.Item{{Title: "a", ExternalID: idA}}

	got, errs := NewEnricher(api).Enrich(context.Background(), items)

	if got[0].MediaURL == "" {
		t.Error("link lookup skipped after feature failure")
	}
	if len(errs) != 1 || !errors.Is(errs[0], boom) {
		t.Errorf("errs = %v, want wrapped feature error", errs)
	}
}

func TestEnrich_Batches(t *testing.T) {
	api := &fakeAPI{features: map[string]*spotify.AudioFeatures{}, tracks: map[string]*spotify.FullTrack{}}

	items := make([]model.Item, 150)
	for i := range items {
		items[i] = model.Item{Title: "x", ExternalID: idA, MediaURL: "https://example.com"}
	}

	NewEnricher(api).Enrich(context.Background(), items)

	if len(api.batchSizes) != 2 || api.batchSizes[0] != 100 || api.batchSizes[1] != 50 {
		t.Errorf("batch sizes = %v, want [100 50]", api.batchSizes)
	}
}

func TestEnrich_NoTargets(t *testing.T) {
	api := &fakeAPI{}
	items := []model.Item{{Title: "movie"}}

	got, errs := NewEnricher(api).Enrich(context.Background(), items)
	if len(got) != 1 || errs != nil {
		t.Errorf("Enrich() = %v, %v", got, errs)
	}
	if len(api.batchSizes) != 0 {
		t.Error("API called with no track ids")
	}
}

func TestEnrich_CancelledContext(t *testing.T) {
	api := &fakeAPI{features: map[string]*spotify.AudioFeatures{}, tracks: map[string]*spotify.FullTrack{idA: fullTrack(idA)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, errs := NewEnricher(api).Enrich(ctx, []model.Item{{Title: "a", ExternalID: idA}})
	if len(errs) == 0 || !errors.Is(errs[0], context.Canceled) {
		t.Errorf("errs = %v, want context.Canceled", errs)
	}
	if api.trackCalls.Load() != 0 {
		t.Error("GetTrack called with a cancelled context")
	}
}

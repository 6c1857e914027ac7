package spotify

import (
	"context"
	"regexp"
	"slices"
	"sync"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/sync/errgroup"

	"github.com/justestif/moodmuse/internal/logging"
	"github.com/justestif/moodmuse/internal/model"
)

// DefaultConcurrency is the number of concurrent track lookups.
const DefaultConcurrency = 5

var trackIDPattern = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)

// IsTrackID reports whether id looks like a Spotify track ID.
func IsTrackID(id string) bool {
	return trackIDPattern.MatchString(id)
}

// ItemError is a failed lookup for one item.
type ItemError struct {
	Index int
	ID    string
	Err   error
}

func (e ItemError) Error() string {
	return "enriching " + e.ID + ": " + e.Err.Error()
}

func (e ItemError) Unwrap() error { return e.Err }

// Enricher adds Spotify data to song items.
type Enricher struct {
	api         API
	concurrency int
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithConcurrency sets the number of concurrent track lookups.
func WithConcurrency(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// NewEnricher creates an Enricher over api.
func NewEnricher(api API, opts ...Option) *Enricher {
	e := &Enricher{api: api, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich returns a copy of items where every item with a Spotify track ID
// gets missing audio features and a missing media link filled in. Items
// without a track ID are returned unchanged. Lookup failures are collected
// per item and never abort the batch.
func (e *Enricher) Enrich(ctx context.Context, items []model.Item) ([]model.Item, []ItemError) {
	out := slices.Clone(items)

	var targets []int
	var ids []spotify.ID
	for i, it := range out {
		if IsTrackID(it.ExternalID) {
			targets = append(targets, i)
			ids = append(ids, spotify.ID(it.ExternalID))
		}
	}
	if len(targets) == 0 {
		return out, nil
	}

	var errs []ItemError

	features, err := fetchAudioFeatures(ctx, e.api, ids)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("spotify audio features unavailable")
	}
	for _, i := range targets {
		if f, ok := features[out[i].ExternalID]; ok && out[i].AudioFeatures.Empty() {
			applyAudioFeatures(&out[i].AudioFeatures, f)
		}
	}

	var needLink []int
	for _, i := range targets {
		if out[i].MediaURL == "" {
			needLink = append(needLink, i)
		}
	}
	errs = append(errs, e.fetchLinks(ctx, out, needLink)...)

	if err != nil {
		for _, i := range targets {
			if _, ok := features[out[i].ExternalID]; !ok {
				errs = append(errs, ItemError{Index: i, ID: out[i].ExternalID, Err: err})
			}
		}
	}

	slices.SortFunc(errs, func(a, b ItemError) int { return a.Index - b.Index })
	return out, errs
}

// fetchLinks looks up tracks concurrently and sets their Spotify URL.
func (e *Enricher) fetchLinks(ctx context.Context, items []model.Item, indexes []int) []ItemError {
	if len(indexes) == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		errs []ItemError
		g    errgroup.Group
	)
	fail := func(i int, err error) {
		mu.Lock()
		errs = append(errs, ItemError{Index: i, ID: items[i].ExternalID, Err: err})
		mu.Unlock()
	}

	g.SetLimit(e.concurrency)
	for _, i := range indexes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				fail(i, err)
				return nil
			}

			track, err := e.api.GetTrack(ctx, spotify.ID(items[i].ExternalID))
			if err != nil {
				fail(i, err)
				return nil
			}

			// Each goroutine owns a distinct index.
			if url := track.ExternalURLs["spotify"]; url != "" {
				items[i].MediaURL = url
			}
			return nil
		})
	}
	g.Wait()

	return errs
}

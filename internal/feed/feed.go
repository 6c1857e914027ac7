// Package feed manages a paginated recommendation query.
//
// A Feed never performs I/O. Submit and LoadMore return the Request to send;
// the caller sends it and hands the outcome back to Apply. Every Submit or
// Reset starts a new epoch, and results carrying an older epoch are dropped,
// so a slow response for a previous query can never reach the item list.
package feed

import (
	"github.com/justestif/moodmuse/internal/logging"
	"github.com/justestif/moodmuse/internal/metrics"
	"github.com/justestif/moodmuse/internal/model"
)

// DefaultPageSize is the number of items requested per page.
const DefaultPageSize = 20

// Request is one page fetch to perform.
type Request struct {
	Epoch    uint64
	Query    Query
	PageSize int
}

// Result is the outcome of a Request.
type Result struct {
	Epoch uint64
	Page  int
	Items []model.Item
	Err   error
}

// Feed is not safe for concurrent use; the app event loop owns it.
type Feed struct {
	pageSize int

	query    Query
	items    []model.Item
	hasMore  bool
	epoch    uint64
	inFlight bool

	// lastPage is the highest page applied successfully in this epoch.
	lastPage int
}

// New returns an empty feed. A pageSize below 1 uses DefaultPageSize.
func New(pageSize int) *Feed {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Feed{pageSize: pageSize}
}

// Submit starts a new query. An invalid query returns a *ValidationError and
// leaves the feed untouched.
func (f *Feed) Submit(mood string, contentType model.ContentType, language, text string) (Request, error) {
	q, err := NewQuery(mood, contentType, language, text)
	if err != nil {
		return Request{}, err
	}

	f.epoch++
	f.query = q
	f.items = nil
	f.hasMore = false
	f.inFlight = true
	f.lastPage = 0

	return f.request(), nil
}

// LoadMore requests the next page. It returns false and changes nothing when
// there are no more pages or a fetch is already in flight.
func (f *Feed) LoadMore() (Request, bool) {
	if !f.hasMore || f.inFlight {
		return Request{}, false
	}

	f.query.Page++
	f.inFlight = true
	return f.request(), true
}

// Apply merges a result. It returns false if the result belongs to an older
// epoch and was discarded.
func (f *Feed) Apply(res Result) bool {
	if res.Epoch != f.epoch {
		logging.Debug().Uint64("epoch", res.Epoch).Uint64("current", f.epoch).Int("page", res.Page).Msg("stale recommendation response discarded")
		metrics.StaleResponses.WithLabelValues("feed").Inc()
		return false
	}

	f.inFlight = false

	if res.Err != nil {
		if res.Page <= 1 {
			f.items = nil
		}
		// Later pages keep what was loaded; pagination stops.
		f.query.Page = max(f.lastPage, 1)
		f.hasMore = false
		return true
	}

	if res.Page <= 1 {
		f.items = append([]model.Item(nil), res.Items...)
	} else {
		f.items = append(f.items, res.Items...)
	}
	f.lastPage = res.Page
	f.hasMore = len(res.Items) == f.pageSize
	return true
}

// Reset clears the query and results. Results still in flight become stale.
func (f *Feed) Reset() {
	f.epoch++
	f.query = Query{}
	f.items = nil
	f.hasMore = false
	f.inFlight = false
	f.lastPage = 0
}

func (f *Feed) request() Request {
	return Request{Epoch: f.epoch, Query: f.query, PageSize: f.pageSize}
}

// Query returns the current query.
func (f *Feed) Query() Query { return f.query }

// Items returns a copy of the accumulated items.
func (f *Feed) Items() []model.Item {
	return append([]model.Item(nil), f.items...)
}

func (f *Feed) HasMore() bool  { return f.hasMore }
func (f *Feed) InFlight() bool { return f.inFlight }
func (f *Feed) Epoch() uint64  { return f.epoch }
func (f *Feed) PageSize() int  { return f.pageSize }

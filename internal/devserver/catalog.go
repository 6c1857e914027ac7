package devserver

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/justestif/moodmuse/internal/model"
	"github.com/justestif/moodmuse/internal/mood"
)

//go:embed seed/catalog.json
var seedCatalog []byte

type entry struct {
	moodID      int
	contentType model.ContentType
	item        model.Item
}

type entryMeta struct {
	ContentType model.ContentType `json:"content_type"`
	Language    string            `json:"language"`
}

// Catalog is the recommendation table the development backend serves from.
// Songs are filed by their audio features, movies and series by genre.
type Catalog struct {
	entries []entry
}

// DefaultCatalog returns the embedded seed catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(seedCatalog)
}

// LoadCatalog parses a JSON array of catalog rows. Rows whose mood cannot be
// determined are skipped.
func LoadCatalog(data []byte) (*Catalog, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{entries: make([]entry, 0, len(rows))}
	for i, raw := range rows {
		var meta entryMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("parsing catalog row %d: %w", i, err)
		}
		if !meta.ContentType.Valid() {
			return nil, fmt.Errorf("catalog row %d: unknown content type %q", i, meta.ContentType)
		}

		var it model.Item
		if err := json.Unmarshal(raw, &it); err != nil {
			return nil, fmt.Errorf("parsing catalog row %d: %w", i, err)
		}
		it.Language = meta.Language

		var (
			m  mood.Mood
			ok bool
		)
		if meta.ContentType == model.Songs {
			m, ok = mood.ClassifyItem(it)
		} else {
			m, ok = mood.GenreMood(it.Genre)
		}
		if !ok {
			continue
		}

		c.entries = append(c.entries, entry{moodID: m.ID, contentType: meta.ContentType, item: it})
	}
	return c, nil
}

// Len returns the number of rows in the catalog.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Find returns one page of items matching the mood and content type, and the
// language when it is not empty. Pages start at 1.
func (c *Catalog) Find(moodID int, ct model.ContentType, language string, page, limit int) []model.Item {
	skip := (page - 1) * limit
	out := make([]model.Item, 0, limit)
	for _, e := range c.entries {
		if e.moodID != moodID || e.contentType != ct {
			continue
		}
		if language != "" && !strings.EqualFold(e.item.Language, language) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, e.item)
		if len(out) == limit {
			break
		}
	}
	return out
}

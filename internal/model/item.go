// Package model defines the domain types shared by the MoodMuse client,
// its gateway and the development backend.
package model

import (
	"strconv"

	"github.com/goccy/go-json"
)

// ContentType is the kind of media a recommendation query asks for.
type ContentType string

const (
	Movies ContentType = "movies"
	Series ContentType = "series"
	Songs  ContentType = "songs"
)

// ContentTypes lists the supported content types in display order.
var ContentTypes = []ContentType{Movies, Songs, Series}

// Valid reports whether c is one of the supported content types.
func (c ContentType) Valid() bool {
	switch c {
	case Movies, Series, Songs:
		return true
	}
	return false
}

// AudioFeatures holds the numeric song features used for mood labelling.
// Fields are nil when the backend did not send them.
type AudioFeatures struct {
	Energy       *float32 `json:"energy,omitempty"`
	Valence      *float32 `json:"valence,omitempty"`
	Danceability *float32 `json:"danceability,omitempty"`
	Acousticness *float32 `json:"acousticness,omitempty"`
	Tempo        *float32 `json:"tempo,omitempty"`
}

// Empty reports whether no feature is set.
func (f AudioFeatures) Empty() bool {
	return f.Energy == nil && f.Valence == nil && f.Danceability == nil &&
		f.Acousticness == nil && f.Tempo == nil
}

// Item is a single recommendation. Only Title is guaranteed; everything else
// depends on the content type and on what the backend stored.
type Item struct {
	ExternalID  string `json:"external_id,omitempty"`
	Title       string `json:"title"`
	Contributor string `json:"artist,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Year        int    `json:"release_year,omitempty"`
	Language    string `json:"language,omitempty"`
	Description string `json:"description,omitempty"`
	MediaURL    string `json:"url,omitempty"`
	AudioFeatures
}

// Key returns the display key of the item: the external id when present,
// otherwise the title. It is not used for merging results.
func (it Item) Key() string {
	if it.ExternalID != "" {
		return it.ExternalID
	}
	return it.Title
}

// itemWire mirrors the column aliases the backend tables use.
type itemWire struct {
	SpotifyID   FlexString `json:"spotify_id"`
	APIID       FlexString `json:"api_id"`
	ExternalID  FlexString `json:"external_id"`
	ID          FlexString `json:"id"`
	Title       FlexString `json:"title"`
	Name        FlexString `json:"name"`
	Artist      FlexString `json:"artist"`
	Director    FlexString `json:"director"`
	Creator     FlexString `json:"creator"`
	Genre       FlexString `json:"genre"`
	ReleaseYear FlexString `json:"release_year"`
	Year        FlexString `json:"year"`
	Language    FlexString `json:"language"`
	Description FlexString `json:"description"`
	URL         FlexString `json:"url"`
	Link        FlexString `json:"link"`
	MediaURL    FlexString `json:"media_url"`
	AudioFeatures
}

// UnmarshalJSON decodes an item from any of the backend's row shapes.
func (it *Item) UnmarshalJSON(data []byte) error {
	var w itemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*it = Item{
		ExternalID:    firstNonEmpty(w.SpotifyID, w.APIID, w.ExternalID, w.ID),
		Title:         firstNonEmpty(w.Title, w.Name),
		Contributor:   firstNonEmpty(w.Artist, w.Director, w.Creator),
		Genre:         string(w.Genre),
		Language:      string(w.Language),
		Description:   string(w.Description),
		MediaURL:      firstNonEmpty(w.URL, w.Link, w.MediaURL),
		AudioFeatures: w.AudioFeatures,
	}

	if y := firstNonEmpty(w.ReleaseYear, w.Year); y != "" {
		// Years like "2019-05-01" keep only the leading year.
		if len(y) > 4 {
			y = y[:4]
		}
		if n, err := strconv.Atoi(y); err == nil {
			it.Year = n
		}
	}

	return nil
}

func firstNonEmpty(values ...FlexString) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

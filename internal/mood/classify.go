package mood

import (
	"github.com/justestif/moodmuse/internal/model"
)

// Classify maps Spotify valence and energy to a catalog mood. Rules are
// checked in order; the first match wins.
func Classify(valence, energy float32) Mood {
	id := 6 // Serious
	switch {
	case valence > 0.7 && energy > 0.6:
		id = 8
	case valence > 0.6 && energy > 0.5:
		id = 1
	case energy > 0.7:
		id = 4
	case valence < 0.3 && energy > 0.6:
		id = 7
	case valence < 0.4 && energy < 0.5:
		id = 2
	case valence > 0.5 && energy < 0.6:
		id = 3
	case energy < 0.4 && valence >= 0.4 && valence <= 0.6:
		id = 5
	}
	m, _ := ByID(id)
	return m
}

// ClassifyItem classifies an item by its audio features. Returns false when
// valence or energy is missing.
func ClassifyItem(it model.Item) (Mood, bool) {
	if it.Valence == nil || it.Energy == nil {
		return Mood{}, false
	}
	return Classify(*it.Valence, *it.Energy), true
}

// vibeName names a feature centroid with a 2x2 energy/valence quadrant:
//
//   - High Energy + High Valence = "Upbeat Party"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
//
// Acousticness above 0.6 appends "(Acoustic)".
func vibeName(energy, valence, acousticness float32) string {
	highEnergy := energy > 0.6
	highValence := valence > 0.5

	var name string
	switch {
	case highEnergy && highValence:
		name = "Upbeat Party"
	case highEnergy:
		name = "Intense & Dark"
	case highValence:
		name = "Chill & Happy"
	default:
		name = "Reflective & Melancholy"
	}

	if acousticness > 0.6 {
		return name + " (Acoustic)"
	}
	return name
}

// Vibe returns the quadrant label of a song's features. Returns false when
// energy or valence is missing; missing acousticness counts as 0.
func Vibe(f model.AudioFeatures) (string, bool) {
	if f.Energy == nil || f.Valence == nil {
		return "", false
	}
	var acoustic float32
	if f.Acousticness != nil {
		acoustic = *f.Acousticness
	}
	return vibeName(*f.Energy, *f.Valence, acoustic), true
}

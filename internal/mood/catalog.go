// Package mood holds the mood catalog and the mood labelling used for
// recommendations: text inference, audio-feature classification and k-means
// vibe grouping of songs.
package mood

import (
	"strings"
)

// Mood is one entry of the backend mood table.
type Mood struct {
	ID    int
	Name  string
	Label string // full backend label, e.g. "Calm / Relaxed / Chill"

	keywords []string
}

// Catalog is the backend mood table, ordered by ID.
var Catalog = []Mood{
	{ID: 1, Name: "Happy", Label: "Happy / Joyful", keywords: []string{"happy", "joy", "joyful", "glad", "cheerful", "great", "good", "fun", "sunny", "smile", "delighted"}},
	{ID: 2, Name: "Sad", Label: "Sad / Melancholic", keywords: []string{"sad", "melancholic", "melancholy", "down", "blue", "lonely", "cry", "crying", "heartbroken", "depressed", "gloomy", "miss"}},
	{ID: 3, Name: "Romantic", Label: "Romantic / Love", keywords: []string{"romantic", "love", "loving", "crush", "date", "valentine", "affection", "sweetheart"}},
	{ID: 4, Name: "Energetic", Label: "Energetic / Excited", keywords: []string{"energetic", "excited", "hyped", "pumped", "party", "dance", "workout", "gym", "energy", "wild"}},
	{ID: 5, Name: "Calm", Label: "Calm / Relaxed / Chill", keywords: []string{"calm", "relaxed", "relax", "chill", "peaceful", "quiet", "sleepy", "tired", "lazy", "cozy", "rain", "rainy"}},
	{ID: 6, Name: "Serious", Label: "Serious / Thoughtful", keywords: []string{"serious", "thoughtful", "thinking", "reflective", "deep", "curious", "focused", "study", "pensive"}},
	{ID: 7, Name: "Scary", Label: "Scary / Fearful / Dark", keywords: []string{"scary", "scared", "fear", "fearful", "dark", "horror", "creepy", "spooky", "anxious", "nervous"}},
	{ID: 8, Name: "Motivational", Label: "Motivational / Inspirational", keywords: []string{"motivational", "motivated", "inspired", "inspirational", "inspiring", "determined", "ambitious", "confident", "unstoppable"}},
}

// Primary lists the moods offered on the landing screen.
var Primary = []string{"Happy", "Sad", "Romantic", "Energetic", "Calm"}

// Language is a selectable content language.
type Language struct {
	Code string
	Name string
}

// Languages lists the selectable content languages.
var Languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "ml", Name: "Malayalam"},
	{Code: "hi", Name: "Hindi"},
	{Code: "ta", Name: "Tamil"},
	{Code: "te", Name: "Telugu"},
	{Code: "kn", Name: "Kannada"},
}

// Lookup finds a mood by name, full label or any part of the label,
// ignoring case. "chill", "Calm" and "Calm / Relaxed / Chill" all match Calm.
func Lookup(name string) (Mood, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Mood{}, false
	}
	for _, m := range Catalog {
		if strings.ToLower(m.Label) == name {
			return m, true
		}
		for _, part := range strings.Split(m.Label, "/") {
			if strings.ToLower(strings.TrimSpace(part)) == name {
				return m, true
			}
		}
	}
	return Mood{}, false
}

// ByID returns the mood with the given backend id.
func ByID(id int) (Mood, bool) {
	if id < 1 || id > len(Catalog) {
		return Mood{}, false
	}
	return Catalog[id-1], true
}

// LanguageName returns the display name of a language code.
func LanguageName(code string) (string, bool) {
	for _, l := range Languages {
		if l.Code == code {
			return l.Name, true
		}
	}
	return "", false
}

// genreMoods maps catalogue genres to mood IDs.
var genreMoods = map[string]int{
	"comedy":      1,
	"music":       1,
	"animation":   1,
	"family":      1,
	"drama":       2,
	"romance":     3,
	"action":      4,
	"adventure":   4,
	"documentary": 6,
	"mystery":     6,
	"horror":      7,
	"thriller":    7,
	"biography":   8,
	"sport":       8,
}

// GenreMood returns the mood that movies and series of the given genre are
// filed under.
func GenreMood(genre string) (Mood, bool) {
	id, ok := genreMoods[strings.ToLower(strings.TrimSpace(genre))]
	if !ok {
		return Mood{}, false
	}
	return ByID(id)
}

package mood

import (
	"testing"

	"github.com/justestif/moodmuse/internal/model"
)

func f32(v float32) *float32 { return &v }

func TestLookup(t *testing.T) {
	tests := []struct {
		in     string
		wantID int
		wantOK bool
	}{
		{"Happy", 1, true},
		{"happy / joyful", 1, true},
		{"chill", 5, true},
		{" Calm / Relaxed / Chill ", 5, true},
		{"Dark", 7, true},
		{"inspirational", 8, true},
		{"bored", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Lookup(tt.in)
			if ok != tt.wantOK || got.ID != tt.wantID {
				t.Errorf("Lookup(%q) = %d, %v; want %d, %v", tt.in, got.ID, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestPrimaryMoodsAreInCatalog(t *testing.T) {
	for _, name := range Primary {
		if _, ok := Lookup(name); !ok {
			t.Errorf("primary mood %q missing from catalog", name)
		}
	}
	for i, m := range Catalog {
		if m.ID != i+1 {
			t.Errorf("Catalog[%d].ID = %d, want %d", i, m.ID, i+1)
		}
	}
}

func TestLanguageName(t *testing.T) {
	if name, ok := LanguageName("ml"); !ok || name != "Malayalam" {
		t.Errorf("LanguageName(ml) = %q, %v", name, ok)
	}
	if _, ok := LanguageName("fr"); ok {
		t.Error("LanguageName(fr) = true")
	}
}

func TestFromText(t *testing.T) {
	tests := []struct {
		text     string
		wantName string
		wantOK   bool
	}{
		{"I'm feeling really happy and cheerful today", "Happy", true},
		{"so lonely, I miss her", "Sad", true},
		{"rainy sunday, want something cozy", "Calm", true},
		{"Pumped for the gym!", "Energetic", true},
		{"a creepy, spooky night", "Scary", true},
		{"just my thoughts", "", false},
		{"   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := FromText(tt.text)
			if ok != tt.wantOK || got.Name != tt.wantName {
				t.Errorf("FromText(%q) = %q, %v; want %q, %v", tt.text, got.Name, ok, tt.wantName, tt.wantOK)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		valence float32
		energy  float32
		want    string
	}{
		{"motivational", 0.8, 0.7, "Motivational"},
		{"happy", 0.65, 0.55, "Happy"},
		{"energetic", 0.5, 0.8, "Energetic"},
		{"scary", 0.2, 0.65, "Scary"},
		{"sad", 0.3, 0.3, "Sad"},
		{"romantic", 0.55, 0.45, "Romantic"},
		{"calm", 0.45, 0.3, "Calm"},
		{"serious band", 0.45, 0.55, "Serious"},
		{"serious fallback", 0.35, 0.55, "Serious"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.valence, tt.energy); got.Name != tt.want {
				t.Errorf("Classify(%v, %v) = %q, want %q", tt.valence, tt.energy, got.Name, tt.want)
			}
		})
	}
}

func TestClassifyItem_MissingFeatures(t *testing.T) {
	if _, ok := ClassifyItem(model.Item{Title: "x", AudioFeatures: model.AudioFeatures{Energy: f32(0.5)}}); ok {
		t.Error("ClassifyItem without valence = true")
	}
}

func TestVibe(t *testing.T) {
	tests := []struct {
		name     string
		features model.AudioFeatures
		want     string
		wantOK   bool
	}{
		{"high energy high valence", model.AudioFeatures{Energy: f32(0.8), Valence: f32(0.7)}, "Upbeat Party", true},
		{"high energy low valence", model.AudioFeatures{Energy: f32(0.8), Valence: f32(0.3)}, "Intense & Dark", true},
		{"low energy high valence", model.AudioFeatures{Energy: f32(0.4), Valence: f32(0.7)}, "Chill & Happy", true},
		{"low energy low valence", model.AudioFeatures{Energy: f32(0.3), Valence: f32(0.3)}, "Reflective & Melancholy", true},
		{"acoustic modifier", model.AudioFeatures{Energy: f32(0.4), Valence: f32(0.7), Acousticness: f32(0.8)}, "Chill & Happy (Acoustic)", true},
		{"boundary energy exactly 0.6 is low", model.AudioFeatures{Energy: f32(0.6), Valence: f32(0.7)}, "Chill & Happy", true},
		{"boundary valence exactly 0.5 is low", model.AudioFeatures{Energy: f32(0.8), Valence: f32(0.5)}, "Intense & Dark", true},
		{"missing valence", model.AudioFeatures{Energy: f32(0.8)}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Vibe(tt.features)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Vibe() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestGenreMood(t *testing.T) {
	tests := []struct {
		genre string
		want  string
		ok    bool
	}{
		{"Comedy", "Happy", true},
		{"animation", "Happy", true},
		{"Drama", "Sad", true},
		{"Thriller", "Scary", true},
		{" Sport ", "Motivational", true},
		{"Western", "", false},
	}

	for _, tt := range tests {
		got, ok := GenreMood(tt.genre)
		if ok != tt.ok || got.Name != tt.want {
			t.Errorf("GenreMood(%q) = %q, %v; want %q, %v", tt.genre, got.Name, ok, tt.want, tt.ok)
		}
	}
}

package devserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/moodmuse/internal/model"
	"github.com/justestif/moodmuse/internal/mood"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 100)

	happy, _ := mood.Lookup("Happy")
	for _, ct := range model.ContentTypes {
		assert.NotEmpty(t, c.Find(happy.ID, ct, "en", 1, 20), "no happy %s", ct)
	}
}

func TestLoadCatalog(t *testing.T) {
	data := []byte(`[
		{"content_type": "movies", "language": "en", "title": "Up", "genre": "Animation"},
		{"content_type": "movies", "language": "hi", "title": "3 Idiots", "genre": "Comedy"},
		{"content_type": "movies", "language": "en", "title": "Unforgiven", "genre": "Western"},
		{"content_type": "songs", "language": "en", "title": "Hurt", "artist": "Johnny Cash", "valence": 0.15, "energy": 0.2},
		{"content_type": "songs", "language": "en", "title": "No Features"}
	]`)

	c, err := LoadCatalog(data)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	happy, _ := mood.Lookup("Happy")
	sad, _ := mood.Lookup("Sad")

	assert.Len(t, c.Find(happy.ID, model.Movies, "", 1, 20), 2)
	en := c.Find(happy.ID, model.Movies, "EN", 1, 20)
	require.Len(t, en, 1)
	assert.Equal(t, "Up", en[0].Title)

	songs := c.Find(sad.ID, model.Songs, "en", 1, 20)
	require.Len(t, songs, 1)
	assert.Equal(t, "Johnny Cash", songs[0].Contributor)
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := LoadCatalog([]byte(`{"not": "an array"}`))
	assert.Error(t, err)

	_, err = LoadCatalog([]byte(`[{"content_type": "podcasts", "title": "x"}]`))
	assert.Error(t, err)
}

func TestCatalogFind_Pages(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	happy, _ := mood.Lookup("Happy")

	all := c.Find(happy.ID, model.Movies, "en", 1, 100)
	require.Len(t, all, 27)

	p1 := c.Find(happy.ID, model.Movies, "en", 1, 10)
	p2 := c.Find(happy.ID, model.Movies, "en", 2, 10)
	p3 := c.Find(happy.ID, model.Movies, "en", 3, 10)
	assert.Equal(t, all[:10], p1)
	assert.Equal(t, all[10:20], p2)
	assert.Equal(t, all[20:], p3)
}

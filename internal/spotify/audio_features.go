package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/moodmuse/internal/model"
)

// maxTracksPerRequest is the Spotify limit for batch track endpoints.
const maxTracksPerRequest = 100

// fetchAudioFeatures returns audio features keyed by track ID, batching
// requests to the API limit. Tracks without features are absent.
func fetchAudioFeatures(ctx context.Context, api API, ids []spotify.ID) (map[string]*spotify.AudioFeatures, error) {
	out := make(map[string]*spotify.AudioFeatures, len(ids))
	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))

		features, err := api.GetAudioFeatures(ctx, ids[i:end]...)
		if err != nil {
			return out, fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}
		for _, f := range features {
			if f == nil {
				continue
			}
			out[f.ID.String()] = f
		}
	}
	return out, nil
}

// applyAudioFeatures copies the features used for mood labelling.
func applyAudioFeatures(dst *model.AudioFeatures, f *spotify.AudioFeatures) {
	dst.Acousticness = &f.Acousticness
	dst.Danceability = &f.Danceability
	dst.Energy = &f.Energy
	dst.Tempo = &f.Tempo
	dst.Valence = &f.Valence
}

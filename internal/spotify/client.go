// Package spotify fills in song links and audio features from the Spotify
// Web API.
package spotify

import (
	"context"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// API is the subset of the Spotify client used for enrichment.
type API interface {
	GetAudioFeatures(ctx context.Context, ids ...spotify.ID) ([]*spotify.AudioFeatures, error)
	GetTrack(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullTrack, error)
}

// NewAPI returns a Spotify client authenticated with the client-credentials
// flow. No user login is involved.
func NewAPI(ctx context.Context, clientID, clientSecret string, opts ...spotify.ClientOption) *spotify.Client {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	opts = append([]spotify.ClientOption{spotify.WithRetry(true)}, opts...)
	return spotify.New(cfg.Client(ctx), opts...)
}

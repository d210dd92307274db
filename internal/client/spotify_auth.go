package client

import (
	"context"
	"strings"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/hacktrack/api/internal/config"
)

// DefaultSpotifyScopes covers everything the taste chain can read.
var DefaultSpotifyScopes = []string{
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserReadRecentlyPlayed,
	spotifyauth.ScopeUserLibraryRead,
}

// SpotifyAuth handles the OAuth authorize/exchange/refresh dance. The core
// never sees it; callers bring their own access tokens.
type SpotifyAuth struct {
	conf *oauth2.Config
}

// NewSpotifyAuth creates the OAuth helper from client credentials.
func NewSpotifyAuth(cfg *config.SpotifyConfig) *SpotifyAuth {
	return &SpotifyAuth{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       DefaultSpotifyScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
	}
}

// AuthorizeURL builds the user-consent URL. A space-separated scopes string
// overrides the defaults when non-empty.
func (a *SpotifyAuth) AuthorizeURL(state, scopes string) string {
	conf := *a.conf
	if fields := strings.Fields(scopes); len(fields) > 0 {
		conf.Scopes = fields
	}
	return conf.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Exchange trades an authorization code for tokens.
func (a *SpotifyAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return a.conf.Exchange(ctx, code)
}

// Refresh trades a refresh token for a fresh access token.
func (a *SpotifyAuth) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := a.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return src.Token()
}

// IsConfigured returns true if client credentials are present.
func (a *SpotifyAuth) IsConfigured() bool {
	return a.conf.ClientID != "" && a.conf.ClientSecret != ""
}

// package services defines interfaces for interacting with the Spotify Web API
package services

import (
	"context"
)

// Catalog defines the upstream operations the aggregation and playlist
// pipelines depend on. Every call is parameterized by the caller-supplied
// access token; implementations hold no per-user state.
type Catalog interface {
	// CurrentUser retrieves the profile of the token's owner. Used as a
	// lightweight identity check before mutating work.
	CurrentUser(ctx context.Context, token string) (*User, error)

	// SearchArtists returns up to limit artists matching the query, in
	// upstream relevance order.
	SearchArtists(ctx context.Context, token, query string, limit int) ([]Artist, error)

	// ArtistTopTracks returns the artist's most popular tracks.
	ArtistTopTracks(ctx context.Context, token, artistID string) ([]Track, error)

	// ArtistAlbums returns up to limit of the artist's albums, singles and
	// compilations.
	ArtistAlbums(ctx context.Context, token, artistID string, limit int) ([]AlbumRef, error)

	// AlbumTracks returns the track listing of a single album.
	AlbumTracks(ctx context.Context, token, albumID string) ([]Track, error)

	// SearchTracks returns up to limit tracks matching the query. Used to
	// capture guest appearances on other artists' releases.
	SearchTracks(ctx context.Context, token, query string, limit int) ([]Track, error)

	// CurrentUserPlaylists returns up to limit of the user's playlists.
	CurrentUserPlaylists(ctx context.Context, token string, limit int) ([]Playlist, error)

	// CreatePlaylist creates a playlist owned by the current user.
	CreatePlaylist(ctx context.Context, token, name, description string, public bool) (*Playlist, error)

	// AddTracks appends up to 100 track URIs to a playlist and returns the
	// resulting snapshot id.
	AddTracks(ctx context.Context, token, playlistID string, uris []string) (string, error)
}

// Authenticator defines the OAuth2 authorization-code operations exposed by
// the login, callback and refresh endpoints.
type Authenticator interface {
	// AuthCodeURL builds the upstream authorize URL carrying the CSRF state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for a token pair.
	Exchange(ctx context.Context, code string) (*TokenPair, error)

	// Refresh trades a refresh token for a fresh access token, and possibly
	// a rotated refresh token.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// TokenPair is the OAuth-derived credential pair owned by the browser
// session. The refresh token may be empty when the upstream withholds it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// User is the authenticated user's profile projection.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Artist is a read-only projection of an upstream artist.
type Artist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image"`
	Followers int    `json:"followers"`
}

// Track is a candidate track for playlist assembly. Identity for
// deduplication purposes is the upstream-assigned ID.
type Track struct {
	ID          string   `json:"id"`
	URI         string   `json:"uri"`
	Name        string   `json:"name"`
	AlbumName   string   `json:"albumName"`
	ArtistNames []string `json:"artistNames"`
}

// AlbumRef identifies an album whose track listing is fetched separately.
type AlbumRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Playlist is a destination playlist, pre-existing or newly created.
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TrackCount int    `json:"trackCount"`
}

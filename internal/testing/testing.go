// package testing contains shared testing utilities
package testing

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/setlist/internal/services"
)

// MockCatalog is a configurable test double for [services.Catalog]. Unset
// function fields return zero values.
type MockCatalog struct {
	CurrentUserFunc          func(ctx context.Context, token string) (*services.User, error)
	SearchArtistsFunc        func(ctx context.Context, token, query string, limit int) ([]services.Artist, error)
	ArtistTopTracksFunc      func(ctx context.Context, token, artistID string) ([]services.Track, error)
	ArtistAlbumsFunc         func(ctx context.Context, token, artistID string, limit int) ([]services.AlbumRef, error)
	AlbumTracksFunc          func(ctx context.Context, token, albumID string) ([]services.Track, error)
	SearchTracksFunc         func(ctx context.Context, token, query string, limit int) ([]services.Track, error)
	CurrentUserPlaylistsFunc func(ctx context.Context, token string, limit int) ([]services.Playlist, error)
	CreatePlaylistFunc       func(ctx context.Context, token, name, description string, public bool) (*services.Playlist, error)
	AddTracksFunc            func(ctx context.Context, token, playlistID string, uris []string) (string, error)
}

func (m *MockCatalog) CurrentUser(ctx context.Context, token string) (*services.User, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx, token)
	}
	return &services.User{ID: "mock-user"}, nil
}

func (m *MockCatalog) SearchArtists(ctx context.Context, token, query string, limit int) ([]services.Artist, error) {
	if m.SearchArtistsFunc != nil {
		return m.SearchArtistsFunc(ctx, token, query, limit)
	}
	return nil, nil
}

func (m *MockCatalog) ArtistTopTracks(ctx context.Context, token, artistID string) ([]services.Track, error) {
	if m.ArtistTopTracksFunc != nil {
		return m.ArtistTopTracksFunc(ctx, token, artistID)
	}
	return nil, nil
}

func (m *MockCatalog) ArtistAlbums(ctx context.Context, token, artistID string, limit int) ([]services.AlbumRef, error) {
	if m.ArtistAlbumsFunc != nil {
		return m.ArtistAlbumsFunc(ctx, token, artistID, limit)
	}
	return nil, nil
}

func (m *MockCatalog) AlbumTracks(ctx context.Context, token, albumID string) ([]services.Track, error) {
	if m.AlbumTracksFunc != nil {
		return m.AlbumTracksFunc(ctx, token, albumID)
	}
	return nil, nil
}

func (m *MockCatalog) SearchTracks(ctx context.Context, token, query string, limit int) ([]services.Track, error) {
	if m.SearchTracksFunc != nil {
		return m.SearchTracksFunc(ctx, token, query, limit)
	}
	return nil, nil
}

func (m *MockCatalog) CurrentUserPlaylists(ctx context.Context, token string, limit int) ([]services.Playlist, error) {
	if m.CurrentUserPlaylistsFunc != nil {
		return m.CurrentUserPlaylistsFunc(ctx, token, limit)
	}
	return nil, nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, token, name, description string, public bool) (*services.Playlist, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, token, name, description, public)
	}
	return &services.Playlist{ID: "mock-playlist", Name: name}, nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, token, playlistID string, uris []string) (string, error) {
	if m.AddTracksFunc != nil {
		return m.AddTracksFunc(ctx, token, playlistID, uris)
	}
	return "mock-snapshot", nil
}

// MockAuthenticator is a configurable test double for [services.Authenticator].
type MockAuthenticator struct {
	AuthCodeURLFunc func(state string) string
	ExchangeFunc    func(ctx context.Context, code string) (*services.TokenPair, error)
	RefreshFunc     func(ctx context.Context, refreshToken string) (*services.TokenPair, error)

	ExchangeCalls int
	RefreshCalls  int
}

func (m *MockAuthenticator) AuthCodeURL(state string) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state)
	}
	return "https://accounts.example.com/authorize?state=" + state
}

func (m *MockAuthenticator) Exchange(ctx context.Context, code string) (*services.TokenPair, error) {
	m.ExchangeCalls++
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	return &services.TokenPair{AccessToken: "mock-access", RefreshToken: "mock-refresh"}, nil
}

func (m *MockAuthenticator) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	m.RefreshCalls++
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return &services.TokenPair{AccessToken: "mock-access-2"}, nil
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, fmt.Errorf("write failed")
}

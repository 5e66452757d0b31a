// Spotify API implementation of [Catalog] and [Authenticator]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/setlist/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// Scopes requested at login: profile reads plus playlist writes.
var spotifyScopes = []string{
	"user-read-private",
	"user-read-email",
	"playlist-modify-public",
	"playlist-modify-private",
	"user-library-read",
}

// APIError preserves an upstream non-2xx response so callers can propagate
// Spotify's own status code and payload instead of a generic message.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("spotify API error: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("spotify API error: status %d", e.Status)
}

// Is reports 401 responses as [shared.ErrTokenExpired] so callers can use
// errors.Is without inspecting status codes.
func (e *APIError) Is(target error) bool {
	if target == shared.ErrTokenExpired {
		return e.Status == http.StatusUnauthorized
	}
	return target == shared.ErrAPIRequest
}

type followers struct {
	Total int `json:"total"`
}

type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type spotifyArtist struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Followers followers      `json:"followers"`
	Images    []spotifyImage `json:"images"`
}

type spotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	URI     string          `json:"uri"`
	Artists []spotifyArtist `json:"artists"`
	Album   spotifyAlbum    `json:"album"`
}

type spotifyPlaylist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

type paginated[T any] struct {
	Items []T     `json:"items"`
	Total int     `json:"total"`
	Next  *string `json:"next"`
}

// SpotifyService implements [Catalog] and [Authenticator] against the
// Spotify Web API. It holds only application credentials; user tokens are
// supplied per call.
type SpotifyService struct {
	config     *oauth2.Config
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8888/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthCodeURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token pair.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*TokenPair, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, wrapOAuthErr(err)
	}
	return &TokenPair{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken}, nil
}

// Refresh trades a refresh token for a fresh access token. Spotify may or
// may not rotate the refresh token.
func (s *SpotifyService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	src := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, wrapOAuthErr(err)
	}

	pair := &TokenPair{AccessToken: token.AccessToken}
	if token.RefreshToken != refreshToken {
		pair.RefreshToken = token.RefreshToken
	}
	return pair, nil
}

// wrapOAuthErr converts oauth2 retrieval failures into [APIError] so the
// upstream status and payload survive the trip to the handler layer.
func wrapOAuthErr(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		return &APIError{Status: rerr.Response.StatusCode, Body: rerr.Body}
	}
	return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
}

// doRequest performs an authenticated HTTP request against the Spotify API
// and decodes the JSON response into result when non-nil.
func (s *SpotifyService) doRequest(ctx context.Context, token, method, endpoint string, body, result any) error {
	apiURL := s.baseURL + endpoint

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: payload}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CurrentUser retrieves the authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context, token string) (*User, error) {
	var user spotifyUser
	if err := s.doRequest(ctx, token, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// SearchArtists searches for artists matching the query, in upstream
// relevance order.
func (s *SpotifyService) SearchArtists(ctx context.Context, token, query string, limit int) ([]Artist, error) {
	limit = clampLimit(limit)
	endpoint := fmt.Sprintf("/search?q=%s&type=artist&limit=%d", url.QueryEscape(query), limit)

	var response struct {
		Artists paginated[spotifyArtist] `json:"artists"`
	}
	if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	artists := make([]Artist, 0, len(response.Artists.Items))
	for _, a := range response.Artists.Items {
		artists = append(artists, toArtist(a))
	}
	return artists, nil
}

// ArtistTopTracks retrieves the artist's most popular tracks.
func (s *SpotifyService) ArtistTopTracks(ctx context.Context, token, artistID string) ([]Track, error) {
	endpoint := fmt.Sprintf("/artists/%s/top-tracks?market=from_token", artistID)

	var response struct {
		Tracks []spotifyTrack `json:"tracks"`
	}
	if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return toTracks(response.Tracks), nil
}

// ArtistAlbums retrieves the artist's albums, singles and compilations.
func (s *SpotifyService) ArtistAlbums(ctx context.Context, token, artistID string, limit int) ([]AlbumRef, error) {
	limit = clampLimit(limit)
	endpoint := fmt.Sprintf("/artists/%s/albums?include_groups=album,single,compilation&limit=%d", artistID, limit)

	var response paginated[spotifyAlbum]
	if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	albums := make([]AlbumRef, 0, len(response.Items))
	for _, a := range response.Items {
		albums = append(albums, AlbumRef{ID: a.ID, Name: a.Name})
	}
	return albums, nil
}

// AlbumTracks retrieves the track listing of an album. Album track items
// carry no album object; the caller annotates them.
func (s *SpotifyService) AlbumTracks(ctx context.Context, token, albumID string) ([]Track, error) {
	endpoint := fmt.Sprintf("/albums/%s/tracks?limit=50", albumID)

	var response paginated[spotifyTrack]
	if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return toTracks(response.Items), nil
}

// SearchTracks searches for tracks matching the query.
func (s *SpotifyService) SearchTracks(ctx context.Context, token, query string, limit int) ([]Track, error) {
	limit = clampLimit(limit)
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), limit)

	var response struct {
		Tracks paginated[spotifyTrack] `json:"tracks"`
	}
	if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return toTracks(response.Tracks.Items), nil
}

// CurrentUserPlaylists retrieves the user's playlists.
func (s *SpotifyService) CurrentUserPlaylists(ctx context.Context, token string, limit int) ([]Playlist, error) {
	limit = clampLimit(limit)
	endpoint := fmt.Sprintf("/me/playlists?limit=%d", limit)

	var response paginated[spotifyPlaylist]
	if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	playlists := make([]Playlist, 0, len(response.Items))
	for _, p := range response.Items {
		playlists = append(playlists, Playlist{ID: p.ID, Name: p.Name, TrackCount: p.Tracks.Total})
	}
	return playlists, nil
}

// CreatePlaylist creates a playlist owned by the current user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, token, name, description string, public bool) (*Playlist, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var created spotifyPlaylist
	if err := s.doRequest(ctx, token, http.MethodPost, "/me/playlists", body, &created); err != nil {
		return nil, err
	}

	return &Playlist{ID: created.ID, Name: created.Name, TrackCount: created.Tracks.Total}, nil
}

// AddTracks appends track URIs to a playlist. The Spotify API accepts at
// most 100 URIs per call.
func (s *SpotifyService) AddTracks(ctx context.Context, token, playlistID string, uris []string) (string, error) {
	if len(uris) == 0 {
		return "", fmt.Errorf("%w: no track URIs provided", shared.ErrInvalidInput)
	}
	if len(uris) > 100 {
		return "", fmt.Errorf("%w: maximum 100 track URIs per call", shared.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	body := map[string]any{"uris": uris}

	var response struct {
		SnapshotID string `json:"snapshot_id"`
	}
	if err := s.doRequest(ctx, token, http.MethodPost, endpoint, body, &response); err != nil {
		return "", err
	}

	return response.SnapshotID, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 50 {
		return 50
	}
	return limit
}

func toArtist(a spotifyArtist) Artist {
	artist := Artist{
		ID:        a.ID,
		Name:      a.Name,
		Followers: a.Followers.Total,
	}
	if len(a.Images) > 0 {
		artist.ImageURL = a.Images[0].URL
	}
	return artist
}

func toTracks(items []spotifyTrack) []Track {
	tracks := make([]Track, 0, len(items))
	for _, t := range items {
		track := Track{
			ID:        t.ID,
			URI:       t.URI,
			Name:      t.Name,
			AlbumName: t.Album.Name,
		}
		for _, a := range t.Artists {
			track.ArtistNames = append(track.ArtistNames, a.Name)
		}
		tracks = append(tracks, track)
	}
	return tracks
}

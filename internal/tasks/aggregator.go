package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
)

// DetailsResult bundles the deduplicated candidate tracks for an artist
// with the user's playlists for destination selection.
type DetailsResult struct {
	Tracks    []services.Track    `json:"tracks"`
	Playlists []services.Playlist `json:"playlists"`
}

// ResolveArtist turns a free-text query plus a set of rejected artist ids
// into exactly one candidate, in upstream relevance order. Upstream
// ranking is authoritative; no re-ranking happens here. The exclusion set
// is owned by the caller across calls.
func (e *Engine) ResolveArtist(ctx context.Context, token, query string, excluded []string) (*services.Artist, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: artist query must not be empty", shared.ErrInvalidInput)
	}

	candidates, err := e.catalog.SearchArtists(ctx, token, query, searchCandidateLimit)
	if err != nil {
		return nil, err
	}

	rejected := make(map[string]struct{}, len(excluded))
	for _, id := range excluded {
		rejected[id] = struct{}{}
	}

	for _, candidate := range candidates {
		if _, skip := rejected[candidate.ID]; !skip {
			return &candidate, nil
		}
	}

	return nil, fmt.Errorf("%w: no candidate for %q outside the exclusion set", shared.ErrArtistNotFound, query)
}

// CollectTracks folds the artist's top tracks, album tracks and guest
// appearances into a set deduplicated by track id. Later sources overwrite
// earlier metadata on id collision (last-write-wins; the content is
// equivalent).
//
// A failure fetching one album's tracks is non-fatal: the album is skipped,
// the pacer penalized, and aggregation continues. Completeness is
// best-effort by contract.
func (e *Engine) CollectTracks(ctx context.Context, token string, artist services.Artist) ([]services.Track, error) {
	byID := make(map[string]services.Track)

	top, err := e.catalog.ArtistTopTracks(ctx, token, artist.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", err)
	}
	for _, track := range top {
		byID[track.ID] = track
	}

	albums, err := e.catalog.ArtistAlbums(ctx, token, artist.ID, albumPageLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching albums: %w", err)
	}

	for _, album := range albums {
		if err := e.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		tracks, err := e.catalog.AlbumTracks(ctx, token, album.ID)
		if err != nil {
			e.logger.Warn("skipping album after track fetch failure",
				"album", album.Name, "album_id", album.ID, "error", err)
			e.pacer.Penalize()
			continue
		}

		for _, track := range tracks {
			if track.AlbumName == "" {
				track.AlbumName = album.Name
			}
			byID[track.ID] = track
		}
	}

	collabs, err := e.catalog.SearchTracks(ctx, token, collabQuery(artist.Name), collabSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching collaborations: %w", err)
	}
	for _, track := range collabs {
		byID[track.ID] = track
	}

	tracks := make([]services.Track, 0, len(byID))
	for _, track := range byID {
		tracks = append(tracks, track)
	}

	e.logger.Info("aggregated artist tracks",
		"artist", artist.Name, "albums", len(albums), "tracks", len(tracks))

	return tracks, nil
}

// ArtistDetails aggregates the artist's candidate tracks and the user's
// playlists. The two fetches hit unrelated upstream endpoints with no
// ordering dependency, so they run concurrently.
func (e *Engine) ArtistDetails(ctx context.Context, token, artistID, artistName string) (*DetailsResult, error) {
	artist := services.Artist{ID: artistID, Name: artistName}
	result := &DetailsResult{}

	var wg sync.WaitGroup
	var tracksErr, playlistsErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		result.Tracks, tracksErr = e.CollectTracks(ctx, token, artist)
	}()
	go func() {
		defer wg.Done()
		result.Playlists, playlistsErr = e.catalog.CurrentUserPlaylists(ctx, token, playlistPageLimit)
	}()
	wg.Wait()

	if tracksErr != nil {
		return nil, tracksErr
	}
	if playlistsErr != nil {
		return nil, fmt.Errorf("fetching playlists: %w", playlistsErr)
	}

	return result, nil
}

// collabQuery biases the track search toward releases the artist appears
// on rather than plain title matches.
func collabQuery(artistName string) string {
	return fmt.Sprintf("artist:%s", artistName)
}

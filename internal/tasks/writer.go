package tasks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/setlist/internal/shared"
)

// Destination modes accepted by BuildPlaylist.
const (
	DestinationNew      = "new"
	DestinationExisting = "existing"
)

// trackURIPattern matches the provider's track URI shape and the shareable
// track URL shape (with optional query string).
var trackURIPattern = regexp.MustCompile(`^(spotify:track:[0-9A-Za-z]{22}|https?://open\.spotify\.com/track/[0-9A-Za-z]{22}(\?.*)?)$`)

// BuildRequest describes a playlist write: which tracks, and whether they
// land in a new playlist or an existing one.
type BuildRequest struct {
	ArtistName       string
	TrackURIs        []string
	Mode             string
	TargetPlaylistID string
	NewPlaylistName  string
}

// BuildResult reports a completed write. SnapshotID is the upstream
// version marker returned by the final append.
type BuildResult struct {
	PlaylistID     string
	BatchesWritten int
	SnapshotID     string
}

// BatchError reports which append batch failed. Batches before Index
// landed; the playlist holds a partial prefix of the requested tracks.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("append batch %d failed: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Validate checks the request shape before any upstream call is made.
func (r BuildRequest) Validate() error {
	if len(r.TrackURIs) == 0 {
		return fmt.Errorf("%w: track URI set must not be empty", shared.ErrInvalidInput)
	}
	for _, uri := range r.TrackURIs {
		if !trackURIPattern.MatchString(uri) {
			return fmt.Errorf("%w: %q is not a track URI or URL", shared.ErrInvalidInput, uri)
		}
	}

	switch r.Mode {
	case DestinationNew:
	case DestinationExisting:
		if r.TargetPlaylistID == "" {
			return fmt.Errorf("%w: existing destination requires a playlist id", shared.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown playlist option %q", shared.ErrInvalidInput, r.Mode)
	}

	return nil
}

// playlistName resolves the destination name: caller-supplied and trimmed,
// falling back to a deterministic default derived from the artist.
func (r BuildRequest) playlistName() string {
	if name := strings.TrimSpace(r.NewPlaylistName); name != "" {
		return name
	}
	return fmt.Sprintf("Setlist: %s", r.ArtistName)
}

// BuildPlaylist resolves the destination playlist and appends the
// requested tracks in sequential batches of at most 100 URIs.
//
// The token is verified with a profile fetch before any mutating work, so
// an expired token fails the whole operation instead of surfacing halfway
// through the batches. Batches are never issued in parallel; ordering
// stays deterministic and a failure names the exact batch. Nothing is
// rolled back on failure; the partial prefix is reported via [BatchError].
func (e *Engine) BuildPlaylist(ctx context.Context, token string, req BuildRequest) (*BuildResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := e.catalog.CurrentUser(ctx, token); err != nil {
		return nil, fmt.Errorf("%w: identity check failed: %v", shared.ErrTokenExpired, err)
	}

	playlistID := req.TargetPlaylistID
	if req.Mode == DestinationNew {
		name := req.playlistName()
		description := fmt.Sprintf("Playlist generated for %s by setlist.", req.ArtistName)

		created, err := e.catalog.CreatePlaylist(ctx, token, name, description, false)
		if err != nil {
			return nil, fmt.Errorf("creating playlist: %w", err)
		}
		playlistID = created.ID

		e.logger.Info("created playlist", "name", name, "id", playlistID)
	}

	result := &BuildResult{PlaylistID: playlistID}

	for i, batch := range chunkURIs(req.TrackURIs, appendBatchSize) {
		if err := e.pacer.Wait(ctx); err != nil {
			return result, &BatchError{Index: i, Err: err}
		}

		snapshot, err := e.catalog.AddTracks(ctx, token, playlistID, batch)
		if err != nil {
			e.logger.Error("batch append failed",
				"playlist_id", playlistID, "batch", i, "size", len(batch), "error", err)
			return result, &BatchError{Index: i, Err: err}
		}

		result.BatchesWritten++
		result.SnapshotID = snapshot
	}

	e.logger.Info("playlist write complete",
		"playlist_id", playlistID, "tracks", len(req.TrackURIs), "batches", result.BatchesWritten)

	return result, nil
}

// chunkURIs partitions uris into fixed-size batches, preserving order. The
// last batch holds the remainder.
func chunkURIs(uris []string, size int) [][]string {
	if size <= 0 {
		size = appendBatchSize
	}

	batches := make([][]string, 0, (len(uris)+size-1)/size)
	for start := 0; start < len(uris); start += size {
		end := start + size
		if end > len(uris) {
			end = len(uris)
		}
		batches = append(batches, uris[start:end])
	}
	return batches
}

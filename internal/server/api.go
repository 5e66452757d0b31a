package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
)

// Engine defines the pipeline operations the JSON API depends on.
// Implemented by [tasks.Engine]; narrowed here for handler tests.
type Engine interface {
	ResolveArtist(ctx context.Context, token, query string, excluded []string) (*services.Artist, error)
	ArtistDetails(ctx context.Context, token, artistID, artistName string) (*tasks.DetailsResult, error)
	BuildPlaylist(ctx context.Context, token string, req tasks.BuildRequest) (*tasks.BuildResult, error)
}

// APIHandler serves the JSON endpoints the browser calls after login.
type APIHandler struct {
	engine Engine
	logger *log.Logger
}

// NewAPIHandler creates an APIHandler around the pipeline engine.
func NewAPIHandler(engine Engine, logger *log.Logger) *APIHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &APIHandler{engine: engine, logger: logger}
}

// Routes returns the patterns this handler serves.
func (h *APIHandler) Routes() []string {
	return []string{
		"POST /api/search-artist",
		"POST /api/search-artist-details",
		"POST /api/create-playlist",
	}
}

// ServeHTTP dispatches to the JSON API endpoints.
func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/search-artist":
		h.searchArtist(w, r)
	case "/api/search-artist-details":
		h.searchArtistDetails(w, r)
	case "/api/create-playlist":
		h.createPlaylist(w, r)
	default:
		http.NotFound(w, r)
	}
}

type searchArtistRequest struct {
	ArtistName  string   `json:"artistName"`
	AccessToken string   `json:"accessToken"`
	ExcludedIDs []string `json:"excludedIds"`
}

type searchArtistResponse struct {
	Artist services.Artist `json:"artist"`
}

// searchArtist resolves a free-text query to one candidate artist,
// skipping previously rejected ids.
func (h *APIHandler) searchArtist(w http.ResponseWriter, r *http.Request) {
	var req searchArtistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.AccessToken == "" {
		writeError(w, h.logger, missingParamError("accessToken"))
		return
	}
	if req.ArtistName == "" {
		writeError(w, h.logger, missingParamError("artistName"))
		return
	}

	artist, err := h.engine.ResolveArtist(r.Context(), req.AccessToken, req.ArtistName, req.ExcludedIDs)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, searchArtistResponse{Artist: *artist})
}

type artistDetailsRequest struct {
	AccessToken string `json:"accessToken"`
	ArtistID    string `json:"artistId"`
	ArtistName  string `json:"artistName"`
}

// searchArtistDetails aggregates the artist's candidate tracks and the
// user's playlists.
func (h *APIHandler) searchArtistDetails(w http.ResponseWriter, r *http.Request) {
	var req artistDetailsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.AccessToken == "" {
		writeError(w, h.logger, missingParamError("accessToken"))
		return
	}
	if req.ArtistID == "" {
		writeError(w, h.logger, missingParamError("artistId"))
		return
	}

	details, err := h.engine.ArtistDetails(r.Context(), req.AccessToken, req.ArtistID, req.ArtistName)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

type createPlaylistRequest struct {
	AccessToken      string   `json:"accessToken"`
	ArtistName       string   `json:"artistName"`
	TrackURIs        []string `json:"trackUris"`
	PlaylistOption   string   `json:"playlistOption"`
	TargetPlaylistID string   `json:"targetPlaylistId"`
	NewPlaylistName  string   `json:"newPlaylistName"`
}

type createPlaylistResponse struct {
	Message        string `json:"message"`
	PlaylistID     string `json:"playlistId"`
	BatchesWritten int    `json:"batchesWritten"`
	SnapshotID     string `json:"snapshotId,omitempty"`
}

// createPlaylist resolves the destination playlist and writes the selected
// tracks in bounded batches.
func (h *APIHandler) createPlaylist(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.AccessToken == "" {
		writeError(w, h.logger, missingParamError("accessToken"))
		return
	}

	result, err := h.engine.BuildPlaylist(r.Context(), req.AccessToken, tasks.BuildRequest{
		ArtistName:       req.ArtistName,
		TrackURIs:        req.TrackURIs,
		Mode:             req.PlaylistOption,
		TargetPlaylistID: req.TargetPlaylistID,
		NewPlaylistName:  req.NewPlaylistName,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, createPlaylistResponse{
		Message:        "Playlist updated successfully.",
		PlaylistID:     result.PlaylistID,
		BatchesWritten: result.BatchesWritten,
		SnapshotID:     result.SnapshotID,
	})
}

// errorResponse is the JSON error shape shared by every endpoint. Details
// carries the upstream payload verbatim when one exists; FailedBatch names
// the 0-based batch index of a partial write failure.
type errorResponse struct {
	Error       string          `json:"error"`
	Details     json.RawMessage `json:"details,omitempty"`
	FailedBatch *int            `json:"failedBatch,omitempty"`
}

func missingParamError(name string) error {
	return fmt.Errorf("%w: %s is required", shared.ErrMissingArgument, name)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps pipeline errors to HTTP statuses: validation to 400,
// missing artist to 404, expired tokens to 401, and any other upstream
// failure to the upstream's own status with its payload attached.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var batchErr *tasks.BatchError
	if errors.As(err, &batchErr) {
		resp.FailedBatch = &batchErr.Index
	}

	var apiErr *services.APIError

	switch {
	case errors.Is(err, shared.ErrInvalidInput) || errors.Is(err, shared.ErrMissingArgument):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrArtistNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrTokenExpired):
		status = http.StatusUnauthorized
	case errors.As(err, &apiErr):
		status = apiErr.Status
		if json.Valid(apiErr.Body) {
			resp.Details = apiErr.Body
		}
	}

	logger.Warn("request failed", "status", status, "error", err)
	writeJSON(w, status, resp)
}

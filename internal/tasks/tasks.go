package tasks

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
)

const (
	// searchCandidateLimit bounds the ranked artist list requested per
	// search, leaving room to skip rejected candidates without another
	// upstream round trip.
	searchCandidateLimit = 5

	// albumPageLimit bounds the album listing fetched per artist.
	albumPageLimit = 50

	// collabSearchLimit bounds the guest-appearance track search.
	collabSearchLimit = 50

	// playlistPageLimit bounds the user playlist listing.
	playlistPageLimit = 50

	// appendBatchSize is the Spotify maximum of track URIs per append call.
	appendBatchSize = 100
)

// Engine orchestrates artist resolution, track aggregation and playlist
// writes against the upstream catalog. It holds no per-user state; every
// operation is parameterized by the caller-supplied token.
type Engine struct {
	catalog services.Catalog
	pacer   *Pacer
	logger  *log.Logger
}

// NewEngine creates an Engine around the given catalog client.
func NewEngine(catalog services.Catalog, pacer *Pacer, logger *log.Logger) *Engine {
	if pacer == nil {
		pacer = NewPacer(0, 0)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{catalog: catalog, pacer: pacer, logger: logger}
}

package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
	ttest "github.com/desertthunder/setlist/internal/testing"
)

func TestResolveArtist(t *testing.T) {
	ranked := []services.Artist{
		{ID: "A1", Name: "Artist One"},
		{ID: "A2", Name: "Artist Two"},
		{ID: "A3", Name: "Artist Three"},
	}
	catalog := &ttest.MockCatalog{
		SearchArtistsFunc: func(ctx context.Context, token, query string, limit int) ([]services.Artist, error) {
			return ranked, nil
		},
	}
	engine := fastEngine(catalog)

	t.Run("returns the top candidate by default", func(t *testing.T) {
		artist, err := engine.ResolveArtist(context.Background(), "token", "Artist X", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if artist.ID != "A1" {
			t.Errorf("expected A1, got %s", artist.ID)
		}
	})

	t.Run("skips excluded candidates in upstream order", func(t *testing.T) {
		artist, err := engine.ResolveArtist(context.Background(), "token", "Artist X", []string{"A1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if artist.ID != "A2" {
			t.Errorf("expected A2, got %s", artist.ID)
		}
	})

	t.Run("not found when every candidate is excluded", func(t *testing.T) {
		_, err := engine.ResolveArtist(context.Background(), "token", "Artist X", []string{"A1", "A2", "A3"})
		if !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
	})

	t.Run("not found on empty result", func(t *testing.T) {
		empty := &ttest.MockCatalog{
			SearchArtistsFunc: func(ctx context.Context, token, query string, limit int) ([]services.Artist, error) {
				return nil, nil
			},
		}
		_, err := fastEngine(empty).ResolveArtist(context.Background(), "token", "Nobody", nil)
		if !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
	})

	t.Run("rejects empty query", func(t *testing.T) {
		_, err := engine.ResolveArtist(context.Background(), "token", "  ", nil)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestCollectTracks(t *testing.T) {
	artist := services.Artist{ID: "A1", Name: "Artist One"}

	track := func(id, album string) services.Track {
		return services.Track{
			ID:          id,
			URI:         "spotify:track:" + id,
			Name:        "Track " + id,
			AlbumName:   album,
			ArtistNames: []string{"Artist One"},
		}
	}

	t.Run("deduplicates by track id across sources", func(t *testing.T) {
		catalog := &ttest.MockCatalog{
			ArtistTopTracksFunc: func(ctx context.Context, token, artistID string) ([]services.Track, error) {
				return []services.Track{track("t1", "Album A"), track("t2", "Album A")}, nil
			},
			ArtistAlbumsFunc: func(ctx context.Context, token, artistID string, limit int) ([]services.AlbumRef, error) {
				return []services.AlbumRef{{ID: "alb1", Name: "Album A"}}, nil
			},
			AlbumTracksFunc: func(ctx context.Context, token, albumID string) ([]services.Track, error) {
				return []services.Track{track("t2", ""), track("t3", "")}, nil
			},
			SearchTracksFunc: func(ctx context.Context, token, query string, limit int) ([]services.Track, error) {
				return []services.Track{track("t3", "Other Album"), track("t4", "Guest Album")}, nil
			},
		}

		tracks, err := fastEngine(catalog).CollectTracks(context.Background(), "token", artist)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		seen := map[string]int{}
		for _, tr := range tracks {
			seen[tr.ID]++
		}
		for id, count := range seen {
			if count > 1 {
				t.Errorf("track %s appears %d times", id, count)
			}
		}
		if len(tracks) != 4 {
			t.Errorf("expected 4 distinct tracks, got %d", len(tracks))
		}
	})

	t.Run("annotates album tracks with the owning album name", func(t *testing.T) {
		catalog := &ttest.MockCatalog{
			ArtistAlbumsFunc: func(ctx context.Context, token, artistID string, limit int) ([]services.AlbumRef, error) {
				return []services.AlbumRef{{ID: "alb1", Name: "Named Album"}}, nil
			},
			AlbumTracksFunc: func(ctx context.Context, token, albumID string) ([]services.Track, error) {
				return []services.Track{track("t1", "")}, nil
			},
		}

		tracks, err := fastEngine(catalog).CollectTracks(context.Background(), "token", artist)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 || tracks[0].AlbumName != "Named Album" {
			t.Errorf("expected album annotation, got %+v", tracks)
		}
	})

	t.Run("one failing album does not abort aggregation", func(t *testing.T) {
		catalog := &ttest.MockCatalog{
			ArtistTopTracksFunc: func(ctx context.Context, token, artistID string) ([]services.Track, error) {
				return []services.Track{track("top1", "Hits")}, nil
			},
			ArtistAlbumsFunc: func(ctx context.Context, token, artistID string, limit int) ([]services.AlbumRef, error) {
				return []services.AlbumRef{
					{ID: "alb1", Name: "Album One"},
					{ID: "alb2", Name: "Album Two"},
					{ID: "alb3", Name: "Album Three"},
				}, nil
			},
			AlbumTracksFunc: func(ctx context.Context, token, albumID string) ([]services.Track, error) {
				if albumID == "alb2" {
					return nil, &services.APIError{Status: http.StatusTooManyRequests}
				}
				return []services.Track{track(albumID+"-t1", "")}, nil
			},
			SearchTracksFunc: func(ctx context.Context, token, query string, limit int) ([]services.Track, error) {
				return []services.Track{track("collab1", "Guest Album")}, nil
			},
		}

		tracks, err := fastEngine(catalog).CollectTracks(context.Background(), "token", artist)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		ids := map[string]bool{}
		for _, tr := range tracks {
			ids[tr.ID] = true
		}
		for _, want := range []string{"top1", "alb1-t1", "alb3-t1", "collab1"} {
			if !ids[want] {
				t.Errorf("expected track %s in aggregation", want)
			}
		}
		if ids["alb2-t1"] {
			t.Error("failed album should be skipped")
		}
	})

	t.Run("top track failure is fatal", func(t *testing.T) {
		catalog := &ttest.MockCatalog{
			ArtistTopTracksFunc: func(ctx context.Context, token, artistID string) ([]services.Track, error) {
				return nil, fmt.Errorf("boom")
			},
		}
		if _, err := fastEngine(catalog).CollectTracks(context.Background(), "token", artist); err == nil {
			t.Error("expected error when top tracks cannot be fetched")
		}
	})
}

func TestArtistDetails(t *testing.T) {
	t.Run("returns tracks and playlists together", func(t *testing.T) {
		catalog := &ttest.MockCatalog{
			ArtistTopTracksFunc: func(ctx context.Context, token, artistID string) ([]services.Track, error) {
				return []services.Track{{ID: "t1", Name: "Track"}}, nil
			},
			CurrentUserPlaylistsFunc: func(ctx context.Context, token string, limit int) ([]services.Playlist, error) {
				return []services.Playlist{{ID: "p1", Name: "Mix", TrackCount: 3}}, nil
			},
		}

		details, err := fastEngine(catalog).ArtistDetails(context.Background(), "token", "A1", "Artist One")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(details.Tracks) != 1 {
			t.Errorf("expected 1 track, got %d", len(details.Tracks))
		}
		if len(details.Playlists) != 1 {
			t.Errorf("expected 1 playlist, got %d", len(details.Playlists))
		}
	})

	t.Run("playlist fetch failure propagates", func(t *testing.T) {
		catalog := &ttest.MockCatalog{
			CurrentUserPlaylistsFunc: func(ctx context.Context, token string, limit int) ([]services.Playlist, error) {
				return nil, &services.APIError{Status: http.StatusBadGateway}
			},
		}
		if _, err := fastEngine(catalog).ArtistDetails(context.Background(), "token", "A1", "Artist One"); err == nil {
			t.Error("expected error when playlists cannot be fetched")
		}
	})
}

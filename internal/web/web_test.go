package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAssets(t *testing.T) {
	assets := NewAssets()

	t.Run("serves the app shell at the root", func(t *testing.T) {
		rec := httptest.NewRecorder()
		assets.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("expected HTML content type, got %q", ct)
		}
		if !strings.Contains(rec.Body.String(), "<html") {
			t.Error("expected the app shell document")
		}
	})

	t.Run("serves embedded files under /static/", func(t *testing.T) {
		for _, path := range []string{"/static/app.js", "/static/style.css"} {
			rec := httptest.NewRecorder()
			assets.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Errorf("%s: expected 200, got %d", path, rec.Code)
			}
		}
	})

	t.Run("unknown assets are a 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		assets.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/missing.js", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

// Package web embeds the static browser frontend.
//
// The frontend owns the OAuth-derived token pair: it extracts tokens from
// the callback URL fragment, persists them to localStorage, renews them
// through /refresh-token on a 401 (replaying the failed request once), and
// clears them on logout. The Go server never stores them.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// Assets serves the embedded frontend: index.html at the root and the
// remaining files under /static/.
type Assets struct {
	files http.Handler
}

// NewAssets creates the static asset handler.
func NewAssets() *Assets {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return &Assets{files: http.FileServerFS(sub)}
}

// Routes returns the patterns this handler serves.
func (a *Assets) Routes() []string {
	return []string{"GET /{$}", "GET /static/"}
}

// ServeHTTP serves index.html at the root and embedded files elsewhere.
func (a *Assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		data, err := staticFS.ReadFile("static/index.html")
		if err != nil {
			http.Error(w, "index not found", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
		return
	}

	http.StripPrefix("/static/", a.files).ServeHTTP(w, r)
}

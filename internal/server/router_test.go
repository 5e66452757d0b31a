package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// routesHandler is a minimal Handler serving a fixed set of patterns.
type routesHandler struct {
	routes []string
	fn     http.HandlerFunc
}

func (h *routesHandler) Routes() []string { return h.routes }

func (h *routesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { h.fn(w, r) }

func tagMiddleware(tag string, order *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, tag)
			next.ServeHTTP(w, r)
		})
	}
}

func TestBasicRouter(t *testing.T) {
	t.Run("registers every pattern a handler declares", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(&routesHandler{
			routes: []string{"GET /a", "GET /b"},
			fn: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
		})

		for _, path := range []string{"/a", "/b"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusNoContent {
				t.Errorf("%s: expected 204, got %d", path, rec.Code)
			}
		}
	})

	t.Run("enforces the method in the pattern", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("GET /only-get", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/only-get", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("applies middleware in registration order", func(t *testing.T) {
		var order []string
		router := NewBasicRouter()
		router.Use(tagMiddleware("first", &order), tagMiddleware("second", &order))
		router.Handle("GET /", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		want := []string{"first", "second", "handler"}
		if len(order) != len(want) {
			t.Fatalf("expected %v, got %v", want, order)
		}
		for i := range want {
			if order[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, order)
			}
		}
	})
}

package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
)

const (
	stateCookieName = "setlist_auth_state"
	stateCookieTTL  = 10 * time.Minute
)

// AuthHandler implements the OAuth2 authorization-code flow for the
// browser session: login redirect, callback exchange, and refresh.
//
// State lives in a short-lived http-only cookie scoped to one login
// attempt; the server keeps no session store. Tokens travel back to the
// browser in the URL fragment, which never reaches a server or referrer.
type AuthHandler struct {
	auth   services.Authenticator
	logger *log.Logger
	secure bool
}

// NewAuthHandler creates an AuthHandler. secure controls the Secure flag
// on the state cookie and should be true behind TLS.
func NewAuthHandler(auth services.Authenticator, logger *log.Logger, secure bool) *AuthHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &AuthHandler{auth: auth, logger: logger, secure: secure}
}

// Routes returns the patterns this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{"GET /login", "GET /callback", "GET /refresh-token"}
}

// ServeHTTP dispatches to the login, callback or refresh flow.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/login":
		h.login(w, r)
	case "/callback":
		h.callback(w, r)
	case "/refresh-token":
		h.refresh(w, r)
	default:
		http.NotFound(w, r)
	}
}

// login sets the CSRF state cookie and redirects to the upstream
// authorize URL.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	state := shared.GenerateState()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// callback validates the state parameter against the cookie and exchanges
// the authorization code. A mismatch aborts before any token exchange.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")

	cookie, err := r.Cookie(stateCookieName)
	if err != nil || state == "" || state != cookie.Value {
		h.logger.Warn("rejected oauth callback", "error", shared.ErrStateMismatch)
		h.redirectWithFragment(w, r, url.Values{"error": {"state_mismatch"}})
		return
	}

	h.clearStateCookie(w)

	code := r.URL.Query().Get("code")
	if code == "" {
		h.logger.Warn("oauth callback missing code",
			"upstream_error", r.URL.Query().Get("error"))
		h.redirectWithFragment(w, r, url.Values{"error": {"invalid_token"}})
		return
	}

	pair, err := h.auth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("token exchange failed", "error", err)
		h.redirectWithFragment(w, r, url.Values{"error": {"invalid_token"}})
		return
	}

	fragment := url.Values{"access_token": {pair.AccessToken}}
	if pair.RefreshToken != "" {
		fragment.Set("refresh_token", pair.RefreshToken)
	}
	h.redirectWithFragment(w, r, fragment)
}

// refresh exchanges a refresh token for a new access token via the
// upstream refresh grant.
func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := r.URL.Query().Get("refresh_token")
	if refreshToken == "" {
		writeError(w, h.logger, missingParamError("refresh_token"))
		return
	}

	pair, err := h.auth.Refresh(r.Context(), refreshToken)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// redirectWithFragment sends the browser back to the app root with the
// given values in the URL fragment.
func (h *AuthHandler) redirectWithFragment(w http.ResponseWriter, r *http.Request, values url.Values) {
	http.Redirect(w, r, "/#"+values.Encode(), http.StatusFound)
}

func (h *AuthHandler) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

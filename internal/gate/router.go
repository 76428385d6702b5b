// Package gate is the security boundary of the proxy. Every inbound
// request lands here: authenticated requests are handed to the
// upstream forwarder verbatim, everything else gets the login flow
// and never touches the backend.
package gate

import (
	"encoding/json"
	"net/http"

	"github.com/calheira/wikigate/internal/credstore"
	"github.com/calheira/wikigate/internal/journal"
	"github.com/calheira/wikigate/internal/logutil"
	"github.com/calheira/wikigate/internal/session"
	"github.com/calheira/wikigate/internal/throttle"
	"github.com/calheira/wikigate/internal/token"
	"github.com/julienschmidt/httprouter"
)

// Reserved paths, never proxied to the backend. The dot prefix keeps
// them out of the way of ordinary wiki page names.
const (
	LoginPath  = "/.gate/login"
	LogoutPath = "/.gate/logout"
	StatusPath = "/.gate/status"
)

type (
	Gate struct {
		creds          *credstore.Store
		codec          *token.Codec
		guard          *session.Guard
		upstream       http.Handler
		limiter        *throttle.Limiter
		journal        journal.Sink
		insecureCookie bool
	}
)

// New wires the per-request decision chain. limiter may be nil to
// disable login throttling; sink may be nil to discard audit events.
// allowHTTPCookie drops the Secure attribute from the session cookie
// so deployments without TLS in front still work.
func New(creds *credstore.Store, codec *token.Codec, upstream http.Handler, limiter *throttle.Limiter, sink journal.Sink, allowHTTPCookie bool) *Gate {
	if sink == nil {
		sink = journal.Discard()
	}
	return &Gate{
		creds:          creds,
		codec:          codec,
		guard:          session.NewGuard(codec),
		upstream:       upstream,
		limiter:        limiter,
		journal:        sink,
		insecureCookie: allowHTTPCookie,
	}
}

func (g *Gate) AsHandler() http.Handler {
	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, LoginPath, g.loginForm)
	router.HandlerFunc(http.MethodPost, LoginPath, g.login)
	router.HandlerFunc(http.MethodGet, LogoutPath, g.logout)
	router.HandlerFunc(http.MethodPost, LogoutPath, g.logout)
	router.HandlerFunc(http.MethodGet, StatusPath, g.status)

	// everything else is either proxied or challenged
	router.NotFound = http.HandlerFunc(g.dispatch)
	return router
}

// dispatch is the grant/deny point for proxied traffic. Only a valid
// token reaches the backend; any method, any path.
func (g *Gate) dispatch(w http.ResponseWriter, r *http.Request) {
	decision := g.guard.Check(r)
	if decision.State == session.ValidToken {
		g.upstream.ServeHTTP(w, r)
		return
	}
	if decision.State == session.InvalidToken {
		logger := logutil.ForRequest(r)
		logger.Debug().
			Str("decision", decision.State.String()).
			Msg("Rejecting stale or forged session token")
	}
	g.renderLogin(w, loginPage{
		Redirect:     r.URL.RequestURI(),
		WithUsername: g.creds.RequiresUsername(),
	}, http.StatusUnauthorized)
}

func (g *Gate) status(w http.ResponseWriter, r *http.Request) {
	decision := g.guard.Check(r)
	payload := struct {
		Authenticated bool   `json:"authenticated"`
		User          string `json:"user,omitempty"`
	}{
		Authenticated: decision.State == session.ValidToken,
		User:          decision.Identity,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// logout clears the client's cookie. Sessions are stateless, so there
// is nothing to tear down on this side.
func (g *Gate) logout(w http.ResponseWriter, r *http.Request) {
	decision := g.guard.Check(r)
	if decision.State == session.ValidToken {
		g.journalEvent(r, journal.Logout, decision.Identity, "")
	}
	http.SetCookie(w, g.sessionCookie("", -1))
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (g *Gate) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !g.insecureCookie,
	}
}

func (g *Gate) journalEvent(r *http.Request, kind, login, detail string) {
	err := g.journal.Record(r.Context(), kind, login, r.RemoteAddr, detail)
	if err != nil {
		logger := logutil.ForRequest(r)
		logger.Warn().Err(err).Msg("Unable to journal auth event")
	}
}

package gate

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/calheira/wikigate/internal/journal"
	"github.com/calheira/wikigate/internal/logutil"
	"github.com/calheira/wikigate/internal/session"
	"github.com/calheira/wikigate/internal/throttle"
)

type (
	loginPage struct {
		Redirect     string
		WithUsername bool
		Message      string
	}
)

// The wording of failure messages is deliberately the same for an
// unknown user and a wrong password.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgThrottled          = "Too many failed attempts, try again later"
)

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Login required</title></head>
<body>
<h1>Login required</h1>
{{if .Message}}<p>{{.Message}}</p>{{end}}
<form method="POST" action="` + LoginPath + `">
<input type="hidden" name="redirect" value="{{.Redirect}}">
{{if .WithUsername}}<label>Username <input type="text" name="username" autofocus></label><br>{{end}}
<label>Password <input type="password" name="password"{{if not .WithUsername}} autofocus{{end}}></label><br>
<button type="submit">Sign in</button>
</form>
</body>
</html>
`))

func (g *Gate) loginForm(w http.ResponseWriter, r *http.Request) {
	if g.guard.Check(r).State == session.ValidToken {
		// already signed in, nothing to ask for
		http.Redirect(w, r, sanitizeRedirect(r.URL.Query().Get("redirect")), http.StatusSeeOther)
		return
	}
	g.renderLogin(w, loginPage{
		Redirect:     sanitizeRedirect(r.URL.Query().Get("redirect")),
		WithUsername: g.creds.RequiresUsername(),
	}, http.StatusOK)
}

func (g *Gate) login(w http.ResponseWriter, r *http.Request) {
	log := logutil.ForRequest(r)
	if err := r.ParseForm(); err != nil {
		// malformed submission, treated as unauthenticated rather
		// than as a server fault
		g.renderLogin(w, loginPage{
			WithUsername: g.creds.RequiresUsername(),
			Message:      msgInvalidCredentials,
		}, http.StatusUnauthorized)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	redirect := sanitizeRedirect(r.PostFormValue("redirect"))

	key := throttle.Key(r.RemoteAddr, username)
	if g.limiter != nil && g.limiter.Blocked(key) {
		g.journalEvent(r, journal.LoginThrottled, username, "")
		log.Warn().Msg("Login attempt rejected by throttle")
		g.renderLogin(w, loginPage{
			Redirect:     redirect,
			WithUsername: g.creds.RequiresUsername(),
			Message:      msgThrottled,
		}, http.StatusTooManyRequests)
		return
	}

	if !g.creds.Verify(username, password) {
		if g.limiter != nil {
			g.limiter.RecordFailure(key)
		}
		g.journalEvent(r, journal.LoginDenied, username, "")
		log.Info().Msg("Login attempt denied")
		g.renderLogin(w, loginPage{
			Redirect:     redirect,
			WithUsername: g.creds.RequiresUsername(),
			Message:      msgInvalidCredentials,
		}, http.StatusUnauthorized)
		return
	}

	if g.limiter != nil {
		g.limiter.Reset(key)
	}
	tok, err := g.codec.Issue(username)
	if err != nil {
		log.Error().Err(err).Msg("Unable to issue session token")
		http.Error(w, "unable to establish session", http.StatusInternalServerError)
		return
	}
	g.journalEvent(r, journal.LoginOK, username, "")
	http.SetCookie(w, g.sessionCookie(tok, 0))
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func (g *Gate) renderLogin(w http.ResponseWriter, page loginPage, status int) {
	if page.Redirect == "" {
		page.Redirect = "/"
	}
	var buf bytes.Buffer
	if err := loginTemplate.Execute(&buf, page); err != nil {
		http.Error(w, "unable to render login page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// sanitizeRedirect only honors local absolute paths, everything else
// falls back to the root. Keeps the login endpoint from being used as
// an open redirect.
func sanitizeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") ||
		strings.ContainsAny(target, "\\\r\n") {
		return "/"
	}
	return target
}

// Package session makes the per-request grant/deny decision. It is
// deliberately a pure function of the request cookie and the token
// codec: no other header can authenticate a request.
package session

import (
	"net/http"

	"github.com/calheira/wikigate/internal/token"
)

const (
	// CookieName carries the session token. The forwarder strips this
	// cookie before the request reaches the backend.
	CookieName = "wikigate_session"
)

type (
	State int

	Decision struct {
		State    State
		Identity string
	}

	Guard struct {
		codec *token.Codec
	}
)

const (
	// NoToken and InvalidToken lead to the same place (the login form),
	// they are distinguished for logging only.
	NoToken State = iota
	InvalidToken
	ValidToken
)

func (s State) String() string {
	switch s {
	case NoToken:
		return "no-token"
	case InvalidToken:
		return "invalid-token"
	case ValidToken:
		return "valid-token"
	}
	return "unknown"
}

func NewGuard(codec *token.Codec) *Guard {
	return &Guard{codec: codec}
}

func (g *Guard) Check(r *http.Request) Decision {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Decision{State: NoToken}
	}
	identity, ok := g.codec.Verify(cookie.Value)
	if !ok {
		return Decision{State: InvalidToken}
	}
	return Decision{State: ValidToken, Identity: identity}
}

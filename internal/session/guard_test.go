package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calheira/wikigate/internal/secret"
	"github.com/calheira/wikigate/internal/token"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T) (*Guard, *token.Codec) {
	t.Helper()
	var key secret.Key
	for i := range key {
		key[i] = byte(i)
	}
	codec := token.New(&key, 0)
	return NewGuard(codec), codec
}

func request(t *testing.T, cookie string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	if cookie != "" {
		r.AddCookie(&http.Cookie{Name: CookieName, Value: cookie})
	}
	return r
}

func TestNoCookie(t *testing.T) {
	guard, _ := newGuard(t)
	decision := guard.Check(request(t, ""))
	require.Equal(t, NoToken, decision.State)
	require.Equal(t, "", decision.Identity)
}

func TestForeignCookiesAreIgnored(t *testing.T) {
	guard, _ := newGuard(t)
	r := request(t, "")
	r.AddCookie(&http.Cookie{Name: "wiki_pref", Value: "dark-mode"})
	require.Equal(t, NoToken, guard.Check(r).State)
}

func TestGarbageToken(t *testing.T) {
	guard, _ := newGuard(t)
	decision := guard.Check(request(t, "not-a-token"))
	require.Equal(t, InvalidToken, decision.State)
	require.Equal(t, "", decision.Identity)
}

func TestValidToken(t *testing.T) {
	guard, codec := newGuard(t)
	tok, err := codec.Issue("alice")
	require.NoError(t, err)
	decision := guard.Check(request(t, tok))
	require.Equal(t, ValidToken, decision.State)
	require.Equal(t, "alice", decision.Identity)
}

// headers other than the cookie must never authenticate a request
func TestHeadersCannotAuthenticate(t *testing.T) {
	guard, _ := newGuard(t)
	r := request(t, "")
	r.Header.Set("X-Forwarded-For", "127.0.0.1")
	r.Header.Set("Authorization", "Bearer anything")
	r.Header.Set("Referer", "http://localhost/.gate/login")
	require.Equal(t, NoToken, guard.Check(r).State)
}

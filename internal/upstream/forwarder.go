// Package upstream streams authenticated requests to the protected
// backend and relays its responses byte for byte. Bodies are never
// buffered in full: wiki payloads can be large, so both directions go
// through the chunked copy loop of httputil.ReverseProxy.
package upstream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/calheira/wikigate/internal/logutil"
	"github.com/calheira/wikigate/internal/session"
)

type (
	Forwarder struct {
		target *url.URL
		proxy  *httputil.ReverseProxy
	}
)

// NewForwarder builds the reverse proxy for the given backend base
// URL. responseTimeout bounds how long the backend may take to start
// responding; the body transfer itself is unbounded but dies with the
// client connection (the request context cancels the upstream call).
func NewForwarder(target *url.URL, responseTimeout time.Duration) *Forwarder {
	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		// the backend sees its own host, not the proxy's
		req.Host = target.Host
		stripSessionCookie(req)
	}
	proxy.Transport = &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second,
		}).DialContext,
		ResponseHeaderTimeout: responseTimeout,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
	}
	proxy.FlushInterval = 100 * time.Millisecond
	proxy.ModifyResponse = dropOwnSetCookie
	proxy.ErrorHandler = upstreamError
	return &Forwarder{target: target, proxy: proxy}
}

func (f *Forwarder) Target() *url.URL {
	return f.target
}

func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.proxy.ServeHTTP(w, r)
}

// stripSessionCookie removes the proxy's own cookie from the outgoing
// request, the backend must never see (or worse, reinterpret) the
// session token. Every other cookie passes through untouched.
func stripSessionCookie(req *http.Request) {
	cookies := req.Cookies()
	req.Header.Del("Cookie")
	for _, c := range cookies {
		if c.Name == session.CookieName {
			continue
		}
		req.AddCookie(c)
	}
}

// dropOwnSetCookie keeps the backend from setting the proxy's session
// cookie on the client. The Set-Cookie header for the auth token is
// owned by the proxy alone.
func dropOwnSetCookie(resp *http.Response) error {
	cookies := resp.Cookies()
	owned := false
	for _, c := range cookies {
		if c.Name == session.CookieName {
			owned = true
			break
		}
	}
	if !owned {
		return nil
	}
	resp.Header.Del("Set-Cookie")
	for _, c := range cookies {
		if c.Name == session.CookieName {
			continue
		}
		resp.Header.Add("Set-Cookie", c.Raw)
	}
	return nil
}

// upstreamError maps backend failures to generic gateway responses.
// The client learns that the backend failed, never how.
func upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.ForRequest(r)
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		// client went away mid-stream, nothing left to answer
		log.Debug().Msg("Client disconnected while proxying")
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		log.Warn().Err(err).Msg("Backend timed out")
		http.Error(w, "wiki backend timed out", http.StatusGatewayTimeout)
	default:
		log.Error().Err(err).Msg("Backend request failed")
		http.Error(w, "wiki backend is not reachable", http.StatusBadGateway)
	}
}

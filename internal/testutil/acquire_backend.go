package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}

	// Backend is a canned wiki server for tests. Hits counts every
	// request that actually reached it, which is how tests prove that
	// unauthenticated traffic never crosses the proxy.
	Backend struct {
		*httptest.Server
		hits uint32
	}
)

func (b *Backend) Hits() uint32 {
	return atomic.LoadUint32(&b.hits)
}

// AcquireBackend serves a fixed index page plus an /echo endpoint that
// reflects the request method, host and cookie header back into
// response headers, so proxy tests can observe what the backend saw.
func AcquireBackend(t TestLog) (*Backend, func()) {
	b := &Backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/index.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Backend", "wiki")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<h1>it works</h1>`)
	})
	echo := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Echo-Method", r.Method)
		w.Header().Set("X-Echo-Host", r.Host)
		w.Header().Set("X-Echo-Path", r.URL.RequestURI())
		w.Header().Set("X-Echo-Cookie", r.Header.Get("Cookie"))
		io.Copy(w, r.Body)
	}
	mux.HandleFunc("/echo", echo)
	mux.HandleFunc("/base/echo", echo)
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddUint32(&b.hits, 1)
		mux.ServeHTTP(w, r)
	}))
	return b, b.Server.Close
}

package upstream

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ParseTarget validates the backend location. It accepts a bare
// host[:port] or a full http(s) URL with an optional base path. A
// query is rejected: the backend base URL is a prefix, not a request.
func ParseTarget(raw string) (*url.URL, error) {
	full := raw
	if !strings.Contains(full, "://") {
		full = "http://" + full
	}
	u, err := url.Parse(full)
	if err != nil {
		return nil, fmt.Errorf("cannot parse url: %v", raw)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("protocol not supported: %v", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("missing authority")
	}
	if u.RawQuery != "" || u.ForceQuery {
		return nil, errors.New("URL cannot contain a query")
	}
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

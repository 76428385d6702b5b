package upstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	for input, expected := range map[string]string{
		"http://localhost:5000/path": "http://localhost:5000/path",
		"localhost:12345":            "http://localhost:12345/",
		"localhost":                  "http://localhost/",
		"https://wiki.internal/base": "https://wiki.internal/base",
	} {
		u, err := ParseTarget(input)
		require.NoError(t, err, "input %q", input)
		require.Equal(t, expected, u.String(), "input %q", input)
	}
}

func TestParseTargetRejections(t *testing.T) {
	for name, input := range map[string]string{
		"unparseable":      "http::wrong-uri",
		"wrong protocol":   "ftp://localhost:7000/path",
		"no authority":     "/path",
		"query string":     "http://localhost/?query",
		"non-empty query":  "http://localhost/?a=1",
		"empty everything": "",
	} {
		_, err := ParseTarget(input)
		require.Error(t, err, "%v (%q) should be rejected", name, input)
	}
}

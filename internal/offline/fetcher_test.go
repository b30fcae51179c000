package offline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_OriginOnly(t *testing.T) {
	var foreignHits atomic.Int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignHits.Add(1)
		_, _ = w.Write([]byte("foreign"))
	}))
	t.Cleanup(foreign.Close)

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("site " + r.URL.RequestURI()))
	}))
	t.Cleanup(site.Close)

	origin, err := url.Parse(site.URL)
	require.NoError(t, err)
	fetcher := NewHTTPFetcher(origin, nil)
	foreignHost := strings.TrimPrefix(foreign.URL, "http://")

	tests := []struct {
		name     string
		url      string
		expected string
		crossErr bool
	}{
		{name: "relative path", url: "/games?page=2", expected: "site /games?page=2"},
		{name: "absolute same origin", url: site.URL + "/games", expected: "site /games"},
		{name: "scheme relative", url: "//" + foreignHost + "/secret", crossErr: true},
		{name: "absolute foreign", url: foreign.URL + "/secret", crossErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, err := fetcher.Fetch(context.Background(), Get(tt.url))
			if tt.crossErr {
				assert.ErrorIs(t, err, ErrCrossOrigin)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(response.Body))
			assert.Equal(t, SourceNetwork, response.Source)
		})
	}

	assert.Zero(t, foreignHits.Load())
}

func TestOriginPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		query    string
		expected string
	}{
		{name: "empty", path: "", expected: "/"},
		{name: "plain", path: "games/hello", expected: "/games/hello"},
		{name: "query", path: "games", query: "page=2", expected: "/games?page=2"},
		{name: "leading slash", path: "/evil.test/secret", expected: "/evil.test/secret"},
		{name: "many slashes", path: "//evil.test//secret", expected: "/evil.test/secret"},
		{name: "dot segments", path: "../../etc/passwd", expected: "/etc/passwd"},
		{name: "trailing slash", path: "games/", expected: "/games/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OriginPath(tt.path, tt.query)
			assert.Equal(t, tt.expected, got)

			target, err := testOrigin.Parse(got)
			require.NoError(t, err)
			assert.True(t, sameOrigin(testOrigin, target))
		})
	}
}

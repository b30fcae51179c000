// Package offline implements the offline worker that fronts the site
// origin: versioned cache generations, cache-first fetch with fallbacks,
// push notifications and background sync. Workers are driven by a
// Coordinator that owns every piece of lifecycle state.
package offline

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	CACHE_PREFIX = "ZappyGames"

	OfflinePage     = "/offline.html"
	PlaceholderIcon = "/icons/icon-192x192.png"
	GamesEndpoint   = "/api/games"

	SyncTagBackground = "background-sync"
	SyncTagDailyGames = "daily-games-update"
)

// ShellAssets are precached into the static generation on install.
var ShellAssets = []string{
	"/",
	"/games",
	"/manifest.json",
	"/icons/icon-192x192.png",
	"/icons/icon-512x512.png",
	OfflinePage,
}

var (
	ErrNoActiveWorker = errors.New("no active offline worker")
	ErrStopped        = errors.New("offline coordinator stopped")
	ErrAssetCache     = errors.New("asset could not be cached")
	ErrUnknownSyncTag = errors.New("unknown sync tag")
	ErrCrossOrigin    = errors.New("request is not for the site origin")
)

func StaticGeneration(version string) string {
	return fmt.Sprintf("%s-static-%s", CACHE_PREFIX, version)
}

func DynamicGeneration(version string) string {
	return fmt.Sprintf("%s-dynamic-%s", CACHE_PREFIX, version)
}

type Destination string

const (
	DestinationDocument Destination = "document"
	DestinationImage    Destination = "image"
	DestinationOther    Destination = ""
)

// DestinationFrom classifies a request from its Sec-Fetch-Dest header,
// falling back to the Accept header for clients that do not send one.
func DestinationFrom(secFetchDest, accept string) Destination {
	switch secFetchDest {
	case "document", "iframe":
		return DestinationDocument
	case "image":
		return DestinationImage
	case "":
	default:
		return DestinationOther
	}

	accept = strings.ToLower(accept)
	switch {
	case strings.Contains(accept, "text/html"):
		return DestinationDocument
	case strings.HasPrefix(accept, "image/"):
		return DestinationImage
	}
	return DestinationOther
}

type Request struct {
	Method      string
	URL         string
	Destination Destination
	Header      http.Header
}

func Get(path string) Request {
	return Request{Method: http.MethodGet, URL: path}
}

type Source string

const (
	SourceCache    Source = "cache"
	SourceNetwork  Source = "network"
	SourceFallback Source = "fallback"
)

type Response struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"storedAt"`
	Source   Source      `json:"-"`
}

func (r Response) OK() bool {
	return r.Status == http.StatusOK
}

// OriginPath turns an intercepted path and raw query into a request URL
// that always resolves against the site origin. Repeated or dot segments are
// collapsed, so "//host/x" cannot become a scheme-relative URL.
func OriginPath(rawPath, rawQuery string) string {
	cleaned := path.Clean("/" + rawPath)
	if strings.HasSuffix(rawPath, "/") && cleaned != "/" {
		cleaned += "/"
	}
	if rawQuery != "" {
		return cleaned + "?" + rawQuery
	}
	return cleaned
}

// requestKey normalizes a same-origin request to path plus query, the key
// responses are stored under.
func requestKey(u *url.URL) string {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		return path + "?" + u.RawQuery
	}
	return path
}

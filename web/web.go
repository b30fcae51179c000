// Package web embeds the static shell: the app document, the offline page
// and the install icons.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var content embed.FS

const (
	IndexFile   = "index.html"
	OfflineFile = "offline.html"
)

// Static is the shell rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Manifest is the web app manifest served at /manifest.json.
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Orientation     string         `json:"orientation"`
	Scope           string         `json:"scope"`
	Lang            string         `json:"lang"`
	Categories      []string       `json:"categories"`
	Icons           []ManifestIcon `json:"icons"`
	Shortcuts       []Shortcut     `json:"shortcuts"`
}

type ManifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

type Shortcut struct {
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

func DefaultManifest() Manifest {
	return Manifest{
		Name:            "ZappyGames - Free Online Games",
		ShortName:       "ZappyGames",
		Description:     "Play thousands of free online games. No downloads required!",
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: "#0f0f23",
		ThemeColor:      "#8b5cf6",
		Orientation:     "portrait-primary",
		Scope:           "/",
		Lang:            "en",
		Categories:      []string{"games", "entertainment"},
		Icons: []ManifestIcon{
			{Src: "/icons/icon-192x192.png", Sizes: "192x192", Type: "image/png", Purpose: "maskable any"},
			{Src: "/icons/icon-512x512.png", Sizes: "512x512", Type: "image/png", Purpose: "maskable any"},
		},
		Shortcuts: []Shortcut{
			{Name: "Action Games", ShortName: "Action", Description: "Play action games", URL: "/games?category=action"},
			{Name: "Puzzle Games", ShortName: "Puzzle", Description: "Play puzzle games", URL: "/games?category=puzzle"},
		},
	}
}

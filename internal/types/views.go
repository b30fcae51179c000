package types

import (
	"time"
	"zappygames/internal/catalog"
	"zappygames/internal/models"
)

// GridPage is one page of the game grid with the filters that produced it.
type GridPage struct {
	catalog.Page
	Category string `json:"category"`
	Search   string `json:"search,omitempty"`
}

type GameDetail struct {
	Game        catalog.Game   `json:"game"`
	Liked       bool           `json:"liked"`
	Suggestions []catalog.Game `json:"suggestions"`
}

type LikeToggle struct {
	Slug  string `json:"slug"`
	Liked bool   `json:"liked"`
}

// LikedGame joins a like to its catalog record.
type LikedGame struct {
	Game    catalog.Game `json:"game"`
	LikedAt time.Time    `json:"likedAt"`
}

type RecentGame struct {
	Game     catalog.Game `json:"game"`
	PlayedAt time.Time    `json:"playedAt"`
}

// CommentThread is a top level comment with its direct replies.
type CommentThread struct {
	models.Comment
	Replies []models.Comment `json:"replies"`
}

type Status struct {
	Configured bool   `json:"configured"`
	Banner     string `json:"banner,omitempty"`
	Version    string `json:"version"`
	Games      int    `json:"games"`
	Clients    int    `json:"clients"`
}

package catalog

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

const (
	// AllCategories is the filter key that disables category filtering.
	AllCategories = "all"

	// BrowseAllLimit caps the unfiltered grid.
	BrowseAllLimit = 30

	GamesPerPage = 20

	SuggestedLimit = 4
)

//go:embed data/games.json
var embeddedGames []byte

type Game struct {
	Name     string          `json:"name"     validate:"required"`
	Slug     string          `json:"slug"`
	Category string          `json:"category" validate:"required"`
	ImageURL string          `json:"image"`
	Sources  []string        `json:"sources"  validate:"required,min=1,dive,url"`
	Rating   decimal.Decimal `json:"rating"`
}

type Category struct {
	Name      string `json:"name" validate:"required"`
	FilterKey string `json:"url"  validate:"required,lowercase"`
}

type document struct {
	Categories []Category `json:"categories" validate:"dive"`
	Games      []Game     `json:"games"      validate:"required,dive"`
}

// Catalog is the immutable game list. It is safe for concurrent readers.
type Catalog struct {
	games      []Game
	categories []Category
	bySlug     map[string]int
}

var whitespace = regexp.MustCompile(`\s+`)

// Slugify lowercases the name and collapses each whitespace run into one hyphen.
func Slugify(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(name), "-")
}

// Load decodes the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(embeddedGames)
}

func Parse(data []byte) (*Catalog, error) {
	log := logger.New("catalog").Function("Parse")

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, log.Err("failed to decode catalog", err)
	}

	if err := validator.New().Struct(doc); err != nil {
		return nil, log.Err("catalog failed validation", err)
	}

	catalog, err := New(doc.Games, doc.Categories)
	if err != nil {
		return nil, log.Err("failed to build catalog", err)
	}

	log.Info("Catalog loaded", "games", len(catalog.games), "categories", len(catalog.categories))
	return catalog, nil
}

func New(games []Game, categories []Category) (*Catalog, error) {
	catalog := &Catalog{
		games:      make([]Game, 0, len(games)),
		categories: append([]Category(nil), categories...),
		bySlug:     make(map[string]int, len(games)),
	}

	for _, game := range games {
		if game.Slug == "" {
			game.Slug = Slugify(game.Name)
		}
		if _, exists := catalog.bySlug[game.Slug]; exists {
			return nil, fmt.Errorf("duplicate game slug %q", game.Slug)
		}
		catalog.bySlug[game.Slug] = len(catalog.games)
		catalog.games = append(catalog.games, game)
	}

	return catalog, nil
}

func (c *Catalog) All() []Game {
	return append([]Game(nil), c.games...)
}

func (c *Catalog) Len() int {
	return len(c.games)
}

func (c *Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// FindBySlug expects an already unescaped slug.
func (c *Catalog) FindBySlug(slug string) (Game, bool) {
	index, ok := c.bySlug[slug]
	if !ok {
		return Game{}, false
	}
	return c.games[index], true
}

// FilterByCategory matches key against the first word of each game's
// category, ignoring case. The key "all" returns every game.
func (c *Catalog) FilterByCategory(key string) []Game {
	if key == "" || strings.EqualFold(key, AllCategories) {
		return c.All()
	}

	var filtered []Game
	for _, game := range c.games {
		if strings.EqualFold(categoryKey(game.Category), key) {
			filtered = append(filtered, game)
		}
	}
	return filtered
}

// Search is a case-insensitive substring match on the game name.
func (c *Catalog) Search(term string) []Game {
	return search(c.games, term)
}

// Browse is the grid query: an unfiltered grid only shows the first
// BrowseAllLimit games, then the search term narrows the result.
func (c *Catalog) Browse(category, term string) []Game {
	var games []Game
	if category == "" || strings.EqualFold(category, AllCategories) {
		games = c.games[:min(BrowseAllLimit, len(c.games))]
	} else {
		games = c.FilterByCategory(category)
	}

	return search(games, term)
}

// Suggested returns up to limit games of the same category, excluding game.
func (c *Catalog) Suggested(game Game, limit int) []Game {
	var suggested []Game
	for _, candidate := range c.games {
		if len(suggested) == limit {
			break
		}
		if candidate.Slug == game.Slug || candidate.Category != game.Category {
			continue
		}
		suggested = append(suggested, candidate)
	}
	return suggested
}

func search(games []Game, term string) []Game {
	term = strings.ToLower(term)

	results := make([]Game, 0, len(games))
	for _, game := range games {
		if term == "" || strings.Contains(strings.ToLower(game.Name), term) {
			results = append(results, game)
		}
	}
	return results
}

func categoryKey(category string) string {
	fields := strings.Fields(category)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

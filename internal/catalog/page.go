package catalog

type Page struct {
	Games      []Game `json:"games"`
	Page       int    `json:"page"`
	PerPage    int    `json:"perPage"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
}

// Paginate slices games into 1-based pages. Out of range pages are clamped.
func Paginate(games []Game, page, perPage int) Page {
	if perPage <= 0 {
		perPage = GamesPerPage
	}

	total := len(games)
	totalPages := (total + perPage - 1) / perPage

	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	return Page{
		Games:      append([]Game{}, games[start:end]...),
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

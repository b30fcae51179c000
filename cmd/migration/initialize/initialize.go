package initialize

import (
	"zappygames/internal/catalog"
	. "zappygames/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// PruneOrphans removes likes, recent plays and comments whose game is no
// longer in the catalog.
func PruneOrphans(db *gorm.DB, games *catalog.Catalog, log logger.Logger) error {
	log = log.Function("PruneOrphans")

	slugs := make([]string, 0, games.Len())
	for _, game := range games.All() {
		slugs = append(slugs, game.Slug)
	}
	if len(slugs) == 0 {
		log.Warn("Catalog is empty, skipping prune")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&Like{}, &RecentPlay{}, &Comment{}} {
			result := tx.Where("game_slug NOT IN ?", slugs).Delete(model)
			if result.Error != nil {
				return log.Err("failed to prune rows", result.Error, "model", model)
			}
			if result.RowsAffected > 0 {
				log.Info("Pruned rows for removed games", "model", model, "count", result.RowsAffected)
			}
		}
		return nil
	})
}

package main

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"strconv"
	"zappygames/cmd/migration/initialize"
	"zappygames/cmd/migration/seed"
	"zappygames/config"
	"zappygames/internal/catalog"
	"zappygames/internal/database"

	logger "github.com/Bparsons0904/goLogger"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/gorm"
)

const (
	MIGRATION_ROOT = "migrations"
	MIGRATION_DB   = "postgres"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func main() {
	log := logger.New("migrations").Function("main")

	config, err := config.New()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	db, err := database.New(config)
	if err != nil {
		log.Er("failed to create database", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Er("failed to close database", err)
		}
	}()

	if !db.HasSQL() {
		log.ErrMsg("no relational store configured")
		os.Exit(1)
	}

	games, err := catalog.Load()
	if err != nil {
		log.Er("failed to load catalog", err)
		os.Exit(1)
	}

	migrationType := "up"
	if len(os.Args) > 1 {
		migrationType = os.Args[1]
	}

	switch migrationType {
	case "up":
		err = migrateUp(db.SQL, config, games, log)
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil {
				log.Er("failed to parse step", err)
				os.Exit(1)
			}
		}
		err = runMigrations(config, log, migrate.Down, steps)
	case "prune":
		err = initialize.PruneOrphans(db.SQL, games, log)
	case "seed":
		err = migrateSeed(db, config, games, log)
	default:
		err = fmt.Errorf("unknown migration command %q", migrationType)
	}

	if err != nil {
		log.Er("failed to run migrations", err)
		os.Exit(1)
	}

	log.Info("Migrations complete", "command", migrationType)
}

// migrateUp creates the tables from the models, then applies the SQL
// migrations that add what AutoMigrate cannot express.
func migrateUp(db *gorm.DB, config config.Config, games *catalog.Catalog, log logger.Logger) error {
	log = log.Function("migrateUp")
	log.Info("Running migrations up")

	if err := database.MigrateModels(db); err != nil {
		return log.Err("failed to auto migrate", err)
	}

	if err := runMigrations(config, log, migrate.Up, 0); err != nil {
		return log.Err("failed to run migrations", err)
	}

	if err := initialize.PruneOrphans(db, games, log); err != nil {
		return log.Err("failed to prune orphaned rows", err)
	}

	return nil
}

func migrateSeed(db database.DB, config config.Config, games *catalog.Catalog, log logger.Logger) error {
	log = log.Function("migrateSeed")
	log.Info("Running seed")

	if err := cleanDatabase(db.SQL, config, log); err != nil {
		return log.Err("failed to clean database", err)
	}

	if err := db.FlushAllCaches(); err != nil {
		return log.Err("failed to flush cache databases", err)
	}

	if err := migrateUp(db.SQL, config, games, log); err != nil {
		return log.Err("failed to migrate", err)
	}

	log.Info("Seeding database")
	if err := seed.Seed(db, config, games, log); err != nil {
		return log.Err("failed to seed database", err)
	}

	return nil
}

// runMigrations applies the embedded SQL migrations. A max of 0 applies
// every pending migration.
func runMigrations(
	config config.Config,
	log logger.Logger,
	direction migrate.MigrationDirection,
	max int,
) error {
	log = log.Function("runMigrations")

	migrations := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       MIGRATION_ROOT,
	}

	db, err := sql.Open(MIGRATION_DB, dsn(config))
	if err != nil {
		return log.Err("failed to open database for migrations", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Er("failed to close database", err)
		}
	}()

	n, err := migrate.ExecMax(db, MIGRATION_DB, migrations, direction, max)
	if err != nil {
		return log.Err("failed to run migrations", err)
	}

	if n == 0 {
		log.Info("No migrations to apply")
	} else {
		log.Info("Applied migrations", "migrationCount", n)
	}

	return nil
}

func dsn(config config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseName,
	)
}

// cleanDatabase drops every model table and rolls back the SQL migrations
// so seeding starts from an empty schema.
func cleanDatabase(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("cleanDatabase")
	log.Info("Cleaning database before seeding")

	if db.Migrator().HasTable(database.MODELS_TO_MIGRATE[0]) {
		if err := runMigrations(config, log, migrate.Down, 0); err != nil {
			return log.Err("failed to roll back migrations", err)
		}
	}

	if err := db.Migrator().DropTable(database.MODELS_TO_MIGRATE...); err != nil {
		return log.Err("failed to drop tables", err)
	}

	log.Info("Database cleaned successfully")
	return nil
}

package main

import (
	"go.uber.org/zap"

	"github.com/soko/backend/internal/infrastructure/config"
	"github.com/soko/backend/internal/infrastructure/logger"
	"github.com/soko/backend/internal/infrastructure/persistence"
)

// Applies the schema to the configured database and exits. The server runs
// migrations on startup as well; this binary exists for deploy pipelines that
// migrate before rolling instances.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Migration completed")
}

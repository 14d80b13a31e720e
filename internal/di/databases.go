package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/mars-command/internal/config"
	"github.com/aristath/mars-command/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens both databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// state.db - current robot positions, rewritten on every step
	stateDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "state.db"),
		Profile: database.ProfileStandard,
		Name:    "state",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state database: %w", err)
	}
	container.StateDB = stateDB

	// history.db - append-only command log
	historyDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "history.db"),
		Profile: database.ProfileLedger,
		Name:    "history",
	})
	if err != nil {
		stateDB.Close()
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}
	container.HistoryDB = historyDB

	for name, db := range container.Databases() {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", name, err)
		}
	}

	log.Info().
		Str("data_dir", cfg.DataDir).
		Msg("Databases initialized")

	return container, nil
}

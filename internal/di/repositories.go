package di

import (
	"github.com/aristath/mars-command/internal/modules/history"
	"github.com/aristath/mars-command/internal/modules/robots"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the repositories on top of the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	container.RobotRepo = robots.NewRepository(container.StateDB.Conn(), log)
	container.HistoryRepo = history.NewRepository(container.HistoryDB.Conn(), log)
	return nil
}

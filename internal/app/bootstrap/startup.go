// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/workers"
)

// trashSweeper is started in Startup and stopped in Shutdown.
var trashSweeper *workers.TrashSweep

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. Here it
// launches the background trash purge sweep.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	trashSweeper = workers.NewTrashSweep(deps.MongoDatabase, logger,
		appCfg.TrashSweepInterval, appCfg.TrashRetention)
	trashSweeper.Start()
	return nil
}

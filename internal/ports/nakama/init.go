package nakama

import (
	"context"
	"database/sql"

	"punto/internal/app"
	"punto/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// GameConfigPath is where the module expects its tuning file inside the
// Nakama container.
const GameConfigPath = "/nakama/data/modules/punto_config.json"

// InitModule wires RPCs and the match handler for the Nakama runtime. One
// engine service backs every match in the process.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig(GameConfigPath); err != nil {
		logger.Warn("InitModule: game config not loaded, using defaults: %v", err)
	}

	engine := app.NewService(nil)

	if err := initializer.RegisterRpc(RpcQuickMatch, RpcQuickMatchFn); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNamePunto, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(engine), nil
	}); err != nil {
		return err
	}

	logger.Info("Punto Go module loaded.")
	return nil
}

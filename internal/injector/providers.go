package injector

import (
	"github.com/zeusync/simcore/internal/config"
	"github.com/zeusync/simcore/internal/core/observability/log"
	"github.com/zeusync/simcore/internal/server"
	"github.com/zeusync/simcore/internal/sim"
)

// ProvideLogger builds the logger from the configured level.
func ProvideLogger(cfg config.Config) *log.Logger {
	return log.New(log.ParseLevel(cfg.LogLevel))
}

// ProvideServer wires the diagnostics server to a simulation.
func ProvideServer(cfg config.Config, s *sim.Simulation, logger *log.Logger) *server.Server {
	return server.New(cfg.Diag, s, logger)
}

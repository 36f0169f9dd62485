//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/simcore/internal/config"
	"github.com/zeusync/simcore/internal/server"
	"github.com/zeusync/simcore/internal/sim"
)

// InitializeSimulation assembles a simulation instance from its
// configuration.
func InitializeSimulation(cfg config.Config) (*sim.Simulation, error) {
	wire.Build(ProvideLogger, sim.New)
	return nil, nil
}

// InitializeServer assembles the diagnostics server for a simulation.
func InitializeServer(cfg config.Config, s *sim.Simulation) *server.Server {
	wire.Build(ProvideLogger, ProvideServer)
	return nil
}

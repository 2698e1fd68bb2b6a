//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/trivago/boerewors/common/logger"
)

func MakeLogFactory(config *Config) (logger.LogFactory, error) {
	registry := logger.NewLogRegistryFromVerbosity(config.Verbose)
	if config.LogLevels != "" {
		override, err := logger.NewLogRegistry(config.LogLevels)
		if err != nil {
			return nil, err
		}
		registry = override
	}
	return logger.MakeLogrusLogFactoryStdOut(registry), nil
}

// New wires a full App from a parsed Config: a log factory derived from
// the verbosity flag (or from --log_levels when set), the HCL pipeline it names, an executor around that
// pipeline and, when configured, a status server.
func New(config *Config) (*App, error) {
	panic(wire.Build(
		MakeLogFactory,
		LoadPipeline,
		NewStatusServer,
		newApp,
	))
}

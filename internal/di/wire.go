//go:build wireinject
// +build wireinject

package di

import (
	"SimPulse/pkg/config"
	"SimPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisClient,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideDealStore,
		ProvideSignalLog,
		ProvideConfigStore,
		ProvideTickArchive,

		// Streaming surfaces
		ProvideHub,
		ProvideTickPipeline,
		ProvideKafkaTicksHandler,

		// Use cases and API
		ProvideEngine,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

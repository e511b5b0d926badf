//go:build wireinject
// +build wireinject

package di

import (
	"TradePulse/pkg/config"
	"TradePulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideMetrics,
		ProvideLogger,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideCache,
		ProvideClickHouseClient,
		ProvideQueue,

		// Market data
		ProvideLatestStore,
		ProvideMarketStream,
		ProvideSamplesHandler,

		// Collaborators
		ProvideForecaster,
		ProvideNotifier,
		ProvideArchive,

		// Engine
		ProvidePipeline,
		ProvideEngineHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

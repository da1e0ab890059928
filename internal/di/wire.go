//go:build wireinject
// +build wireinject

package di

import (
	"AtlasQuant/pkg/config"
	"AtlasQuant/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvideLedgerStore,
		ProvideUniverseStore,
		ProvideDecisionPublisher,
		ProvideBarSource,

		// Execution
		ProvideBroker,
		ProvideSafetyGate,

		// Use cases
		ProvideAnalyzer,
		ProvideOrderService,
		ProvideScreener,
		ProvideTapeCollector,

		// HTTP and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}

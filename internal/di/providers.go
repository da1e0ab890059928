package di

import (
	"context"
	"fmt"
	"time"

	drepo "AtlasQuant/internal/domain/repository"
	"AtlasQuant/internal/handler/api"
	mid "AtlasQuant/internal/middleware"
	internalrepo "AtlasQuant/internal/repository"
	"AtlasQuant/internal/service/ratelimit"
	"AtlasQuant/internal/services/analytics"
	"AtlasQuant/internal/services/execution"
	"AtlasQuant/internal/services/marketdata"
	"AtlasQuant/internal/usecase"
	"AtlasQuant/pkg/cache"
	pkgch "AtlasQuant/pkg/clickhouse"
	"AtlasQuant/pkg/config"
	xhttp "AtlasQuant/pkg/http"
	pkgkafka "AtlasQuant/pkg/kafka"
	"AtlasQuant/pkg/logger"
	"AtlasQuant/pkg/metrics"
	"AtlasQuant/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the
// database exists. Table DDL lives with the stores.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideLedgerStore creates the order ledger store and its table.
func ProvideLedgerStore(chClient *pkgch.Client, cfg *config.Config) (drepo.LedgerStore, error) {
	store := internalrepo.NewClickHouseLedger(chClient.DB(), cfg.ClickHouse.LedgerTable)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("ledger schema: %w", err)
	}
	return store, nil
}

// ProvideUniverseStore creates the instrument catalog store and its table.
func ProvideUniverseStore(chClient *pkgch.Client, cfg *config.Config) (drepo.UniverseStore, error) {
	store := internalrepo.NewClickHouseUniverse(chClient.DB(), cfg.ClickHouse.UniverseTable)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("universe schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideDecisionPublisher creates the Kafka decision publisher, or nil
// when the producer is disabled. Use cases tolerate a nil publisher.
func ProvideDecisionPublisher(producer *pkgkafka.Producer, cfg *config.Config) drepo.DecisionPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaDecisions(producer, cfg.Kafka.ReportTopic, cfg.Kafka.IntentTopic)
}

// ProvideCache creates the cache service: layered over Redis when Redis is
// enabled, in-process memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(redisCache), nil
}

// ProvideBarSource creates the daily bar source with a cache layer in front.
func ProvideBarSource(cfg *config.Config, c cache.Service, log *logger.Logger) (drepo.BarSource, error) {
	client, err := marketdata.NewClient(cfg.MarketDataConfig(), log)
	if err != nil {
		return nil, err
	}
	return marketdata.NewCachedSource(client, c, cfg.MarketData.CacheTTL, log), nil
}

// ProvideTapeCollector wires the live tape: stream, validation and throttle
// pipeline, last-price sink. Returns nil when the tape is disabled.
func ProvideTapeCollector(cfg *config.Config, m drepo.Metrics, c cache.Service, log *logger.Logger) *usecase.TapeCollector {
	if !cfg.Tape.Enabled {
		return nil
	}
	stream := marketdata.NewStream(cfg.TapeStreamConfig(), log)
	sink := usecase.NewLastPriceSink(m, c, cfg.Tape.LastPriceTTL)
	pipe := mid.NewTapePipeline(sink, m,
		mid.WithMaxRPS(cfg.Tape.MaxRPS),
		mid.WithBufferSize(cfg.Tape.BufferSize),
	)
	return usecase.NewTapeCollector(stream, pipe, m)
}

// ProvideAnalyzer creates the analysis use case from the risk config.
func ProvideAnalyzer(
	source drepo.BarSource,
	publisher drepo.DecisionPublisher,
	m drepo.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) (*usecase.Analyzer, error) {
	scores, err := analytics.NewScoreEngine(cfg.Risk.Weights)
	if err != nil {
		return nil, err
	}
	sim := analytics.NewRuinSimulator(nil)
	return usecase.NewAnalyzer(source, scores, sim, cfg.Risk.Profiles, cfg.Risk.RuinThresholdPct, publisher, m, log)
}

// ProvideBroker creates the paper execution venue.
func ProvideBroker() drepo.Broker {
	return execution.NewPaperBroker()
}

// ProvideSafetyGate creates the pre-trade safety gate.
func ProvideSafetyGate(cfg *config.Config, ledger drepo.LedgerStore, broker drepo.Broker) (*execution.SafetyGate, error) {
	return execution.NewSafetyGate(cfg.Safety, ledger, broker, nil)
}

// ProvideOrderService creates the order submission flow.
func ProvideOrderService(
	analyzer *usecase.Analyzer,
	gate *execution.SafetyGate,
	ledger drepo.LedgerStore,
	publisher drepo.DecisionPublisher,
	m drepo.Metrics,
	log *logger.Logger,
) *usecase.OrderService {
	return usecase.NewOrderService(analyzer, gate, ledger, publisher, m, log)
}

// ProvideScreener creates the universe screener with its own rate limiter.
func ProvideScreener(
	universe drepo.UniverseStore,
	source drepo.BarSource,
	m drepo.Metrics,
	log *logger.Logger,
) *usecase.Screener {
	return usecase.NewScreener(universe, source, ratelimit.New(), m, log)
}

// ProvideHandler creates the HTTP handler for the decision API.
func ProvideHandler(
	log *logger.Logger,
	analyzer *usecase.Analyzer,
	orders *usecase.OrderService,
	screener *usecase.Screener,
	ledger drepo.LedgerStore,
	universe drepo.UniverseStore,
	tape *usecase.TapeCollector,
) xhttp.Handler {
	return api.NewDecisionsHandler(log, analyzer, orders, screener, ledger, universe, tape)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handler xhttp.Handler,
	tape *usecase.TapeCollector,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
) *server.App {
	return server.New(cfg, log, handler, tape, chClient, producer)
}

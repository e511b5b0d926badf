package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"TradePulse/internal/domain/repository"
	dservice "TradePulse/internal/domain/service"
	"TradePulse/internal/handler/api"
	internalrepo "TradePulse/internal/repository"
	"TradePulse/internal/service/marketws"
	"TradePulse/internal/service/notify"
	"TradePulse/internal/services/forecast"
	"TradePulse/internal/services/risk"
	"TradePulse/internal/usecase"
	"TradePulse/pkg/cache"
	pkgch "TradePulse/pkg/clickhouse"
	"TradePulse/pkg/config"
	pkgkafka "TradePulse/pkg/kafka"
	applogger "TradePulse/pkg/logger"
	"TradePulse/pkg/metrics"
	"TradePulse/pkg/queue"
	"TradePulse/pkg/server"
)

// ProvideLogger creates the application logger. When Kafka is
// configured, repeated error logs are aggregated and published to the
// logs topic.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil && cfg.Kafka.LogsTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      internalrepo.NewLogPublisher(producer),
		})
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideKafkaProducer creates a Kafka producer, or nil when no brokers
// are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
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

// ProvideKafkaConsumer creates the samples consumer for kafka source
// mode, nil otherwise.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Source.Mode != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideLatestStore creates the latest-sample store both source modes
// feed into.
func ProvideLatestStore(cfg *config.Config) *marketws.LatestStore {
	return marketws.NewLatestStore(cfg.Source.MaxSampleAge)
}

// ProvideMarketStream creates the WebSocket stream client for
// websocket source mode, nil otherwise.
func ProvideMarketStream(cfg *config.Config, store *marketws.LatestStore) *marketws.Client {
	if cfg.Source.Mode != "websocket" {
		return nil
	}
	return marketws.NewClient(
		cfg.Source.WebSocketURL,
		cfg.Engine.Pairs,
		store,
		cfg.Source.ReconnectDelay,
		cfg.Source.PingInterval,
	)
}

// ProvideSamplesHandler registers the handler for the samples topic.
func ProvideSamplesHandler(store *marketws.LatestStore, m repository.Metrics, cfg *config.Config) *usecase.KafkaSamplesHandler {
	return usecase.NewKafkaSamplesHandler(cfg.Kafka.SamplesTopic, store, m)
}

// ProvideRedisCache connects the Redis cache layer, nil when disabled.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	host, port := splitHostPort(cfg.Redis.Addr)
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCache builds the forecast cache: layered memory+Redis when
// Redis is available, memory only otherwise.
func ProvideCache(rc *cache.RedisCache) cache.Service {
	if rc == nil {
		return cache.NewMemoryCache()
	}
	return cache.NewLayeredCache(rc)
}

func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}

// ProvideForecaster builds the HTTP forecaster with caching, or nil
// when no service is configured (the pipeline degrades to trend-only).
func ProvideForecaster(cfg *config.Config, c cache.Service) dservice.Forecaster {
	if cfg.Forecast.ServiceURL == "" {
		return nil
	}
	inner := forecast.NewHTTPForecaster(cfg.Forecast.ServiceURL, cfg.Forecast.Timeout)
	return forecast.NewCachedForecaster(inner, c, cfg.Forecast.CacheTTL)
}

// ProvideQueue creates the Redis-backed notification queue for queue
// notify mode, nil otherwise.
func ProvideQueue(cfg *config.Config, rc *cache.RedisCache, l *applogger.Logger) *queue.RedisQueue {
	if cfg.Notify.Mode != "queue" || rc == nil {
		return nil
	}
	return queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Redis.Queue.Workers,
		QueueSize:  cfg.Redis.Queue.QueueSize,
		RetryLimit: cfg.Redis.Queue.RetryLimit,
		RetryDelay: cfg.Redis.Queue.RetryDelay,
	}, rc.Client(), queue.ModeProducerConsumer, queue.WithKeyPrefix("tradepulse:queue"))
}

// ProvideNotifier selects the signal delivery path by notify mode.
func ProvideNotifier(cfg *config.Config, producer *pkgkafka.Producer, q *queue.RedisQueue, l *applogger.Logger) (repository.Notifier, error) {
	switch cfg.Notify.Mode {
	case "kafka":
		if producer == nil {
			return nil, fmt.Errorf("kafka notify mode requires brokers")
		}
		return internalrepo.NewKafkaNotifier(producer, cfg.Kafka.SignalsTopic), nil
	case "queue":
		if q == nil {
			return nil, fmt.Errorf("queue notify mode requires redis")
		}
		q.RegisterJob(notify.NewSignalJob(internalrepo.SignalJobType, nil, l))
		return internalrepo.NewQueueNotifier(q), nil
	default:
		return internalrepo.NewLogNotifier(l), nil
	}
}

// ProvideClickHouseClient creates a ClickHouse client when archiving is
// enabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
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
	if err := client.InitSchema(context.Background(), []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.ClickHouse.Database),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideArchive creates the signal archive, nil when ClickHouse is
// disabled.
func ProvideArchive(client *pkgch.Client, cfg *config.Config) (repository.SignalArchive, error) {
	if client == nil {
		return nil, nil
	}
	archive := internalrepo.NewClickHouseArchive(client.DB(), cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
	if err := archive.Init(context.Background()); err != nil {
		return nil, err
	}
	return archive, nil
}

// ProvidePipeline assembles the signal pipeline.
func ProvidePipeline(
	cfg *config.Config,
	store *marketws.LatestStore,
	forecaster dservice.Forecaster,
	notifier repository.Notifier,
	archive repository.SignalArchive,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SignalPipeline {
	return usecase.NewSignalPipeline(usecase.PipelineConfig{
		Pairs:             cfg.Engine.Pairs,
		TickInterval:      cfg.Engine.TickInterval,
		RetentionHorizon:  cfg.Engine.RetentionHorizon,
		MinUpdateInterval: cfg.Engine.MinUpdateInterval,
		MinPoints:         cfg.Engine.MinPoints,
		TrendEpsilon:      cfg.Engine.TrendEpsilon,
		MinStrengthPct:    cfg.Engine.MinStrengthPct,
		MinProfitPct:      cfg.Engine.MinProfitPct,
		BaseTpPct:         cfg.Engine.BaseTpPct,
		MaxTpMultiplier:   cfg.Engine.MaxTpMultiplier,
		MinGapPct:         cfg.Engine.MinGapPct,
		EmissionThreshold: cfg.Engine.EmissionThreshold,
		ActiveThreshold:   cfg.Engine.ActiveThreshold,
		EmitBurst:         cfg.Engine.EmitBurst,
		EmitPerMinute:     cfg.Engine.EmitPerMinute,
	}, store, forecaster, notifier, archive, m, risk.NewAnalyzer(0), l)
}

// ProvideEngineHandler creates the HTTP handler for the query surface.
func ProvideEngineHandler(l *applogger.Logger, pipeline *usecase.SignalPipeline) *api.EngineHandler {
	return api.NewEngineHandler(l, pipeline)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.SignalPipeline,
	handler *api.EngineHandler,
	stream *marketws.Client,
	consumer *pkgkafka.Consumer,
	samples *usecase.KafkaSamplesHandler,
	q *queue.RedisQueue,
	chClient *pkgch.Client,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, l, pipeline, handler, stream, consumer, samples, q, chClient)
}

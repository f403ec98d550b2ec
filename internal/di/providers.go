package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"SimPulse/internal/domain/repository"
	"SimPulse/internal/handler/api"
	mid "SimPulse/internal/middleware"
	internalrepo "SimPulse/internal/repository"
	"SimPulse/internal/service/stream"
	"SimPulse/internal/usecase"
	pkgch "SimPulse/pkg/clickhouse"
	"SimPulse/pkg/config"
	xhttp "SimPulse/pkg/http"
	pkgkafka "SimPulse/pkg/kafka"
	applogger "SimPulse/pkg/logger"
	"SimPulse/pkg/metrics"
	"SimPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "console"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideRedisClient connects to Redis, or returns nil when disabled.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return cli, nil
}

// ProvideDealStore creates the Redis deal store (nil without Redis; the
// engine then runs in disabled mode).
func ProvideDealStore(cli *redis.Client) repository.DealStore {
	if cli == nil {
		return nil
	}
	return internalrepo.NewRedisDealStore(cli)
}

// ProvideSignalLog creates the Redis forecast log (nil without Redis).
func ProvideSignalLog(cli *redis.Client) repository.SignalLog {
	if cli == nil {
		return nil
	}
	return internalrepo.NewRedisSignalLog(cli)
}

// ProvideConfigStore creates the Redis operator-config store (nil without
// Redis).
func ProvideConfigStore(cli *redis.Client) repository.ConfigStore {
	if cli == nil {
		return nil
	}
	return internalrepo.NewRedisConfigStore(cli)
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the tick
// archive schema, or returns nil when disabled.
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.ClickHouse.Database),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (ts DateTime64(3), symbol String, price Float64, volume Float64, regime String, mode String) ENGINE=MergeTree ORDER BY (symbol, ts)", cfg.ClickHouse.Table),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideTickArchive creates the ClickHouse tick archive (nil without
// ClickHouse).
func ProvideTickArchive(chClient *pkgch.Client, cfg *config.Config) repository.TickArchive {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseTickArchive(chClient.DB(), cfg.ClickHouse.Table)
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

// ProvideKafkaConsumer creates the archive-side consumer. Only built when
// both Kafka and ClickHouse are enabled; there is nothing to consume into
// otherwise.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.ClickHouse.Enabled {
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
	consumer.WithConsumerHook(pkgkafka.NoopHook{})
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideTickPipeline builds the fan-out pipeline between the engine and the
// Kafka topic (nil without a producer).
func ProvideTickPipeline(producer *pkgkafka.Producer, m repository.Metrics, cfg *config.Config) *mid.TickPipeline {
	if producer == nil {
		return nil
	}
	rps := cfg.Engine.PipelineRPS
	if rps <= 0 {
		rps = 5
	}
	sink := internalrepo.NewKafkaTickPublisher(producer, cfg.Kafka.Topic)
	return mid.NewTickPipeline(sink, m,
		mid.WithMaxRPS(rps),
		mid.WithBufferSize(2000),
	)
}

// ProvideKafkaTicksHandler builds the consumer-side archive writer (nil
// without an archive).
func ProvideKafkaTicksHandler(archive repository.TickArchive, m repository.Metrics, cfg *config.Config) pkgkafka.MessageHandler {
	if archive == nil {
		return nil
	}
	return usecase.NewKafkaTicksHandler(cfg.Kafka.Topic, archive, m)
}

// ProvideHub creates the observer broadcast hub.
func ProvideHub(log *applogger.Logger) *stream.Hub {
	return stream.NewHub(log)
}

// ProvideEngine assembles the simulation engine.
func ProvideEngine(
	cfg *config.Config,
	log *applogger.Logger,
	deals repository.DealStore,
	signals repository.SignalLog,
	cfgStore repository.ConfigStore,
	hub *stream.Hub,
	m repository.Metrics,
	pipe *mid.TickPipeline,
) *usecase.Engine {
	return usecase.NewEngine(usecase.EngineDeps{
		Logger:  log,
		Deals:   deals,
		Signals: signals,
		Config:  cfgStore,
		Bus:     hub,
		Metrics: m,
		Pipe:    pipe,
		Seed:    cfg.Engine.Seed,
	}, cfg.Engine.HorizonSec)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(engine *usecase.Engine, deals repository.DealStore, hub *stream.Hub, log *applogger.Logger) xhttp.Handler {
	return api.NewEngineHandler(engine, deals, hub, log)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	engine *usecase.Engine,
	pipe *mid.TickPipeline,
	hub *stream.Hub,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	handler xhttp.Handler,
	redisCli *redis.Client,
	producer *pkgkafka.Producer,
) *server.App {
	app := server.New(cfg, log, engine, pipe, hub, consumer, kh, chClient, handler)
	if redisCli != nil {
		// stores share this client; close it once
		app.AddCloser(redisCli.Close)
	}
	if producer != nil && cfg.Kafka.LogsTopic != "" {
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      kafkaLogSink{producer},
		})
		app.AddCloser(func() error {
			log.RemoveCollector()
			return nil
		})
	}
	return app
}

// kafkaLogSink adapts the producer to the log collector's publisher.
type kafkaLogSink struct {
	p *pkgkafka.Producer
}

func (s kafkaLogSink) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return s.p.Publish(ctx, topic, nil, payload)
}

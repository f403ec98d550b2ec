package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mid "SimPulse/internal/middleware"
	"SimPulse/internal/service/stream"
	"SimPulse/internal/usecase"
	pkgch "SimPulse/pkg/clickhouse"
	"SimPulse/pkg/config"
	xhttp "SimPulse/pkg/http"
	pkgkafka "SimPulse/pkg/kafka"
	applogger "SimPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle: simulation engine, tick
// pipeline, Kafka consumer, HTTP server and infrastructure clients.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	engine     *usecase.Engine
	pipeline   *mid.TickPipeline
	hub        *stream.Hub
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	chClient   *pkgch.Client
	httpServer *xhttp.Server
	handler    xhttp.Handler
	closers    []func() error
}

// New creates the App. Consumer, handler, pipeline and clickhouse client may
// be nil when their backing services are disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	engine *usecase.Engine,
	pipeline *mid.TickPipeline,
	hub *stream.Hub,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		engine:   engine,
		pipeline: pipeline,
		hub:      hub,
		consumer: consumer,
		kh:       kh,
		chClient: chClient,
		handler:  handler,
	}
}

// AddCloser registers an extra resource to close on shutdown.
func (a *App) AddCloser(fn func() error) { a.closers = append(a.closers, fn) }

// Run starts everything and blocks until SIGINT/SIGTERM.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.pipeline != nil {
		a.pipeline.Start(ctx)
	}

	go func() {
		if err := a.engine.Run(ctx); err != nil {
			a.log.Error("engine error", applogger.Error(err))
		}
	}()

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel() // stops the engine loop
	return a.shutdown(context.Background())
}

// shutdown stops services in dependency order: HTTP in, engine, pipeline,
// consumer, then infrastructure clients.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.hub != nil {
		a.hub.Close()
	}

	if a.pipeline != nil {
		a.pipeline.Stop()
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.log.Warn("resource close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}

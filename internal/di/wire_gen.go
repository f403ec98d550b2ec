// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"SimPulse/pkg/config"
	"SimPulse/pkg/server"
)

// Injectors from wire.go:

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	client, err := ProvideRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	dealStore := ProvideDealStore(client)
	signalLog := ProvideSignalLog(client)
	configStore := ProvideConfigStore(client)
	hub := ProvideHub(logger)
	metrics := ProvideMetrics()
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	tickPipeline := ProvideTickPipeline(producer, metrics, cfg)
	engine := ProvideEngine(cfg, logger, dealStore, signalLog, configStore, hub, metrics, tickPipeline)
	consumer, err := ProvideKafkaConsumer(cfg)
	if err != nil {
		return nil, err
	}
	clickhouseClient, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	tickArchive := ProvideTickArchive(clickhouseClient, cfg)
	messageHandler := ProvideKafkaTicksHandler(tickArchive, metrics, cfg)
	handler := ProvideHTTPHandler(engine, dealStore, hub, logger)
	app := ProvideApp(cfg, logger, engine, tickPipeline, hub, consumer, messageHandler, clickhouseClient, handler, client, producer)
	return app, nil
}

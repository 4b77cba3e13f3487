package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"binancecollector/config"
	"binancecollector/internal/binance/collector"
	"binancecollector/internal/telemetry"
	"binancecollector/logger"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	// secrets from SSM in prod
	if cfg.Log.Environment == "prod" {
		params, err := config.NewParameterStore(ctx)
		if err != nil {
			log.Fatal("failed to init parameter store", zap.Error(err))
		}
		if err := cfg.ResolveSecrets(ctx, params); err != nil {
			log.Fatal("failed to resolve secrets", zap.Error(err))
		}
	}

	// otel metrics
	tel, err := telemetry.NewProvider(ctx, cfg.Telemetry, cfg.Log.Environment)
	if err != nil {
		log.Fatal("failed to init telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	// run collector
	if err := collector.Run(ctx, cfg, log, tel.Meter("binancecollector/collector")); err != nil {
		log.Error("collector failed", zap.Error(err))
		return
	}
}

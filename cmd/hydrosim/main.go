// v3
// cmd/hydrosim/main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/GiuBlockchainDEV/hydrosim/internal/api"
	"github.com/GiuBlockchainDEV/hydrosim/internal/breaker"
	"github.com/GiuBlockchainDEV/hydrosim/internal/config"
	"github.com/GiuBlockchainDEV/hydrosim/internal/engine"
	"github.com/GiuBlockchainDEV/hydrosim/internal/identity"
	"github.com/GiuBlockchainDEV/hydrosim/internal/logging"
	"github.com/GiuBlockchainDEV/hydrosim/internal/metrics"
	"github.com/GiuBlockchainDEV/hydrosim/internal/registry"
	"github.com/GiuBlockchainDEV/hydrosim/internal/runner"
	"github.com/GiuBlockchainDEV/hydrosim/internal/sink"
)

func main() {
	_ = godotenv.Load()

	logger := logging.Init("hydrosim")
	logger.Info("hydroponic simulator starting")

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("config error", "err", err)
		os.Exit(1)
	}

	dev, err := identity.Resolve(cfg.DeviceID, cfg.DeviceKey, cfg.IdentityPath, logger)
	if err != nil {
		logger.Error("identity error", "err", err)
		os.Exit(1)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	logger.Info("generator seeded", "variant", cfg.Variant, "seed", seed)

	gen, err := engine.New(engine.Variant(cfg.Variant), registry.Default(), rng)
	if err != nil {
		logger.Error("engine error", "err", err)
		os.Exit(1)
	}

	m := metrics.New()

	snk, err := buildSinks(cfg, logger, m)
	if err != nil {
		logger.Error("sink error", "err", err)
		os.Exit(1)
	}

	hub := api.NewHub(logger)

	run, err := runner.New(logger, gen, snk, m, hub, runner.Options{
		Variant:   cfg.Variant,
		DeviceID:  dev.DeviceID,
		DeviceKey: dev.Key,
		Duration:  time.Duration(cfg.DurationHours) * time.Hour,
		Interval:  time.Duration(cfg.IntervalMinutes) * time.Minute,
	})
	if err != nil {
		logger.Error("runner error", "err", err)
		os.Exit(1)
	}

	srv := api.NewServer(cfg.ListenAddr, logger, run, m, hub)
	srv.Start()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run.Run(ctx); err != nil {
		logger.Error("simulation error", "err", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}
	if err := snk.Close(); err != nil {
		logger.Warn("sink close", "err", err)
	}
	logger.Info("shutdown complete")
}

// buildSinks constructs every configured backend, wraps each in its own
// circuit breaker and fans publishes out across them.
func buildSinks(cfg config.Config, log *slog.Logger, m *metrics.Metrics) (sink.Sink, error) {
	brkCfg := breaker.Config{
		MaxFailures:  cfg.BreakerMaxFailures,
		ResetTimeout: cfg.BreakerResetTimeout,
	}

	var sinks []sink.Sink
	for _, name := range cfg.Sinks {
		var (
			s   sink.Sink
			err error
		)
		switch name {
		case "gateway":
			s, err = sink.NewGatewaySink(cfg.GatewayURL, cfg.GatewayTimeout)
		case "kafka":
			s, err = sink.NewKafkaSink(sink.KafkaConfig{
				Brokers: cfg.KafkaBrokers,
				Topic:   cfg.KafkaTopic,
				Acks:    cfg.KafkaAcks,
			})
		case "mqtt":
			s, err = sink.NewMqttSink(cfg.MqttBroker, cfg.MqttClientID, cfg.MqttTopic)
		case "influx":
			s, err = sink.NewInfluxSink(sink.InfluxConfig{
				URL:    cfg.InfluxURL,
				Token:  cfg.InfluxToken,
				Org:    cfg.InfluxOrg,
				Bucket: cfg.InfluxBucket,
			})
		case "redis":
			s, err = sink.NewRedisSink(sink.RedisConfig{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
				TTL:      cfg.RedisTTL,
			})
		case "journal":
			s, err = sink.NewJournalSink(cfg.JournalPath)
		default:
			err = fmt.Errorf("unknown sink %q", name)
		}
		if err != nil {
			return nil, fmt.Errorf("build %s sink: %w", name, err)
		}
		log.Info("sink ready", "sink", name)
		sinks = append(sinks, sink.Guard(s, breaker.New(name, brkCfg, log)))
	}
	return sink.NewFanout(log, m, sinks...), nil
}

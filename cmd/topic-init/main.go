// v1
// cmd/topic-init/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	defaultLogPath = "/var/log/topic-init/topic-init.log"
	defaultTopic   = "hydro.telemetry"
)

type config struct {
	brokers     []string
	topic       string
	partitions  int
	replication int
	logPath     string
}

func main() {
	cfg := loadConfig()
	logger, logFile := setupLogger(cfg.logPath)
	defer func() {
		if logFile != nil {
			if err := logFile.Close(); err != nil {
				logger.Warn("logfile_close", "err", err)
			}
		}
	}()
	logger.Info("topic_init_start",
		"brokers", cfg.brokers,
		"topic", cfg.topic,
		"partitions", cfg.partitions,
		"replication", cfg.replication,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := ensureTelemetryTopic(ctx, logger, cfg); err != nil {
		logger.Error("topic_init_failed", "err", err)
		os.Exit(1)
	}
	logger.Info("topic_init_complete", "topic", cfg.topic, "partitions", cfg.partitions)
}

func loadConfig() config {
	brokersFlag := flag.String("brokers", getenv("KAFKA_BROKERS", ""), "Comma-separated list of Kafka brokers")
	topicFlag := flag.String("topic", getenv("KAFKA_TOPIC", defaultTopic), "Telemetry topic name")
	partitionsFlag := flag.Int("partitions", geti("TOPIC_INIT_PARTITIONS", 3), "Partition count for the telemetry topic")
	replFlag := flag.Int("replication", geti("TOPIC_INIT_REPLICATION", 1), "Replication factor for the telemetry topic")
	logPathFlag := flag.String("log", getenv("TOPIC_INIT_LOG", defaultLogPath), "Path for JSON log output")
	flag.Parse()

	cfg := config{
		brokers:     splitAndTrim(*brokersFlag),
		topic:       strings.TrimSpace(*topicFlag),
		partitions:  *partitionsFlag,
		replication: *replFlag,
		logPath:     *logPathFlag,
	}
	if len(cfg.brokers) == 0 {
		fmt.Println("KAFKA_BROKERS or --brokers must be provided")
		os.Exit(2)
	}
	if cfg.topic == "" {
		fmt.Println("KAFKA_TOPIC or --topic must be provided")
		os.Exit(2)
	}
	if cfg.partitions <= 0 {
		fmt.Println("TOPIC_INIT_PARTITIONS or --partitions must be at least 1")
		os.Exit(2)
	}
	if cfg.replication <= 0 {
		fmt.Println("TOPIC_INIT_REPLICATION or --replication must be positive")
		os.Exit(2)
	}
	return cfg
}

func setupLogger(path string) (*slog.Logger, *os.File) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		panic(err)
	}
	lf, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		panic(err)
	}
	handler := slog.NewJSONHandler(io.MultiWriter(os.Stdout, lf), &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler), lf
}

func ensureTelemetryTopic(ctx context.Context, log *slog.Logger, cfg config) error {
	broker := cfg.brokers[0]
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, err := kafka.DialContext(dialCtx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("dial broker %s: %w", broker, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Warn("broker_close", "err", cerr)
		}
	}()
	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("fetch controller metadata: %w", err)
	}
	ctrlAddr := fmt.Sprintf("%s:%d", controller.Host, controller.Port)
	ctrlCtx, ctrlCancel := context.WithTimeout(ctx, 10*time.Second)
	defer ctrlCancel()
	admin, err := kafka.DialContext(ctrlCtx, "tcp", ctrlAddr)
	if err != nil {
		return fmt.Errorf("dial controller %s: %w", ctrlAddr, err)
	}
	defer func() {
		if cerr := admin.Close(); cerr != nil {
			log.Warn("controller_close", "err", cerr)
		}
	}()
	if err := admin.SetDeadline(time.Now().Add(10 * time.Second)); err != nil {
		log.Warn("controller_deadline", "err", err)
	}

	topicCfg := kafka.TopicConfig{
		Topic:             cfg.topic,
		NumPartitions:     cfg.partitions,
		ReplicationFactor: cfg.replication,
	}
	if err := admin.CreateTopics(topicCfg); err != nil {
		if !isAlreadyExists(err) {
			return fmt.Errorf("create topic: %w", err)
		}
		log.Info("topic_exists", "topic", cfg.topic)
	} else {
		log.Info("topic_created", "topic", cfg.topic, "partitions", cfg.partitions, "replication", cfg.replication)
	}

	count, err := readPartitions(admin, cfg.topic)
	if err != nil {
		return err
	}
	if count != cfg.partitions {
		return fmt.Errorf("topic %s has %d partitions; expected %d", cfg.topic, count, cfg.partitions)
	}
	log.Info("topic_ready", "topic", cfg.topic, "partitions", count, "replication", cfg.replication)
	return nil
}

func readPartitions(conn *kafka.Conn, topic string) (int, error) {
	partitions, err := conn.ReadPartitions(topic)
	if err != nil {
		return 0, fmt.Errorf("read partitions for %s: %w", topic, err)
	}
	seen := map[int]struct{}{}
	for _, part := range partitions {
		if part.Topic != topic {
			continue
		}
		seen[part.ID] = struct{}{}
	}
	return len(seen), nil
}

func isAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "Topic with this name already exists")
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func geti(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

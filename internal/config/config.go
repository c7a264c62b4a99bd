// v2
// config.go

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GiuBlockchainDEV/hydrosim/internal/engine"
)

// Config collects everything the simulator needs at startup. Values are
// resolved in order: environment variable, properties file, default.
type Config struct {
	Variant         string
	Seed            int64
	DurationHours   int
	IntervalMinutes int
	ListenAddr      string

	DeviceID     string
	DeviceKey    string
	IdentityPath string

	Sinks []string

	GatewayURL     string
	GatewayTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string
	KafkaAcks    int

	MqttBroker   string
	MqttTopic    string
	MqttClientID string

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	JournalPath string

	BreakerMaxFailures  int
	BreakerResetTimeout time.Duration
}

var knownSinks = map[string]bool{
	"gateway": true,
	"kafka":   true,
	"mqtt":    true,
	"influx":  true,
	"redis":   true,
	"journal": true,
}

func loadProps(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load properties file: %w", err)
	}
	lines := strings.Split(string(b), "\n")
	m := map[string]string{}
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "#") || strings.HasPrefix(ln, "//") {
			continue
		}
		kv := strings.SplitN(ln, "=", 2)
		if len(kv) != 2 {
			continue
		}
		m[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return m, nil
}

func gets(m map[string]string, key, envKey, def string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return def
}

func geti(m map[string]string, key, envKey string, def int, log *slog.Logger) int {
	v := gets(m, key, envKey, "")
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	log.Warn("invalid integer in configuration, using default", "key", key, "val", v, "default", def)
	return def
}

func geti64(m map[string]string, key, envKey string, def int64, log *slog.Logger) int64 {
	v := gets(m, key, envKey, "")
	if v == "" {
		return def
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	log.Warn("invalid integer in configuration, using default", "key", key, "val", v, "default", def)
	return def
}

func getd(m map[string]string, key, envKey string, def time.Duration, log *slog.Logger) time.Duration {
	v := gets(m, key, envKey, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	log.Warn("invalid duration in configuration, using default", "key", key, "val", v, "default", def)
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Load resolves the configuration. The properties file named by
// HYDROSIM_PROPERTIES is optional; with no file and no environment
// overrides every default applies and the simulator journals locally.
func Load(log *slog.Logger) (Config, error) {
	props := map[string]string{}
	if path := os.Getenv("HYDROSIM_PROPERTIES"); path != "" {
		var err error
		props, err = loadProps(path)
		if err != nil {
			return Config{}, err
		}
		log.Info("properties loaded", "path", path, "keys", len(props))
	}

	cfg := Config{
		Variant:         gets(props, "variant", "SIM_VARIANT", string(engine.VariantCorrelated)),
		Seed:            geti64(props, "seed", "SIM_SEED", 0, log),
		DurationHours:   geti(props, "duration.hours", "SIM_DURATION_HOURS", 0, log),
		IntervalMinutes: geti(props, "interval.minutes", "SIM_INTERVAL_MINUTES", 5, log),
		ListenAddr:      gets(props, "listen_addr", "LISTEN_ADDR", ":8090"),

		DeviceID:     gets(props, "device.id", "DEVICE_ID", ""),
		DeviceKey:    gets(props, "device.key", "DEVICE_KEY", ""),
		IdentityPath: gets(props, "identity.path", "IDENTITY_PATH", "device_identity.json"),

		Sinks: splitCSV(gets(props, "sinks", "SINKS", "journal")),

		GatewayURL:     gets(props, "gateway.url", "GATEWAY_URL", ""),
		GatewayTimeout: getd(props, "gateway.timeout", "GATEWAY_TIMEOUT", 10*time.Second, log),

		KafkaBrokers: splitCSV(gets(props, "kafka.brokers", "KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:   gets(props, "kafka.topic", "KAFKA_TOPIC", "hydro.telemetry"),
		KafkaAcks:    geti(props, "kafka.acks", "KAFKA_ACKS", 1, log),

		MqttBroker:   gets(props, "mqtt.broker", "MQTT_BROKER", "tcp://localhost:1883"),
		MqttTopic:    gets(props, "mqtt.topic", "MQTT_TOPIC", "hydro/readings"),
		MqttClientID: gets(props, "mqtt.clientId", "MQTT_CLIENT_ID", "hydrosim"),

		InfluxURL:    gets(props, "influx.url", "INFLUX_URL", ""),
		InfluxToken:  gets(props, "influx.token", "INFLUX_TOKEN", ""),
		InfluxOrg:    gets(props, "influx.org", "INFLUX_ORG", ""),
		InfluxBucket: gets(props, "influx.bucket", "INFLUX_BUCKET", ""),

		RedisAddr:     gets(props, "redis.addr", "REDIS_ADDR", "localhost:6379"),
		RedisPassword: gets(props, "redis.password", "REDIS_PASSWORD", ""),
		RedisDB:       geti(props, "redis.db", "REDIS_DB", 0, log),
		RedisTTL:      getd(props, "redis.ttl", "REDIS_TTL", 5*time.Minute, log),

		JournalPath: gets(props, "journal.path", "JOURNAL_PATH", "readings.ndjson"),

		BreakerMaxFailures:  geti(props, "breaker.maxFailures", "BREAKER_MAX_FAILURES", 5, log),
		BreakerResetTimeout: getd(props, "breaker.resetTimeout", "BREAKER_RESET_TIMEOUT", 30*time.Second, log),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch engine.Variant(c.Variant) {
	case engine.VariantCorrelated, engine.VariantIndependent:
	default:
		return fmt.Errorf("unknown variant %q", c.Variant)
	}
	if c.IntervalMinutes <= 0 {
		return fmt.Errorf("interval must be positive, got %d", c.IntervalMinutes)
	}
	if c.DurationHours < 0 {
		return fmt.Errorf("duration cannot be negative, got %d", c.DurationHours)
	}
	if len(c.Sinks) == 0 {
		return fmt.Errorf("at least one sink is required")
	}
	for _, s := range c.Sinks {
		if !knownSinks[s] {
			return fmt.Errorf("unknown sink %q", s)
		}
	}
	return nil
}

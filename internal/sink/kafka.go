// v2
// kafka.go

package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

// messageWriter is the slice of kafka.Writer the sink needs; tests
// substitute a recording fake.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	Acks    int
}

// KafkaSink publishes snapshot envelopes to a telemetry topic, keyed by
// device id so one device's readings stay on one partition.
type KafkaSink struct {
	writer    messageWriter
	closeFunc func() error
}

func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequiredAcks(cfg.Acks),
	}
	return &KafkaSink{writer: w, closeFunc: w.Close}, nil
}

func newKafkaSinkWithWriter(w messageWriter) *KafkaSink {
	return &KafkaSink{writer: w, closeFunc: func() error { return nil }}
}

func (k *KafkaSink) Name() string { return "kafka" }

func (k *KafkaSink) Publish(ctx context.Context, deviceID, deviceKey string, at time.Time, snap models.Snapshot) Result {
	_ = deviceKey
	value, err := json.Marshal(Envelope{DeviceID: deviceID, SentAt: at, Readings: snap})
	if err != nil {
		return fail(fmt.Errorf("encode envelope: %w", err))
	}
	msg := kafka.Message{
		Key:   []byte(deviceID),
		Value: value,
		Time:  at,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fail(fmt.Errorf("write message: %w", err))
	}
	return ok("")
}

func (k *KafkaSink) Close() error {
	return k.closeFunc()
}

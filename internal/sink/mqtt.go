package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

// MqttSink publishes snapshot envelopes to an MQTT broker at QoS 1.
type MqttSink struct {
	client mqtt.Client
	topic  string
}

func NewMqttSink(brokerAddr, clientID, topic string) (*MqttSink, error) {
	if brokerAddr == "" {
		return nil, fmt.Errorf("mqtt broker address is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("mqtt topic is required")
	}
	opts := mqtt.NewClientOptions().AddBroker(brokerAddr).SetClientID(clientID)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", brokerAddr, err)
	}
	return &MqttSink{client: client, topic: topic}, nil
}

func newMqttSinkWithClient(client mqtt.Client, topic string) *MqttSink {
	return &MqttSink{client: client, topic: topic}
}

func (m *MqttSink) Name() string { return "mqtt" }

func (m *MqttSink) Publish(ctx context.Context, deviceID, deviceKey string, at time.Time, snap models.Snapshot) Result {
	_ = ctx
	_ = deviceKey
	payload, err := json.Marshal(Envelope{DeviceID: deviceID, SentAt: at, Readings: snap})
	if err != nil {
		return fail(fmt.Errorf("encode envelope: %w", err))
	}
	token := m.client.Publish(m.topic, 1, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fail(fmt.Errorf("publish to %s: %w", m.topic, err))
	}
	return ok("")
}

func (m *MqttSink) Close() error {
	m.client.Disconnect(250)
	return nil
}

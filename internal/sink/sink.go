// v2
// sink.go

// Package sink delivers generated snapshots to the configured backends.
// Every backend implements the same Sink interface so the runner can
// treat a single gateway and a fanout of six destinations identically.
package sink

import (
	"context"
	"time"

	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

// Result reports one delivery attempt. Data carries whatever the
// backend echoed on success and is informational only.
type Result struct {
	Success bool
	Data    string
	Err     error
}

// Sink publishes a snapshot on behalf of a device.
type Sink interface {
	Name() string
	Publish(ctx context.Context, deviceID, deviceKey string, at time.Time, snap models.Snapshot) Result
	Close() error
}

// Envelope is the JSON document shared by the queue, cache and journal
// backends.
type Envelope struct {
	DeviceID string          `json:"deviceId"`
	SentAt   time.Time       `json:"sentAt"`
	Readings models.Snapshot `json:"readings"`
}

func ok(data string) Result {
	return Result{Success: true, Data: data}
}

func fail(err error) Result {
	return Result{Success: false, Err: err}
}

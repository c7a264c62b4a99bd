// v2
// gateway.go

package sink

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

// addReadingRequest mirrors the gateway's ingestion contract: the
// payload is a flat text encoding, not nested JSON.
type addReadingRequest struct {
	DeviceID  string `json:"deviceId"`
	DeviceKey string `json:"deviceKey"`
	Method    string `json:"method"`
	Payload   string `json:"payload"`
}

// GatewaySink posts snapshots to the ingestion gateway over HTTP.
type GatewaySink struct {
	client *resty.Client
	url    string
}

func NewGatewaySink(baseURL string, timeout time.Duration) (*GatewaySink, error) {
	if baseURL == "" {
		return nil, errors.New("gateway url is required")
	}
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &GatewaySink{
		client: client,
		url:    strings.TrimRight(baseURL, "/") + "/readings",
	}, nil
}

func (g *GatewaySink) Name() string { return "gateway" }

func (g *GatewaySink) Publish(ctx context.Context, deviceID, deviceKey string, at time.Time, snap models.Snapshot) Result {
	_ = at
	body := addReadingRequest{
		DeviceID:  deviceID,
		DeviceKey: deviceKey,
		Method:    "addReading",
		Payload:   EncodeReadings(snap),
	}
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(g.url)
	if err != nil {
		return fail(fmt.Errorf("post readings: %w", err))
	}
	if resp.IsError() {
		return fail(fmt.Errorf("gateway rejected readings: status %d: %s", resp.StatusCode(), resp.String()))
	}
	return ok(resp.String())
}

func (g *GatewaySink) Close() error { return nil }

// EncodeReadings renders a snapshot as the gateway's comma-joined text
// form, one "type:T,value:V,unit:U" triple per reading.
func EncodeReadings(snap models.Snapshot) string {
	var b strings.Builder
	for i, r := range snap {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("type:")
		b.WriteString(r.Type)
		b.WriteString(",value:")
		b.WriteString(strconv.FormatFloat(r.Value, 'f', 2, 64))
		b.WriteString(",unit:")
		b.WriteString(r.Unit)
	}
	return b.String()
}

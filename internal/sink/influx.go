// v1
// influx.go

package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

const influxMeasurement = "hydroponics"

// pointWriter is the slice of the blocking write API the sink uses.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// InfluxSink writes one point per reading into the hydroponics
// measurement, tagged by device, reading type and unit.
type InfluxSink struct {
	client influxdb2.Client
	write  pointWriter
}

func NewInfluxSink(cfg InfluxConfig) (*InfluxSink, error) {
	if cfg.URL == "" {
		return nil, errors.New("influx url is required")
	}
	if cfg.Org == "" || cfg.Bucket == "" {
		return nil, errors.New("influx org and bucket are required")
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxSink{
		client: client,
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}, nil
}

func newInfluxSinkWithWriter(w pointWriter) *InfluxSink {
	return &InfluxSink{write: w}
}

func (s *InfluxSink) Name() string { return "influx" }

func (s *InfluxSink) Publish(ctx context.Context, deviceID, deviceKey string, at time.Time, snap models.Snapshot) Result {
	_ = deviceKey
	points := make([]*write.Point, 0, len(snap))
	for _, r := range snap {
		p := influxdb2.NewPoint(
			influxMeasurement,
			map[string]string{"device": deviceID, "type": r.Type, "unit": r.Unit},
			map[string]interface{}{"value": r.Value},
			at,
		)
		points = append(points, p)
	}
	if err := s.write.WritePoint(ctx, points...); err != nil {
		return fail(fmt.Errorf("write points: %w", err))
	}
	return ok("")
}

func (s *InfluxSink) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}

// v1
// server_test.go

package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GiuBlockchainDEV/hydrosim/internal/metrics"
	"github.com/GiuBlockchainDEV/hydrosim/internal/runner"
	"github.com/GiuBlockchainDEV/hydrosim/internal/sink"
	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

type fakeSource struct {
	status    runner.Status
	latest    sink.Envelope
	hasLatest bool
}

func (f *fakeSource) Status() runner.Status         { return f.status }
func (f *fakeSource) Latest() (sink.Envelope, bool) { return f.latest, f.hasLatest }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, src StatusSource, m *metrics.Metrics, hub *Hub) *httptest.Server {
	t.Helper()
	srv := NewServer(":0", testLogger(), src, m, hub)
	ts := httptest.NewServer(srv.HTTP.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &fakeSource{}, metrics.New(), nil)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"status":"ok"}` {
		t.Fatalf("body: got %q", body)
	}
}

func TestStatusEndpoint(t *testing.T) {
	src := &fakeSource{status: runner.Status{
		Variant:     "correlated",
		DeviceID:    "dev-8",
		Ticks:       41,
		LastSuccess: true,
	}}
	ts := newTestServer(t, src, metrics.New(), nil)

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()

	var got runner.Status
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if got.DeviceID != "dev-8" || got.Ticks != 41 || !got.LastSuccess {
		t.Fatalf("status mismatch: %+v", got)
	}
}

func TestLatestBeforeFirstTick(t *testing.T) {
	ts := newTestServer(t, &fakeSource{hasLatest: false}, metrics.New(), nil)

	resp, err := http.Get(ts.URL + "/readings/latest")
	if err != nil {
		t.Fatalf("GET /readings/latest: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status: got %d want 404", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if got["error"] != "no readings yet" {
		t.Fatalf("error body: got %q", got["error"])
	}
}

func TestLatestAfterTick(t *testing.T) {
	env := sink.Envelope{
		DeviceID: "dev-8",
		SentAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Readings: models.Snapshot{
			{Type: models.TypeEC, Value: 1.52, Unit: "mS/cm"},
		},
	}
	ts := newTestServer(t, &fakeSource{latest: env, hasLatest: true}, metrics.New(), nil)

	resp, err := http.Get(ts.URL + "/readings/latest")
	if err != nil {
		t.Fatalf("GET /readings/latest: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d want 200", resp.StatusCode)
	}

	var got sink.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if got.DeviceID != "dev-8" || len(got.Readings) != 1 {
		t.Fatalf("envelope mismatch: %+v", got)
	}
}

func TestMetricsExposition(t *testing.T) {
	m := metrics.New()
	m.Tick()
	ts := newTestServer(t, &fakeSource{}, m, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "hydrosim_ticks_total 1") {
		t.Fatalf("exposition missing tick counter:\n%s", body)
	}
}

func TestWebsocketReceivesBroadcast(t *testing.T) {
	hub := NewHub(testLogger())
	ts := newTestServer(t, &fakeSource{}, metrics.New(), hub)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("hub never registered the client")
		}
		time.Sleep(5 * time.Millisecond)
	}

	env := sink.Envelope{DeviceID: "dev-8", SentAt: time.Now().UTC()}
	hub.Broadcast(env)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	var got sink.Envelope
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("decode broadcast: %v", err)
	}
	if got.DeviceID != "dev-8" {
		t.Fatalf("broadcast device: got %q want dev-8", got.DeviceID)
	}
}

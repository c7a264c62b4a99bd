// v1
// gateway_test.go

package sink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

func sampleSnapshot() models.Snapshot {
	return models.Snapshot{
		{Type: models.TypeEC, Value: 1.52, Unit: "mS/cm"},
		{Type: models.TypePH, Value: 6.01, Unit: "pH"},
		{Type: models.TypeWaterTemp, Value: 22.12, Unit: "C"},
		{Type: models.TypeAirTemp, Value: 25.4, Unit: "C"},
		{Type: models.TypeHumidity, Value: 58.77, Unit: "%"},
		{Type: models.TypeLight, Value: 901.5, Unit: "PPFD"},
	}
}

func TestGatewayPublishSendsAddReading(t *testing.T) {
	var got addReadingRequest
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	g, err := NewGatewaySink(srv.URL+"/", 2*time.Second)
	if err != nil {
		t.Fatalf("NewGatewaySink: %v", err)
	}

	res := g.Publish(context.Background(), "dev-1", "key-1", time.Now(), sampleSnapshot())
	if !res.Success {
		t.Fatalf("publish failed: %v", res.Err)
	}
	if res.Data != `{"success":true}` {
		t.Fatalf("result data: got %q", res.Data)
	}
	if gotPath != "/readings" {
		t.Fatalf("request path: got %q want /readings", gotPath)
	}
	if got.DeviceID != "dev-1" || got.DeviceKey != "key-1" {
		t.Fatalf("credentials: got %q/%q", got.DeviceID, got.DeviceKey)
	}
	if got.Method != "addReading" {
		t.Fatalf("method: got %q want addReading", got.Method)
	}
	want := "type:ec,value:1.52,unit:mS/cm," +
		"type:ph,value:6.01,unit:pH," +
		"type:water_temperature,value:22.12,unit:C," +
		"type:air_temperature,value:25.40,unit:C," +
		"type:humidity,value:58.77,unit:%," +
		"type:light,value:901.50,unit:PPFD"
	if got.Payload != want {
		t.Fatalf("payload mismatch:\ngot  %q\nwant %q", got.Payload, want)
	}
}

func TestGatewayPublishReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	g, err := NewGatewaySink(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("NewGatewaySink: %v", err)
	}

	res := g.Publish(context.Background(), "dev-1", "wrong", time.Now(), sampleSnapshot())
	if res.Success {
		t.Fatal("expected failure for 401 response")
	}
	if res.Err == nil {
		t.Fatal("failure carries no error")
	}
	if !strings.Contains(res.Err.Error(), "bad key") {
		t.Fatalf("error should carry the response body, got %v", res.Err)
	}
}

func TestGatewayRequiresURL(t *testing.T) {
	if _, err := NewGatewaySink("", time.Second); err == nil {
		t.Fatal("expected error for empty gateway url")
	}
}

func TestEncodeReadingsEmptySnapshot(t *testing.T) {
	if got := EncodeReadings(nil); got != "" {
		t.Fatalf("empty snapshot should encode to empty string, got %q", got)
	}
}

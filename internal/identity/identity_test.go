// v1
// identity_test.go

package identity

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadOrCreateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "identity.json")
	log := testLogger()

	created, err := LoadOrCreate(path, log)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.DeviceID == "" {
		t.Fatal("created identity has empty device id")
	}
	if len(created.Key) != keyBytes*2 {
		t.Fatalf("credential key length: got %d want %d hex chars", len(created.Key), keyBytes*2)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("created identity missing timestamp")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat identity file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("identity file permissions: got %o want 600", perm)
	}

	loaded, err := LoadOrCreate(path, log)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.DeviceID != created.DeviceID || loaded.Key != created.Key {
		t.Fatalf("second load changed identity: got %+v want %+v", loaded, created)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	if _, err := LoadOrCreate(path, testLogger()); err == nil {
		t.Fatal("expected error for corrupt identity file")
	}
}

func TestLoadRejectsIncompleteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	if err := os.WriteFile(path, []byte(`{"deviceId":"abc"}`), 0o600); err != nil {
		t.Fatalf("seed incomplete file: %v", err)
	}

	_, err := LoadOrCreate(path, testLogger())
	if err == nil {
		t.Fatal("expected error for identity file without credential key")
	}
	if !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("error chain: got %v want ErrNoIdentity", err)
	}
}

func TestResolvePrefersConfiguredCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")

	id, err := Resolve("dev-cfg", "key-cfg", path, testLogger())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.DeviceID != "dev-cfg" || id.Key != "key-cfg" {
		t.Fatalf("resolved identity: %+v", id)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("configured credentials must not touch the identity file")
	}
}

func TestResolveFallsBackToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")

	id, err := Resolve("", "", path, testLogger())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.DeviceID == "" || id.Key == "" {
		t.Fatalf("resolved identity incomplete: %+v", id)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("identity file should have been created: %v", err)
	}
}

// v1
// identity.go

// Package identity persists a device's id and credential key across
// restarts so a simulator keeps reporting as the same device.
package identity

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const keyBytes = 32

// ErrNoIdentity marks an identity file that exists but does not carry
// usable credentials.
var ErrNoIdentity = errors.New("identity file missing device credentials")

// DeviceIdentity is the on-disk identity record.
type DeviceIdentity struct {
	DeviceID  string    `json:"deviceId"`
	Key       string    `json:"credentialKey"`
	CreatedAt time.Time `json:"createdAt"`
}

// Resolve prefers explicitly configured credentials; only when they are
// absent does the identity file come into play.
func Resolve(deviceID, key, path string, log *slog.Logger) (DeviceIdentity, error) {
	if deviceID != "" && key != "" {
		log.Info("using configured device identity", "deviceId", deviceID)
		return DeviceIdentity{DeviceID: deviceID, Key: key}, nil
	}
	return LoadOrCreate(path, log)
}

// LoadOrCreate reads the identity file at path, creating a fresh
// identity when the file does not exist yet. A file that exists but
// cannot be parsed is an error rather than grounds for regeneration;
// silently minting a new identity would orphan the device's history.
func LoadOrCreate(path string, log *slog.Logger) (DeviceIdentity, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var id DeviceIdentity
		if err := json.Unmarshal(data, &id); err != nil {
			return DeviceIdentity{}, fmt.Errorf("parse identity file %s: %w", path, err)
		}
		if id.DeviceID == "" || id.Key == "" {
			return DeviceIdentity{}, fmt.Errorf("identity file %s: %w", path, ErrNoIdentity)
		}
		log.Info("device identity loaded", "path", path, "deviceId", id.DeviceID)
		return id, nil
	case errors.Is(err, os.ErrNotExist):
		return create(path, log)
	default:
		return DeviceIdentity{}, fmt.Errorf("read identity file %s: %w", path, err)
	}
}

func create(path string, log *slog.Logger) (DeviceIdentity, error) {
	raw := make([]byte, keyBytes)
	if _, err := rand.Read(raw); err != nil {
		return DeviceIdentity{}, fmt.Errorf("generate credential key: %w", err)
	}
	id := DeviceIdentity{
		DeviceID:  uuid.NewString(),
		Key:       hex.EncodeToString(raw),
		CreatedAt: time.Now().UTC(),
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return DeviceIdentity{}, fmt.Errorf("create identity dir %s: %w", dir, err)
		}
	}
	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return DeviceIdentity{}, fmt.Errorf("encode identity: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return DeviceIdentity{}, fmt.Errorf("write identity file %s: %w", path, err)
	}
	log.Info("device identity created", "path", path, "deviceId", id.DeviceID)
	return id, nil
}

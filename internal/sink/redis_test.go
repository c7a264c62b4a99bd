// v1
// redis_test.go

package sink

import "testing"

func TestLatestKeyShape(t *testing.T) {
	if got := latestKey("dev-7"); got != "hydrosim:latest:dev-7" {
		t.Fatalf("latest key: got %q want hydrosim:latest:dev-7", got)
	}
}

func TestNewRedisSinkRequiresAddr(t *testing.T) {
	if _, err := NewRedisSink(RedisConfig{}); err == nil {
		t.Fatal("expected error for missing redis address")
	}
}

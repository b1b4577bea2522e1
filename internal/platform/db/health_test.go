package db

import (
	"errors"
	"net/http"
	"testing"
)

func TestHealthPayload_Reachable(t *testing.T) {
	stats := &PoolStats{TotalConns: 3, Healthy: true}

	code, body := healthPayload(stats, nil)
	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if body["status"] != "ok" || body["database"] != "reachable" {
		t.Errorf("unexpected payload: %v", body)
	}
}

func TestHealthPayload_Unreachable(t *testing.T) {
	stats := &PoolStats{TotalConns: 3, Healthy: true}

	code, body := healthPayload(stats, errors.New("connection refused"))
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
	if body["status"] != "degraded" || body["database"] != "unreachable" {
		t.Errorf("unexpected payload: %v", body)
	}
	if stats.Healthy {
		t.Error("expected pool marked unhealthy after a failed ping")
	}
}

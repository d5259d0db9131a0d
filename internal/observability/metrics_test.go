package observability

import (
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/complaints", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/complaints", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/auth/login", "POST", 401, 5*time.Millisecond)
	m.RecordError("/auth/login", "POST", "UNAUTHENTICATED")

	snap := m.Snapshot()
	if len(snap.Requests) != 2 {
		t.Fatalf("expected two request keys, got %+v", snap.Requests)
	}
	if snap.Requests[0].Key != "/auth/login|POST|401" {
		t.Fatalf("expected sorted keys, got %s first", snap.Requests[0].Key)
	}
	got := snap.Requests[1]
	if got.Count != 2 || got.AvgLatencyMs != 20 || got.MaxLatencyMs != 30 {
		t.Fatalf("unexpected aggregate %+v", got)
	}
	if snap.Errors["/auth/login|POST|UNAUTHENTICATED"] != 1 {
		t.Fatalf("unexpected errors %v", snap.Errors)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "INTERNAL_ERROR")
}

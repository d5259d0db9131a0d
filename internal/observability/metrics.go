package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics keeps in-memory request and error counters keyed by route|method|status.
type Metrics struct {
	mu       sync.Mutex
	started  time.Time
	requests map[string]*requestStat
	errors   map[string]int64
}

type requestStat struct {
	count int64
	total time.Duration
	max   time.Duration
}

// RequestMetric is a snapshot row for one route|method|status key.
type RequestMetric struct {
	Key          string  `json:"key"`
	Count        int64   `json:"count"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
	MaxLatencyMs float64 `json:"maxLatencyMs"`
}

// Snapshot is the JSON view served on /metrics.
type Snapshot struct {
	UptimeSeconds int64            `json:"uptimeSeconds"`
	Requests      []RequestMetric  `json:"requests"`
	Errors        map[string]int64 `json:"errors"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		started:  time.Now(),
		requests: make(map[string]*requestStat),
		errors:   make(map[string]int64),
	}
}

// RecordRequest counts a finished request and its latency.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := route + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	stat, ok := m.requests[key]
	if !ok {
		stat = &requestStat{}
		m.requests[key] = stat
	}
	stat.count++
	stat.total += duration
	if duration > stat.max {
		stat.max = duration
	}
}

// RecordError counts a failed request by error code.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	key := route + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[key]++
}

// Snapshot copies the counters, sorted by key.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{Requests: []RequestMetric{}, Errors: map[string]int64{}}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		UptimeSeconds: int64(time.Since(m.started) / time.Second),
		Requests:      make([]RequestMetric, 0, len(m.requests)),
		Errors:        make(map[string]int64, len(m.errors)),
	}
	for key, stat := range m.requests {
		snap.Requests = append(snap.Requests, RequestMetric{
			Key:          key,
			Count:        stat.count,
			AvgLatencyMs: millis(stat.total) / float64(stat.count),
			MaxLatencyMs: millis(stat.max),
		})
	}
	sort.Slice(snap.Requests, func(i, j int) bool { return snap.Requests[i].Key < snap.Requests[j].Key })
	for key, n := range m.errors {
		snap.Errors[key] = n
	}
	return snap
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

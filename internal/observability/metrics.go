package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	jobCount     map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		jobCount:     make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordJob increments per-kind job outcome counters.
func (m *Metrics) RecordJob(kind string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobCount[kind+"|"+outcome]++
}

// JobCount returns the counter for a job kind and outcome.
func (m *Metrics) JobCount(kind string, ok bool) int64 {
	if m == nil {
		return 0
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobCount[kind+"|"+outcome]
}

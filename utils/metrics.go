package utils

import (
	"sync"
	"time"
)

// Metrics holds in-process application metrics
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Ledger operation counts by kind (batch_create, loan_create, ...)
	LedgerOperations    map[string]int64
	LastLedgerOperation time.Time

	// Error metrics
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics returns the metrics singleton
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			LedgerOperations: make(map[string]int64),
			ErrorTypes:       make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest records metrics for an HTTP request
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if failed {
		m.FailedRequests++
	}
}

// RecordLedgerOperation records a ledger write by kind
func (m *Metrics) RecordLedgerOperation(kind string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LedgerOperations[kind]++
	m.LastLedgerOperation = time.Now()

	if err != nil {
		m.recordErrorLocked(err)
	}
}

// RecordError records an error occurrence
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErrorLocked(err)
}

func (m *Metrics) recordErrorLocked(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}
	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot returns a copy of the current metrics
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	operations := make(map[string]int64, len(m.LedgerOperations))
	for k, v := range m.LedgerOperations {
		operations[k] = v
	}

	return map[string]interface{}{
		"total_requests":    m.TotalRequests,
		"failed_requests":   m.FailedRequests,
		"average_latency":   m.AverageLatency.String(),
		"ledger_operations": operations,
		"error_count":       m.ErrorCount,
		"last_error_time":   m.LastErrorTime,
	}
}

// ResetMetrics clears all metrics
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.ErrorCount = 0
	m.LedgerOperations = make(map[string]int64)
	m.ErrorTypes = make(map[string]int64)
}

// Package usage aggregates session history into rolling metrics and a
// coarse health status.
package usage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ArtCenter1/storymaster/internal/session"
)

// HistoryCapacity is the fixed size of the session ring buffer.
const HistoryCapacity = 1000

// metricsWindow bounds the aggregation window for GlobalMetrics.
const metricsWindow = 24 * time.Hour

// Health status values.
const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// AgentUsage is one entry of the agent popularity ranking.
type AgentUsage struct {
	AgentID string
	Count   int
}

// Metrics is computed on demand from the session history window and never
// persisted.
type Metrics struct {
	TotalTokens    int
	TotalCost      float64
	ActiveUsers    int
	TopAgents      []AgentUsage
	AvgLatencyMS   float64
	P95LatencyMS   int64
	P99LatencyMS   int64
	ErrorRate      float64 // percentage over process lifetime, not windowed
	WindowSessions int
}

// Health is the derived system status with advisory alert text.
type Health struct {
	Status string
	Alerts []string
}

// Monitor keeps a bounded FIFO of recent sessions plus lifetime request and
// error counters.
type Monitor struct {
	mu       sync.Mutex
	history  []*session.AgentSession
	requests int64
	errors   int64
}

// NewMonitor creates an empty usage monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// Record appends a completed session, evicting the oldest entry once the
// buffer holds HistoryCapacity sessions.
func (m *Monitor) Record(s *session.AgentSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	m.history = append(m.history, s)
	if len(m.history) > HistoryCapacity {
		m.history = m.history[len(m.history)-HistoryCapacity:]
	}
}

// RecordError counts a failed request. Failed requests produce no session
// and only affect the lifetime error rate.
func (m *Monitor) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	m.errors++
}

// HistoryLen returns the number of buffered sessions.
func (m *Monitor) HistoryLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}

// GlobalMetrics computes metrics over the last 24 hours.
func (m *Monitor) GlobalMetrics() *Metrics {
	return m.GlobalMetricsAt(time.Now())
}

// GlobalMetricsAt computes metrics over the 24 hours preceding now.
func (m *Monitor) GlobalMetricsAt(now time.Time) *Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := now.Add(-metricsWindow)
	metrics := &Metrics{}

	users := map[string]bool{}
	agentCounts := map[string]int{}
	var agentOrder []string
	var latencies []int64

	for _, s := range m.history {
		if s.CreatedAt.Before(cutoff) {
			continue
		}
		metrics.WindowSessions++
		metrics.TotalTokens += s.Usage.Tokens
		metrics.TotalCost += s.Usage.Cost
		if s.UserID != "" {
			users[s.UserID] = true
		}
		if _, seen := agentCounts[s.AgentID]; !seen {
			agentOrder = append(agentOrder, s.AgentID)
		}
		agentCounts[s.AgentID]++
		latencies = append(latencies, s.Usage.LatencyMS)
	}

	metrics.ActiveUsers = len(users)
	metrics.TopAgents = rankAgents(agentCounts, agentOrder, 5)

	if len(latencies) > 0 {
		var sum int64
		for _, l := range latencies {
			sum += l
		}
		metrics.AvgLatencyMS = float64(sum) / float64(len(latencies))
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		metrics.P95LatencyMS = percentile(latencies, 0.95)
		metrics.P99LatencyMS = percentile(latencies, 0.99)
	}

	if m.requests > 0 {
		metrics.ErrorRate = float64(m.errors) / float64(m.requests) * 100
	}
	return metrics
}

// SystemHealth derives the tri-state status from current metrics.
func (m *Monitor) SystemHealth() *Health {
	return m.SystemHealthAt(time.Now())
}

// SystemHealthAt derives the status from metrics computed at now.
func (m *Monitor) SystemHealthAt(now time.Time) *Health {
	metrics := m.GlobalMetricsAt(now)
	h := &Health{Status: StatusHealthy}

	if metrics.ErrorRate > 5 {
		h.Alerts = append(h.Alerts, fmt.Sprintf("High error rate: %.1f%%", metrics.ErrorRate))
	}
	if metrics.AvgLatencyMS > 5000 {
		h.Alerts = append(h.Alerts, fmt.Sprintf("High average latency: %.0fms", metrics.AvgLatencyMS))
	}

	switch {
	case metrics.ErrorRate > 10 || metrics.AvgLatencyMS > 10000:
		h.Status = StatusCritical
	case metrics.ErrorRate > 5 || metrics.AvgLatencyMS > 5000:
		h.Status = StatusWarning
	}
	return h
}

// rankAgents orders agents by usage count, ties broken by first-encountered
// order, truncated to limit.
func rankAgents(counts map[string]int, order []string, limit int) []AgentUsage {
	ranked := make([]AgentUsage, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, AgentUsage{AgentID: id, Count: counts[id]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// percentile picks sorted[floor(n*p)], clamped to the last element.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

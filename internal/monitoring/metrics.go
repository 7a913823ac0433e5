package monitoring

import "sync/atomic"

// Metrics holds process-level counters for the scoring service.
type Metrics struct {
	evaluations    atomic.Int64
	metricFailures atomic.Int64
	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64
	externalCalls  atomic.Int64
	externalErrors atomic.Int64
}

func NewMetrics() *Metrics { return &Metrics{} }

func (m *Metrics) IncrementEvaluations()    { m.evaluations.Add(1) }
func (m *Metrics) IncrementMetricFailures() { m.metricFailures.Add(1) }
func (m *Metrics) IncrementCacheHit()       { m.cacheHits.Add(1) }
func (m *Metrics) IncrementCacheMiss()      { m.cacheMisses.Add(1) }
func (m *Metrics) IncrementExternalCall()   { m.externalCalls.Add(1) }
func (m *Metrics) IncrementExternalError()  { m.externalErrors.Add(1) }

// Snapshot returns current counter values for the health endpoint.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"evaluations":     m.evaluations.Load(),
		"metric_failures": m.metricFailures.Load(),
		"cache_hits":      m.cacheHits.Load(),
		"cache_misses":    m.cacheMisses.Load(),
		"external_calls":  m.externalCalls.Load(),
		"external_errors": m.externalErrors.Load(),
	}
}

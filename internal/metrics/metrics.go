// Package metrics exposes Prometheus instrumentation for the session
// directory: assignment counts, rejected duplicate logons, corrupt
// sectors encountered during recovery, and force latency.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// DirectoryMetrics provides Prometheus metrics for the directory
// engine. All methods are nil-safe: calls on a nil *DirectoryMetrics
// are no-ops, so instrumentation can be wired in optionally.
type DirectoryMetrics struct {
	SessionsAssignedTotal prometheus.Counter
	DuplicateLogonTotal   prometheus.Counter
	CorruptSectorTotal    prometheus.Counter
	OutOfSpaceTotal       prometheus.Counter
	AuthenticatedSessions prometheus.Gauge
	ForceDuration         prometheus.Histogram
}

// New creates and registers directory metrics with reg. If reg is nil,
// the metrics are created but not registered, which is useful in tests.
func New(reg prometheus.Registerer) *DirectoryMetrics {
	m := &DirectoryMetrics{
		SessionsAssignedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fixgate",
			Subsystem: "directory",
			Name:      "sessions_assigned_total",
			Help:      "Total number of session ids assigned.",
		}),
		DuplicateLogonTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fixgate",
			Subsystem: "directory",
			Name:      "duplicate_logon_total",
			Help:      "Total number of on_logon calls rejected as duplicate.",
		}),
		CorruptSectorTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fixgate",
			Subsystem: "directory",
			Name:      "corrupt_sector_total",
			Help:      "Total number of sectors that failed checksum validation during load.",
		}),
		OutOfSpaceTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fixgate",
			Subsystem: "directory",
			Name:      "out_of_space_total",
			Help:      "Total number of record assignments that failed with out-of-space.",
		}),
		AuthenticatedSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fixgate",
			Subsystem: "directory",
			Name:      "authenticated_sessions",
			Help:      "Current number of authenticated sessions.",
		}),
		ForceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fixgate",
			Subsystem: "directory",
			Name:      "force_duration_seconds",
			Help:      "Latency of the synchronous force-to-disk call.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.SessionsAssignedTotal,
			m.DuplicateLogonTotal,
			m.CorruptSectorTotal,
			m.OutOfSpaceTotal,
			m.AuthenticatedSessions,
			m.ForceDuration,
		} {
			if err := reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	}

	return m
}

func (m *DirectoryMetrics) RecordAssigned() {
	if m == nil {
		return
	}
	m.SessionsAssignedTotal.Inc()
}

// RecordAuthenticated increments the authenticated-sessions gauge. It
// is called only when a session id actually enters the authenticated
// set (a successful on_logon), not on every record persisted —
// NewSessionContext assigns a session id without authenticating it.
func (m *DirectoryMetrics) RecordAuthenticated() {
	if m == nil {
		return
	}
	m.AuthenticatedSessions.Inc()
}

func (m *DirectoryMetrics) RecordDuplicateLogon() {
	if m == nil {
		return
	}
	m.DuplicateLogonTotal.Inc()
}

func (m *DirectoryMetrics) RecordCorruptSector() {
	if m == nil {
		return
	}
	m.CorruptSectorTotal.Inc()
}

func (m *DirectoryMetrics) RecordOutOfSpace() {
	if m == nil {
		return
	}
	m.OutOfSpaceTotal.Inc()
}

func (m *DirectoryMetrics) RecordDisconnect() {
	if m == nil {
		return
	}
	m.AuthenticatedSessions.Dec()
}

func (m *DirectoryMetrics) ObserveForceDuration(seconds float64) {
	if m == nil {
		return
	}
	m.ForceDuration.Observe(seconds)
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestRecordAssigned_DoesNotTouchAuthenticatedGauge(t *testing.T) {
	m := New(nil)

	m.RecordAssigned()
	m.RecordAssigned()

	if got := gaugeValue(t, m.AuthenticatedSessions); got != 0 {
		t.Errorf("AuthenticatedSessions = %v after RecordAssigned only, want 0", got)
	}
}

func TestRecordAuthenticated_IncrementsGauge(t *testing.T) {
	m := New(nil)

	m.RecordAuthenticated()
	m.RecordAuthenticated()
	if got := gaugeValue(t, m.AuthenticatedSessions); got != 2 {
		t.Errorf("AuthenticatedSessions = %v, want 2", got)
	}

	m.RecordDisconnect()
	if got := gaugeValue(t, m.AuthenticatedSessions); got != 1 {
		t.Errorf("AuthenticatedSessions = %v after one disconnect, want 1", got)
	}
}

func TestDirectoryMetrics_NilSafe(t *testing.T) {
	var m *DirectoryMetrics

	m.RecordAssigned()
	m.RecordAuthenticated()
	m.RecordDuplicateLogon()
	m.RecordCorruptSector()
	m.RecordOutOfSpace()
	m.RecordDisconnect()
	m.ObserveForceDuration(0.001)
}

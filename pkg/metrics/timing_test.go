package metrics

import (
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	m := &TimingMetric{name: "test"}
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	s := m.Stats()
	if s.Count != 2 {
		t.Fatalf("expected count 2, got %d", s.Count)
	}
	if s.AvgMs != 3 {
		t.Errorf("expected avg 3ms, got %f", s.AvgMs)
	}
	if s.MaxMs != 4 || s.MinMs != 2 {
		t.Errorf("expected min 2ms / max 4ms, got %f / %f", s.MinMs, s.MaxMs)
	}

	m.Reset()
	if m.Count() != 0 {
		t.Errorf("expected reset count 0, got %d", m.Count())
	}
}

func TestTimerDisabled(t *testing.T) {
	prev := Enabled()
	defer SetEnabled(prev)

	SetEnabled(false)
	m := &TimingMetric{name: "off"}
	Timer(m)()
	if m.Count() != 0 {
		t.Fatalf("expected no recording while disabled, got %d", m.Count())
	}
}

func TestAllTimingStatsSkipsEmpty(t *testing.T) {
	prev := Enabled()
	defer SetEnabled(prev)
	SetEnabled(true)

	ResetAll()
	defer ResetAll()
	Selection.Record(time.Millisecond)

	stats := AllTimingStats()
	if len(stats) != 1 || stats[0].Name != "selection" {
		t.Fatalf("expected only selection stats, got %+v", stats)
	}
}

func TestMinMaxAfterReset(t *testing.T) {
	prev := Enabled()
	defer SetEnabled(prev)
	SetEnabled(true)

	m := register("reset_case")
	defer func() { registry = registry[:len(registry)-1] }()
	m.Record(5 * time.Millisecond)
	m.Reset()
	m.Record(3 * time.Millisecond)
	m.Record(1 * time.Millisecond)

	s := m.Stats()
	if s.MinMs != 1 || s.MaxMs != 3 {
		t.Fatalf("expected min 1ms / max 3ms after reset, got %f / %f", s.MinMs, s.MaxMs)
	}
}

func TestAllTimingStatsRegistrationOrder(t *testing.T) {
	prev := Enabled()
	defer SetEnabled(prev)
	SetEnabled(true)

	ResetAll()
	defer ResetAll()
	SnapshotWrite.Record(time.Millisecond)
	ItemMutation.Record(time.Millisecond)

	stats := AllTimingStats()
	if len(stats) != 2 || stats[0].Name != "item_mutation" || stats[1].Name != "snapshot_write" {
		t.Fatalf("expected item_mutation then snapshot_write, got %+v", stats)
	}
}

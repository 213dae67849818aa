// Package metrics times the toolbar's hot paths: item mutations, selection,
// config loading, state sync, rendering and snapshot writes. Totals are
// printed to stderr when the TUI exits. Set TB_METRICS=0 to turn collection
// off.
//
//	defer metrics.Timer(metrics.Selection)()
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

var collecting atomic.Bool

func init() {
	collecting.Store(os.Getenv("TB_METRICS") != "0")
}

// Enabled reports whether durations are being recorded.
func Enabled() bool { return collecting.Load() }

// SetEnabled switches recording on or off at runtime.
func SetEnabled(e bool) { collecting.Store(e) }

// TimingMetric accumulates durations for one toolbar operation. Safe for
// concurrent use.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	max   atomic.Int64
	min   atomic.Int64 // zero until the first sample
}

var registry []*TimingMetric

func register(name string) *TimingMetric {
	m := &TimingMetric{name: name}
	registry = append(registry, m)
	return m
}

// Operations timed by tb.
var (
	ItemMutation  = register("item_mutation")
	Selection     = register("selection")
	ConfigLoad    = register("config_load")
	StateSync     = register("state_sync")
	UIRender      = register("ui_render")
	SnapshotWrite = register("snapshot_write")
)

// Record adds one sample. It is a no-op while collection is off.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	for cur := m.max.Load(); ns > cur; cur = m.max.Load() {
		if m.max.CompareAndSwap(cur, ns) {
			break
		}
	}
	for cur := m.min.Load(); cur == 0 || ns < cur; cur = m.min.Load() {
		if m.min.CompareAndSwap(cur, ns) {
			break
		}
	}
}

// Count is the number of samples since the last reset.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Stats summarizes the samples in milliseconds.
func (m *TimingMetric) Stats() TimingStats {
	n := m.count.Load()
	s := TimingStats{
		Name:    m.name,
		Count:   n,
		TotalMs: ms(m.total.Load()),
		MaxMs:   ms(m.max.Load()),
		MinMs:   ms(m.min.Load()),
	}
	if n > 0 {
		s.AvgMs = s.TotalMs / float64(n)
	}
	return s
}

func ms(ns int64) float64 { return float64(ns) / float64(time.Millisecond) }

// Reset drops every sample.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

// TimingStats is the exit report line for one operation.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer starts timing m and returns the func that stops it.
func Timer(m *TimingMetric) func() {
	if m == nil || !Enabled() {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

// ResetAll clears every registered operation.
func ResetAll() {
	for _, m := range registry {
		m.Reset()
	}
}

// AllTimingStats reports the operations that ran at least once, in
// registration order.
func AllTimingStats() []TimingStats {
	var out []TimingStats
	for _, m := range registry {
		if m.Count() > 0 {
			out = append(out, m.Stats())
		}
	}
	return out
}

package obs

import (
	"sync/atomic"
	"time"

	"main/internal/adapter/enum"
	"main/internal/risk"
)

// Metrics collects lightweight counters and latency stats for the
// coordination engine.
type Metrics struct {
	eventCounts  [enum.EventKindCount]uint64
	denyCounts   [risk.ReasonCount]uint64
	queueDrops   uint64
	trBusy       uint64
	ordersSent   uint64
	ordersFailed uint64
	sellsSent    uint64

	buyPipeline LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	EventCounts  map[enum.EventKind]uint64
	DenyCounts   map[risk.Reason]uint64
	QueueDrops   uint64
	TRBusy       uint64
	OrdersSent   uint64
	OrdersFailed uint64
	SellsSent    uint64
	BuyPipeline  LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncEvent counts one routed event.
func (m *Metrics) IncEvent(kind enum.EventKind) {
	if m == nil {
		return
	}
	idx := int(kind)
	if idx >= 0 && idx < len(m.eventCounts) {
		atomic.AddUint64(&m.eventCounts[idx], 1)
	}
}

// IncDeny counts one admission rejection by reason.
func (m *Metrics) IncDeny(reason risk.Reason) {
	if m == nil {
		return
	}
	idx := int(reason)
	if idx >= 0 && idx < len(m.denyCounts) {
		atomic.AddUint64(&m.denyCounts[idx], 1)
	}
}

// IncQueueDrop records a dropped event on the full bus queue.
func (m *Metrics) IncQueueDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueDrops, 1)
}

// IncTRBusy records a rejected Begin on a busy correlator channel.
func (m *Metrics) IncTRBusy() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.trBusy, 1)
}

// IncOrderSent records a submitted buy order.
func (m *Metrics) IncOrderSent() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersSent, 1)
}

// IncOrderFailed records a failed submission.
func (m *Metrics) IncOrderFailed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersFailed, 1)
}

// IncSellSent records a submitted liquidation order.
func (m *Metrics) IncSellSent() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sellsSent, 1)
}

// ObserveBuyPipeline measures one buy entry from pop to release.
func (m *Metrics) ObserveBuyPipeline(d time.Duration) {
	if m == nil {
		return
	}
	m.buyPipeline.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	eventCounts := make(map[enum.EventKind]uint64)
	for i := range m.eventCounts {
		if v := atomic.LoadUint64(&m.eventCounts[i]); v > 0 {
			eventCounts[enum.EventKind(i)] = v
		}
	}
	denyCounts := make(map[risk.Reason]uint64)
	for i := range m.denyCounts {
		if v := atomic.LoadUint64(&m.denyCounts[i]); v > 0 {
			denyCounts[risk.Reason(i)] = v
		}
	}
	return Snapshot{
		EventCounts:  eventCounts,
		DenyCounts:   denyCounts,
		QueueDrops:   atomic.LoadUint64(&m.queueDrops),
		TRBusy:       atomic.LoadUint64(&m.trBusy),
		OrdersSent:   atomic.LoadUint64(&m.ordersSent),
		OrdersFailed: atomic.LoadUint64(&m.ordersFailed),
		SellsSent:    atomic.LoadUint64(&m.sellsSent),
		BuyPipeline:  m.buyPipeline.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	v := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, v)
	for {
		cur := atomic.LoadUint64(&l.min)
		if cur != 0 && cur <= v {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, cur, v) {
			break
		}
	}
	for {
		cur := atomic.LoadUint64(&l.max)
		if cur >= v {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, cur, v) {
			break
		}
	}
}

// Snapshot returns the aggregated view of the samples so far.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(atomic.LoadUint64(&l.min)),
		Max:   time.Duration(atomic.LoadUint64(&l.max)),
		Avg:   time.Duration(sum / count),
	}
}

package ledger

import (
	"sync"
	"time"

	"main/internal/adapter"
)

// Position is the tracked state for a single instrument. Entries are created
// on first observation and removed only by zero-quantity reconciliation.
type Position struct {
	HeldQuantity         adapter.Quantity
	AccumulatedBuyAmount adapter.Amount
	PendingOrder         bool
}

// Ledger is the authoritative holdings view. The router is the only writer of
// held quantities; the buy pipeline is the only writer of accumulated buy
// amounts. Both run on distinct goroutines, hence the mutex.
type Ledger struct {
	mu               sync.Mutex
	positions        map[adapter.Code]*Position
	snapshotCooldown time.Duration
	lastSnapshotReq  time.Time
}

// New creates an empty ledger with the given snapshot-request cooldown.
func New(snapshotCooldown time.Duration) *Ledger {
	return &Ledger{
		positions:        make(map[adapter.Code]*Position),
		snapshotCooldown: snapshotCooldown,
	}
}

func (l *Ledger) ensureLocked(code adapter.Code) *Position {
	p, ok := l.positions[code]
	if !ok {
		p = &Position{}
		l.positions[code] = p
	}
	return p
}

// HeldQuantity returns the current held quantity for a code.
func (l *Ledger) HeldQuantity(code adapter.Code) adapter.Quantity {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.positions[code]; ok {
		return p.HeldQuantity
	}
	return 0
}

// AccumulatedBuyAmount returns the capital committed to a code so far.
func (l *Ledger) AccumulatedBuyAmount(code adapter.Code) adapter.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.positions[code]; ok {
		return p.AccumulatedBuyAmount
	}
	return 0
}

// AddAccumulated increments the committed capital after a confirmed
// submission acknowledgment. Never called on rejection.
func (l *Ledger) AddAccumulated(code adapter.Code, amount adapter.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLocked(code).AccumulatedBuyAmount += amount
}

// Pending reports whether an order for the code is in flight.
func (l *Ledger) Pending(code adapter.Code) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.positions[code]; ok {
		return p.PendingOrder
	}
	return false
}

// SetPending marks or clears the in-flight flag for a code.
func (l *Ledger) SetPending(code adapter.Code, pending bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLocked(code).PendingOrder = pending
}

// ClearAllPending drops every in-flight marker. Fired by the settle-delay
// timer so no instrument stays stuck without a terminal confirmation.
func (l *Ledger) ClearAllPending() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.positions {
		p.PendingOrder = false
	}
}

// ApplyFill sets the held quantity for one code from an incremental notice.
// Zero removes the holding entry without touching other state on it.
func (l *Ledger) ApplyFill(code adapter.Code, quantity adapter.Quantity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if quantity <= 0 {
		if p, ok := l.positions[code]; ok {
			p.HeldQuantity = 0
		}
		return
	}
	l.ensureLocked(code).HeldQuantity = quantity
}

// ClearHolding optimistically zeroes the local holding after a successful
// liquidation submit. A later reconciliation restores the true value.
func (l *Ledger) ClearHolding(code adapter.Code) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.positions[code]; ok {
		p.HeldQuantity = 0
	}
}

// ReconcileSnapshot replaces held quantities wholesale from a snapshot.
// An empty snapshot means "no data returned" and leaves holdings untouched.
// Accumulated amounts and pending flags survive reconciliation.
func (l *Ledger) ReconcileSnapshot(entries []adapter.BalanceEntry) bool {
	if len(entries) == 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.positions {
		p.HeldQuantity = 0
	}
	for _, entry := range entries {
		l.ensureLocked(entry.Code).HeldQuantity = entry.Quantity
	}
	return true
}

// AllowSnapshotRequest gates balance-snapshot requests: a new request inside
// the cooldown window of the previous one is rejected. A true return records
// the request time.
func (l *Ledger) AllowSnapshotRequest(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.lastSnapshotReq.IsZero() && now.Sub(l.lastSnapshotReq) < l.snapshotCooldown {
		return false
	}
	l.lastSnapshotReq = now
	return true
}

// Holdings returns a copy of all non-zero holdings, for logs and shutdown
// reporting.
func (l *Ledger) Holdings() map[adapter.Code]adapter.Quantity {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[adapter.Code]adapter.Quantity, len(l.positions))
	for code, p := range l.positions {
		if p.HeldQuantity > 0 {
			out[code] = p.HeldQuantity
		}
	}
	return out
}

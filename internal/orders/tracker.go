package orders

import (
	"sync"
	"time"

	"main/internal/adapter"
	"main/internal/adapter/enum"
	"main/pkg/exception"
)

// State tracks the lifecycle of a submitted order.
type State uint8

const (
	StateUnknown State = iota
	StateSent
	StateAcked
	StateFilled
	StateRejected
)

func isTerminal(state State) bool {
	return state == StateFilled || state == StateRejected
}

// Order is the coordinator's view of one submitted order. Amount is the
// committed notional for buys, zero for sells.
type Order struct {
	ID          uint64
	Code        adapter.Code
	Side        enum.OrderSide
	Quantity    adapter.Quantity
	Price       adapter.Price
	Amount      adapter.Amount
	State       State
	SubmittedAt time.Time
}

// Tracker keeps the lifecycle of submitted orders for journaling and logs.
// Coordination decisions never read it; the ledger stays authoritative.
// Fill notices carry no order id, so the open order is matched by code.
type Tracker struct {
	mu         sync.Mutex
	nextID     uint64
	orders     map[uint64]*Order
	openByCode map[adapter.Code]uint64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		orders:     make(map[uint64]*Order),
		openByCode: make(map[adapter.Code]uint64),
	}
}

// Submit registers a new order in Sent state and returns it.
func (t *Tracker) Submit(req adapter.OrderRequest, price adapter.Price, amount adapter.Amount) *Order {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	o := &Order{
		ID:          t.nextID,
		Code:        req.Code,
		Side:        req.Side,
		Quantity:    req.Quantity,
		Price:       price,
		Amount:      amount,
		State:       StateSent,
		SubmittedAt: time.Now(),
	}
	t.orders[o.ID] = o
	t.openByCode[o.Code] = o.ID
	return o
}

// MarkAcked moves an order to Acked after the transport accepted it.
func (t *Tracker) MarkAcked(id uint64) error {
	return t.transition(id, StateAcked)
}

// MarkRejected closes an order the transport refused.
func (t *Tracker) MarkRejected(id uint64) error {
	return t.transition(id, StateRejected)
}

func (t *Tracker) transition(id uint64, next State) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	o, ok := t.orders[id]
	if !ok {
		return exception.ErrOrderUnknown
	}
	if isTerminal(o.State) {
		return exception.ErrOrderInvalidTransition
	}
	o.State = next
	if isTerminal(next) {
		t.closeLocked(o)
	}
	return nil
}

// MarkFilled closes the open order for a code on a balance-changing fill.
// Returns false when no order was open for the code, which is normal for
// fills originating outside this session.
func (t *Tracker) MarkFilled(code adapter.Code) (*Order, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.openByCode[code]
	if !ok {
		return nil, false
	}
	o := t.orders[id]
	o.State = StateFilled
	t.closeLocked(o)
	return o, true
}

// Open returns the in-flight order for a code, if any.
func (t *Tracker) Open(code adapter.Code) (*Order, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.openByCode[code]
	if !ok {
		return nil, false
	}
	return t.orders[id], true
}

func (t *Tracker) closeLocked(o *Order) {
	if t.openByCode[o.Code] == o.ID {
		delete(t.openByCode, o.Code)
	}
}

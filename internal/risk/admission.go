package risk

import "main/internal/adapter"

// Config defines the capital limits the admission check enforces.
type Config struct {
	// PerInstrumentCap is the maximum cumulative buy capital admitted for a
	// single instrument. External fills at unexpected prices may still push
	// the committed total past this value; admission only bounds what the
	// coordinator itself submits.
	PerInstrumentCap adapter.Amount `json:"perInstrumentCap"`
}

// Action is the admission outcome.
type Action uint8

const (
	ActionAllow Action = iota
	ActionDeny
)

// Reason explains a deny.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonAlreadyQueued
	ReasonPendingOrder
	ReasonCapReached
	_reason_end
)

// ReasonCount is the number of defined reasons, for counter arrays.
const ReasonCount = int(_reason_end)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonAlreadyQueued:
		return "already queued"
	case ReasonPendingOrder:
		return "pending order"
	case ReasonCapReached:
		return "cap reached"
	default:
		return "unknown"
	}
}

// StateView is the per-instrument snapshot the admission check consults.
type StateView struct {
	Queued       bool
	PendingOrder bool
	Accumulated  adapter.Amount
}

// Decision is the admission verdict for one buy intent.
type Decision struct {
	Code      adapter.Code
	Action    Action
	Reason    Reason
	Remaining adapter.Amount
}

// Engine evaluates buy admissions against static limits.
type Engine struct {
	cfg Config
}

// NewEngine creates an admission engine with static limits.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Cap returns the configured per-instrument cap.
func (e *Engine) Cap() adapter.Amount {
	return e.cfg.PerInstrumentCap
}

// EvaluateBuy checks whether a buy intent may enter the admission queue.
func (e *Engine) EvaluateBuy(code adapter.Code, state StateView) Decision {
	decision := Decision{
		Code:      code,
		Action:    ActionAllow,
		Reason:    ReasonNone,
		Remaining: e.cfg.PerInstrumentCap - state.Accumulated,
	}

	if state.Queued {
		decision.Action = ActionDeny
		decision.Reason = ReasonAlreadyQueued
		return decision
	}
	if state.PendingOrder {
		decision.Action = ActionDeny
		decision.Reason = ReasonPendingOrder
		return decision
	}
	if state.Accumulated >= e.cfg.PerInstrumentCap {
		decision.Action = ActionDeny
		decision.Reason = ReasonCapReached
		return decision
	}
	return decision
}

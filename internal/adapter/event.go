package adapter

import "main/internal/adapter/enum"

// Event is one inbound callback from the brokerage feed, or a deferred
// re-entry scheduled by the engine itself. The router consumes events from a
// single queue so business logic never runs concurrently with itself.
type Event interface {
	Kind() enum.EventKind
}

// ConditionListEvent carries the full (re)loaded condition list.
type ConditionListEvent struct {
	Conditions []Condition
}

func (ConditionListEvent) Kind() enum.EventKind { return enum.EventKindConditionList }

// ScanListEvent is the one-shot bulk list of codes satisfying a condition at
// subscribe time.
type ScanListEvent struct {
	ConditionIndex int
	Codes          []Code
}

func (ScanListEvent) Kind() enum.EventKind { return enum.EventKindScanList }

// TransitionEvent is a real-time condition transition for a single code.
// HasIndex is false when the feed delivered a missing or unparseable
// condition index; such events are never acted on.
type TransitionEvent struct {
	Code           Code
	Direction      enum.TransitionDirection
	ConditionIndex int
	HasIndex       bool
}

func (TransitionEvent) Kind() enum.EventKind { return enum.EventKindTransition }

// PriceQuote is the payload of a price-lookup TR response.
type PriceQuote struct {
	Code  Code
	Price Price
}

// BalanceEntry is one holding row of a balance-snapshot TR response.
type BalanceEntry struct {
	Code     Code
	Quantity Quantity
}

// TRResponseEvent is a correlated request/response arriving from the
// brokerage. Channel is resolved from the wire tag by the session adapter and
// left unavailable for tags the coordinator does not recognize.
type TRResponseEvent struct {
	Tag     string
	Channel enum.TRChannel
	Failed  bool
	Price   PriceQuote
	Balance []BalanceEntry
}

func (TRResponseEvent) Kind() enum.EventKind { return enum.EventKindTRResponse }

// FillEvent is an execution/confirmation notice for a single code. Quantity
// is the resulting held quantity reported by the brokerage, not a delta.
type FillEvent struct {
	FillKind enum.FillKind
	Code     Code
	Quantity Quantity
}

func (FillEvent) Kind() enum.EventKind { return enum.EventKindFill }

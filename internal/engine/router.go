package engine

import (
	"context"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/adapter"
	"main/internal/adapter/enum"
)

// settleExpiredEvent re-enters the router once the settle delay after a fill
// notice has elapsed.
type settleExpiredEvent struct{}

func (settleExpiredEvent) Kind() enum.EventKind { return enum.EventKindSettleExpired }

func (e *Engine) route(ctx context.Context, ev adapter.Event) {
	e.metrics.IncEvent(ev.Kind())

	switch ev := ev.(type) {
	case adapter.ConditionListEvent:
		e.onConditionList(ctx, ev)
	case adapter.ScanListEvent:
		e.onScanList(ev)
	case adapter.TransitionEvent:
		e.onTransition(ctx, ev)
	case adapter.TRResponseEvent:
		e.onTRResponse(ev)
	case adapter.FillEvent:
		e.onFill(ev)
	case settleExpiredEvent:
		e.onSettleExpired(ctx)
	default:
		logs.Errorf("unroutable event, kind: %d", ev.Kind())
	}
}

func (e *Engine) onConditionList(ctx context.Context, ev adapter.ConditionListEvent) {
	e.classifier.Classify(ev.Conditions)
	triggers := e.classifier.Triggers()
	logs.Infof("condition list loaded, total: %d, triggers: %d", len(ev.Conditions), len(triggers))

	for _, cond := range triggers {
		if err := e.session.SubscribeCondition(ctx, cond.Index, cond.Name); err != nil {
			logs.Errorf("subscribe condition %q, err: %+v", cond.Name, err)
		}
	}
}

// onScanList enqueues a buy intent for every distinct code the initial scan
// returned, when the scan belongs to a buy trigger.
func (e *Engine) onScanList(ev adapter.ScanListEvent) {
	if !e.classifier.IsBuyTrigger(ev.ConditionIndex) {
		return
	}

	seen := make(map[adapter.Code]struct{}, len(ev.Codes))
	for _, code := range ev.Codes {
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		e.EnqueueBuy(code)
	}
}

func (e *Engine) onTransition(ctx context.Context, ev adapter.TransitionEvent) {
	if !ev.HasIndex {
		logs.Infof("transition for %s without condition index, skip", ev.Code)
		return
	}

	switch ev.Direction {
	case enum.TransitionEntered:
		if e.classifier.IsBuyTrigger(ev.ConditionIndex) {
			e.EnqueueBuy(ev.Code)
		}
	case enum.TransitionLeft:
		if e.classifier.IsSellTrigger(ev.ConditionIndex) {
			e.DispatchSell(ctx, ev.Code)
		}
	}
}

func (e *Engine) onTRResponse(ev adapter.TRResponseEvent) {
	if !ev.Channel.IsAvailable() {
		logs.Infof("unrecognized tr tag %q, drop", ev.Tag)
		return
	}

	// The cache update precedes Resolve so awaiters always read a price at
	// least as fresh as their own response.
	if ev.Channel == enum.TRChannelPrice && !ev.Failed && ev.Price.Price > 0 {
		e.cacheLastPrice(ev.Price.Code, ev.Price.Price)
	}

	if !e.correlator.Resolve(ev.Channel, ev) {
		logs.Infof("tr response on idle %s channel, drop", ev.Channel)
		return
	}

	if ev.Channel == enum.TRChannelBalance {
		e.onBalanceSnapshot(ev)
	}
}

// onBalanceSnapshot reconciles the ledger from a balance response. Nothing
// awaits the balance channel; the router consumes the response itself.
func (e *Engine) onBalanceSnapshot(ev adapter.TRResponseEvent) {
	if ev.Failed {
		logs.Errorf("balance snapshot failed, tag: %q", ev.Tag)
		return
	}
	if !e.ledger.ReconcileSnapshot(ev.Balance) {
		logs.Info("balance snapshot empty, keep local holdings")
		return
	}
	logs.Infof("balance snapshot reconciled, holdings: %d", len(ev.Balance))
}

func (e *Engine) onFill(ev adapter.FillEvent) {
	if ev.FillKind.ChangesBalance() {
		e.ledger.ApplyFill(ev.Code, ev.Quantity)
		if o, ok := e.tracker.MarkFilled(ev.Code); ok {
			logs.Infof("order %d filled, code: %s, held: %d", o.ID, ev.Code, ev.Quantity)
		}
	}

	if err := e.journal.RecordFill(ev.Code, ev.FillKind, ev.Quantity); err != nil {
		logs.Errorf("journal fill for %s, err: %+v", ev.Code, err)
	}

	e.scheduleSettle()
}

// scheduleSettle arms one settle timer per fill notice. Firing re-enters the
// router through the queue so settle handling never races event handling.
func (e *Engine) scheduleSettle() {
	if e.cfg.SettleDelay <= 0 {
		e.Publish(settleExpiredEvent{})
		return
	}
	time.AfterFunc(e.cfg.SettleDelay, func() {
		e.Publish(settleExpiredEvent{})
	})
}

// onSettleExpired clears every in-flight marker and asks the brokerage for a
// fresh balance snapshot, unless one is outstanding or the cooldown gate holds
// it back.
func (e *Engine) onSettleExpired(ctx context.Context) {
	e.ledger.ClearAllPending()

	if e.correlator.Busy(enum.TRChannelBalance) {
		return
	}
	if !e.ledger.AllowSnapshotRequest(time.Now()) {
		return
	}
	if _, err := e.correlator.Begin(enum.TRChannelBalance); err != nil {
		e.metrics.IncTRBusy()
		return
	}
	if err := e.session.RequestBalance(ctx, e.cfg.Account); err != nil {
		logs.Errorf("request balance snapshot, err: %+v", err)
		e.correlator.Resolve(enum.TRChannelBalance, adapter.TRResponseEvent{
			Channel: enum.TRChannelBalance,
			Failed:  true,
		})
	}
}

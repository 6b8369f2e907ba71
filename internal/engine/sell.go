package engine

import (
	"context"

	"github.com/yanun0323/logs"

	"main/internal/adapter"
	"main/internal/adapter/enum"
)

// DispatchSell liquidates the full held quantity for a code with one market
// order. Returns false when there is nothing to sell or an order for the code
// is already in flight, which makes repeated Left transitions idempotent.
func (e *Engine) DispatchSell(ctx context.Context, code adapter.Code) bool {
	held := e.ledger.HeldQuantity(code)
	if held <= 0 {
		logs.Infof("sell %s skipped, no holding", code)
		return false
	}
	if e.ledger.Pending(code) {
		logs.Infof("sell %s skipped, order in flight", code)
		return false
	}

	e.refreshPrice(ctx, code)

	req := adapter.OrderRequest{
		Account:  e.cfg.Account,
		Code:     code,
		Side:     enum.OrderSideSell,
		Type:     enum.OrderTypeMarket,
		Quantity: held,
	}

	e.ledger.SetPending(code, true)
	price, _ := e.lastPriceOf(code)
	o := e.tracker.Submit(req, price, 0)
	if err := e.session.SubmitOrder(ctx, req); err != nil {
		e.ledger.SetPending(code, false)
		if terr := e.tracker.MarkRejected(o.ID); terr != nil {
			logs.Errorf("mark order %d rejected, err: %+v", o.ID, terr)
		}
		e.metrics.IncOrderFailed()
		logs.Errorf("submit sell %s, err: %+v", code, err)
		if jerr := e.journal.RecordOrder(e.cfg.Account, o); jerr != nil {
			logs.Errorf("journal order %d, err: %+v", o.ID, jerr)
		}
		return false
	}

	if terr := e.tracker.MarkAcked(o.ID); terr != nil {
		logs.Errorf("mark order %d acked, err: %+v", o.ID, terr)
	}
	e.ledger.ClearHolding(code)
	e.metrics.IncSellSent()
	logs.Infof("sell %s submitted, qty: %d", code, held)
	if jerr := e.journal.RecordOrder(e.cfg.Account, o); jerr != nil {
		logs.Errorf("journal order %d, err: %+v", o.ID, jerr)
	}
	return true
}

// refreshPrice issues a best-effort price lookup so the cached price is
// current for logs and the journal. The dispatch never waits on it; the
// router caches the response when it arrives. A busy channel skips silently.
func (e *Engine) refreshPrice(ctx context.Context, code adapter.Code) {
	if _, err := e.correlator.Begin(enum.TRChannelPrice); err != nil {
		return
	}
	if err := e.session.RequestPrice(ctx, code); err != nil {
		e.correlator.Resolve(enum.TRChannelPrice, adapter.TRResponseEvent{
			Channel: enum.TRChannelPrice,
			Failed:  true,
		})
	}
}

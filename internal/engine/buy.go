package engine

import (
	"context"
	"errors"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/adapter"
	"main/internal/adapter/enum"
	"main/internal/risk"
	"main/pkg/exception"
)

// EnqueueBuy runs the admission check for one buy intent and appends approved
// intents to the buy queue. Returns false when admission denies.
func (e *Engine) EnqueueBuy(code adapter.Code) bool {
	e.mu.Lock()
	_, queued := e.queued[code]
	e.mu.Unlock()

	decision := e.admission.EvaluateBuy(code, risk.StateView{
		Queued:       queued,
		PendingOrder: e.ledger.Pending(code),
		Accumulated:  e.ledger.AccumulatedBuyAmount(code),
	})
	if decision.Action == risk.ActionDeny {
		e.metrics.IncDeny(decision.Reason)
		logs.Infof("buy %s denied: %s", code, decision.Reason)
		return false
	}

	e.mu.Lock()
	if _, dup := e.queued[code]; dup {
		e.mu.Unlock()
		e.metrics.IncDeny(risk.ReasonAlreadyQueued)
		return false
	}
	e.queued[code] = struct{}{}
	e.buyQueue = append(e.buyQueue, buyEntry{Code: code, TargetAmount: decision.Remaining})
	e.mu.Unlock()

	logs.Infof("buy %s queued, target: %d", code, decision.Remaining)
	e.wakeBuyWorker()
	return true
}

func (e *Engine) wakeBuyWorker() {
	select {
	case e.buyWake <- struct{}{}:
	default:
	}
}

// popBuy removes the head entry. Queue membership is kept until finishBuy so
// re-triggers arriving mid-submission stay deduplicated.
func (e *Engine) popBuy() (buyEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.buyQueue) == 0 {
		return buyEntry{}, false
	}
	entry := e.buyQueue[0]
	e.buyQueue = e.buyQueue[1:]
	return entry, true
}

func (e *Engine) finishBuy(code adapter.Code) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.queued, code)
}

func (e *Engine) runBuyWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.buyWake:
		}

		for {
			entry, ok := e.popBuy()
			if !ok {
				break
			}
			start := time.Now()
			if !e.sleepSpacing(ctx) {
				e.finishBuy(entry.Code)
				return
			}
			e.processBuy(ctx, entry)
			e.finishBuy(entry.Code)
			e.metrics.ObserveBuyPipeline(time.Since(start))
		}
	}
}

// sleepSpacing enforces the minimum gap between consecutive submissions.
func (e *Engine) sleepSpacing(ctx context.Context) bool {
	if e.cfg.OrderSpacing <= 0 {
		return true
	}
	t := time.NewTimer(e.cfg.OrderSpacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// processBuy sizes one buy from the remaining headroom and the current price,
// then submits it. Capital is committed only on a successful submission.
func (e *Engine) processBuy(ctx context.Context, entry buyEntry) {
	code := entry.Code

	remaining := e.admission.Cap() - e.ledger.AccumulatedBuyAmount(code)
	if remaining <= 0 {
		logs.Infof("buy %s dropped, cap already committed", code)
		return
	}

	price, err := e.lookupPrice(ctx, code)
	if err != nil {
		logs.Errorf("buy %s price lookup, err: %+v", code, err)
		return
	}

	quantity := adapter.Quantity(remaining / adapter.Amount(price))
	if quantity <= 0 {
		logs.Infof("buy %s dropped, remaining %d below price %d", code, remaining, price)
		return
	}
	amount := adapter.Amount(quantity) * adapter.Amount(price)

	req := adapter.OrderRequest{
		Account:  e.cfg.Account,
		Code:     code,
		Side:     enum.OrderSideBuy,
		Type:     enum.OrderTypeMarket,
		Quantity: quantity,
	}

	e.ledger.SetPending(code, true)
	o := e.tracker.Submit(req, price, amount)
	if err := e.session.SubmitOrder(ctx, req); err != nil {
		e.ledger.SetPending(code, false)
		if terr := e.tracker.MarkRejected(o.ID); terr != nil {
			logs.Errorf("mark order %d rejected, err: %+v", o.ID, terr)
		}
		e.metrics.IncOrderFailed()
		logs.Errorf("submit buy %s, err: %+v", code, err)
	} else {
		if terr := e.tracker.MarkAcked(o.ID); terr != nil {
			logs.Errorf("mark order %d acked, err: %+v", o.ID, terr)
		}
		e.ledger.AddAccumulated(code, amount)
		e.metrics.IncOrderSent()
		logs.Infof("buy %s submitted, qty: %d, price: %d, amount: %d", code, quantity, price, amount)
	}

	if jerr := e.journal.RecordOrder(e.cfg.Account, o); jerr != nil {
		logs.Errorf("journal order %d, err: %+v", o.ID, jerr)
	}
}

// lookupPrice claims the price channel, issues the lookup and awaits the
// routed response.
func (e *Engine) lookupPrice(ctx context.Context, code adapter.Code) (adapter.Price, error) {
	p, err := e.correlator.Begin(enum.TRChannelPrice)
	if err != nil {
		if errors.Is(err, exception.ErrTRChannelBusy) {
			e.metrics.IncTRBusy()
		}
		return 0, err
	}

	if err := e.session.RequestPrice(ctx, code); err != nil {
		e.correlator.Resolve(enum.TRChannelPrice, adapter.TRResponseEvent{
			Channel: enum.TRChannelPrice,
			Failed:  true,
		})
		return 0, err
	}

	resp, err := p.Await(ctx)
	if err != nil {
		return 0, err
	}
	if resp.Price.Price <= 0 {
		return 0, exception.ErrTRNonPositivePrice
	}
	return resp.Price.Price, nil
}

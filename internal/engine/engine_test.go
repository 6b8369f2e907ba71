package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/adapter"
	"main/internal/adapter/enum"
	"main/internal/condition"
	"main/internal/ledger"
	"main/internal/obs"
	"main/internal/risk"
)

type fakeSession struct {
	mu          sync.Mutex
	engine      *Engine
	prices      map[adapter.Code]adapter.Price
	balance     []adapter.BalanceEntry
	submitErr   error
	submitted   []adapter.OrderRequest
	submitTimes []time.Time
	balanceReqs int
	subscribed  []string

	orderCh chan adapter.OrderRequest
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		prices:  make(map[adapter.Code]adapter.Price),
		orderCh: make(chan adapter.OrderRequest, 16),
	}
}

func (s *fakeSession) SubmitOrder(_ context.Context, req adapter.OrderRequest) error {
	s.mu.Lock()
	err := s.submitErr
	s.submitted = append(s.submitted, req)
	s.submitTimes = append(s.submitTimes, time.Now())
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.orderCh <- req
	return nil
}

func (s *fakeSession) RequestPrice(_ context.Context, code adapter.Code) error {
	s.mu.Lock()
	price, ok := s.prices[code]
	eng := s.engine
	s.mu.Unlock()
	if eng == nil {
		return nil
	}
	eng.Publish(adapter.TRResponseEvent{
		Tag:     "opt10001",
		Channel: enum.TRChannelPrice,
		Failed:  !ok,
		Price:   adapter.PriceQuote{Code: code, Price: price},
	})
	return nil
}

func (s *fakeSession) RequestBalance(_ context.Context, _ string) error {
	s.mu.Lock()
	s.balanceReqs++
	entries := append([]adapter.BalanceEntry(nil), s.balance...)
	eng := s.engine
	s.mu.Unlock()
	if eng == nil {
		return nil
	}
	eng.Publish(adapter.TRResponseEvent{
		Tag:     "opw00018",
		Channel: enum.TRChannelBalance,
		Balance: entries,
	})
	return nil
}

func (s *fakeSession) SubscribeCondition(_ context.Context, _ int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribed = append(s.subscribed, name)
	return nil
}

func (s *fakeSession) orders() []adapter.OrderRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]adapter.OrderRequest(nil), s.submitted...)
}

func (s *fakeSession) balanceRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balanceReqs
}

func newTestEngine(cfg Config, session *fakeSession, capAmount adapter.Amount) *Engine {
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = 64
	}
	eng := New(cfg, session, Components{
		Classifier: condition.NewClassifier([]string{"momentum-breakout"}, []string{"trend-exit"}),
		Ledger:     ledger.New(time.Hour),
		Admission:  risk.NewEngine(risk.Config{PerInstrumentCap: capAmount}),
		Metrics:    obs.NewMetrics(),
	})
	session.engine = eng
	return eng
}

func startEngine(t *testing.T, eng *Engine) {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	t.Cleanup(cancel)
	go func() { _ = eng.Run(ctx) }()
}

func loadConditions(eng *Engine) {
	eng.classifier.Classify([]adapter.Condition{
		{Index: 1, Name: "momentum-breakout"},
		{Index: 2, Name: "trend-exit"},
		{Index: 3, Name: "watch-only"},
	})
}

func TestBuyPipelineSizesOrderFromRemainingCap(t *testing.T) {
	session := newFakeSession()
	session.prices["005930"] = 15000
	eng := newTestEngine(Config{
		Account:      "8012345-01",
		OrderSpacing: time.Millisecond,
		SettleDelay:  time.Hour,
	}, session, 300000)
	startEngine(t, eng)

	eng.Publish(adapter.ConditionListEvent{Conditions: []adapter.Condition{
		{Index: 1, Name: "momentum-breakout"},
	}})
	eng.Publish(adapter.TransitionEvent{
		Code:           "005930",
		Direction:      enum.TransitionEntered,
		ConditionIndex: 1,
		HasIndex:       true,
	})

	select {
	case req := <-session.orderCh:
		assert.Equal(t, adapter.Code("005930"), req.Code)
		assert.Equal(t, enum.OrderSideBuy, req.Side)
		assert.Equal(t, enum.OrderTypeMarket, req.Type)
		assert.Equal(t, adapter.Quantity(20), req.Quantity)
	case <-time.After(2 * time.Second):
		t.Fatal("no order submitted")
	}

	require.Eventually(t, func() bool {
		return eng.ledger.AccumulatedBuyAmount("005930") == 300000
	}, 2*time.Second, 10*time.Millisecond)

	// The full cap is committed now, further intents must be denied.
	assert.False(t, eng.EnqueueBuy("005930"))
}

func TestBuyOrderSpacing(t *testing.T) {
	session := newFakeSession()
	session.prices["005930"] = 15000
	session.prices["000660"] = 10000
	eng := newTestEngine(Config{
		Account:      "8012345-01",
		OrderSpacing: 120 * time.Millisecond,
		SettleDelay:  time.Hour,
	}, session, 300000)
	startEngine(t, eng)

	loadConditions(eng)
	eng.Publish(adapter.ScanListEvent{ConditionIndex: 1, Codes: []adapter.Code{"005930", "000660"}})

	var reqs []adapter.OrderRequest
	for len(reqs) < 2 {
		select {
		case req := <-session.orderCh:
			reqs = append(reqs, req)
		case <-time.After(3 * time.Second):
			t.Fatal("orders not submitted")
		}
	}

	assert.Equal(t, adapter.Code("005930"), reqs[0].Code)
	assert.Equal(t, adapter.Code("000660"), reqs[1].Code)

	session.mu.Lock()
	gap := session.submitTimes[1].Sub(session.submitTimes[0])
	session.mu.Unlock()
	assert.GreaterOrEqual(t, gap, 100*time.Millisecond)
}

func TestEnqueueBuyDeduplicates(t *testing.T) {
	session := newFakeSession()
	eng := newTestEngine(Config{Account: "8012345-01"}, session, 300000)

	assert.True(t, eng.EnqueueBuy("005930"))
	assert.False(t, eng.EnqueueBuy("005930"))
	assert.Len(t, eng.buyQueue, 1)
}

func TestEnqueueBuyDeniedWhilePending(t *testing.T) {
	session := newFakeSession()
	eng := newTestEngine(Config{Account: "8012345-01"}, session, 300000)

	eng.ledger.SetPending("005930", true)
	assert.False(t, eng.EnqueueBuy("005930"))
	assert.Empty(t, eng.buyQueue)
}

func TestScanListDeduplicatesCodes(t *testing.T) {
	session := newFakeSession()
	eng := newTestEngine(Config{Account: "8012345-01"}, session, 300000)
	loadConditions(eng)

	eng.onScanList(adapter.ScanListEvent{
		ConditionIndex: 1,
		Codes:          []adapter.Code{"005930", "005930", "000660"},
	})

	require.Len(t, eng.buyQueue, 2)
	assert.Equal(t, adapter.Code("005930"), eng.buyQueue[0].Code)
	assert.Equal(t, adapter.Code("000660"), eng.buyQueue[1].Code)
}

func TestScanListIgnoredForSellTrigger(t *testing.T) {
	session := newFakeSession()
	eng := newTestEngine(Config{Account: "8012345-01"}, session, 300000)
	loadConditions(eng)

	eng.onScanList(adapter.ScanListEvent{ConditionIndex: 2, Codes: []adapter.Code{"005930"}})
	assert.Empty(t, eng.buyQueue)
}

func TestDispatchSellLiquidatesFullHolding(t *testing.T) {
	session := newFakeSession()
	eng := newTestEngine(Config{Account: "8012345-01"}, session, 300000)

	eng.ledger.ApplyFill("005930", 20)
	require.True(t, eng.DispatchSell(t.Context(), "005930"))

	orders := session.orders()
	require.Len(t, orders, 1)
	assert.Equal(t, enum.OrderSideSell, orders[0].Side)
	assert.Equal(t, enum.OrderTypeMarket, orders[0].Type)
	assert.Equal(t, adapter.Quantity(20), orders[0].Quantity)

	// Holding is cleared optimistically and the pending marker makes a
	// repeated Left transition a no-op.
	assert.Equal(t, adapter.Quantity(0), eng.ledger.HeldQuantity("005930"))
	assert.False(t, eng.DispatchSell(t.Context(), "005930"))
	assert.Len(t, session.orders(), 1)
}

func TestDispatchSellSkipsWithoutHolding(t *testing.T) {
	session := newFakeSession()
	eng := newTestEngine(Config{Account: "8012345-01"}, session, 300000)

	assert.False(t, eng.DispatchSell(t.Context(), "005930"))
	assert.Empty(t, session.orders())
}

func TestTransitionWithoutIndexIgnored(t *testing.T) {
	session := newFakeSession()
	eng := newTestEngine(Config{Account: "8012345-01"}, session, 300000)
	loadConditions(eng)

	eng.onTransition(t.Context(), adapter.TransitionEvent{
		Code:      "005930",
		Direction: enum.TransitionEntered,
	})
	assert.Empty(t, eng.buyQueue)
}

func TestUnrecognizedTRTagDropped(t *testing.T) {
	session := newFakeSession()
	eng := newTestEngine(Config{Account: "8012345-01"}, session, 300000)

	eng.onTRResponse(adapter.TRResponseEvent{Tag: "opw99999"})
	assert.False(t, eng.correlator.Busy(enum.TRChannelPrice))
	assert.False(t, eng.correlator.Busy(enum.TRChannelBalance))
}

func TestFillUpdatesLedgerAndTracker(t *testing.T) {
	session := newFakeSession()
	eng := newTestEngine(Config{Account: "8012345-01", SettleDelay: time.Hour}, session, 300000)

	eng.onFill(adapter.FillEvent{FillKind: enum.FillKindExecution, Code: "005930", Quantity: 12})
	assert.Equal(t, adapter.Quantity(12), eng.ledger.HeldQuantity("005930"))

	// Confirmations never touch the balance.
	eng.onFill(adapter.FillEvent{FillKind: enum.FillKindConfirmation, Code: "005930", Quantity: 0})
	assert.Equal(t, adapter.Quantity(12), eng.ledger.HeldQuantity("005930"))
}

func TestSettleExpiredClearsPendingAndReconciles(t *testing.T) {
	session := newFakeSession()
	session.balance = []adapter.BalanceEntry{{Code: "005930", Quantity: 7}}
	eng := newTestEngine(Config{
		Account:      "8012345-01",
		OrderSpacing: time.Millisecond,
	}, session, 300000)
	startEngine(t, eng)

	eng.ledger.SetPending("005930", true)
	eng.Publish(adapter.FillEvent{FillKind: enum.FillKindExecution, Code: "005930", Quantity: 20})

	require.Eventually(t, func() bool {
		return !eng.ledger.Pending("005930") && eng.ledger.HeldQuantity("005930") == 7
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, session.balanceRequests())

	// A second fill inside the snapshot cooldown still clears pending but
	// issues no new balance request.
	eng.ledger.SetPending("005930", true)
	eng.Publish(adapter.FillEvent{FillKind: enum.FillKindExecution, Code: "005930", Quantity: 20})

	require.Eventually(t, func() bool {
		return !eng.ledger.Pending("005930")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, session.balanceRequests())
}

package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/adapter"
	"main/internal/bus"
	"main/internal/condition"
	"main/internal/journal"
	"main/internal/ledger"
	"main/internal/obs"
	"main/internal/orders"
	"main/internal/risk"
	"main/internal/tr"
	"main/pkg/exception"
)

// Config carries the resolved coordinator settings.
type Config struct {
	Account       string
	OrderSpacing  time.Duration
	SettleDelay   time.Duration
	QueueCapacity int
}

// Components are the shared parts the engine coordinates. Journal and Metrics
// may be nil.
type Components struct {
	Classifier *condition.Classifier
	Ledger     *ledger.Ledger
	Admission  *risk.Engine
	Journal    *journal.Journal
	Metrics    *obs.Metrics
}

type buyEntry struct {
	Code         adapter.Code
	TargetAmount adapter.Amount
}

// Engine is the order-execution coordinator. All routing decisions run on the
// single queue-draining goroutine; buy submissions run on one dedicated worker
// so spacing and sizing stay strictly serialized.
type Engine struct {
	cfg     Config
	session Session

	queue      *bus.Queue
	classifier *condition.Classifier
	ledger     *ledger.Ledger
	correlator *tr.Correlator
	admission  *risk.Engine
	tracker    *orders.Tracker
	journal    *journal.Journal
	metrics    *obs.Metrics

	mu        sync.Mutex
	buyQueue  []buyEntry
	queued    map[adapter.Code]struct{}
	lastPrice map[adapter.Code]adapter.Price

	buyWake chan struct{}
	running atomic.Bool
}

// New wires an engine from its components. The queue, correlator and order
// tracker are engine-owned and created here.
func New(cfg Config, session Session, components Components) *Engine {
	return &Engine{
		cfg:        cfg,
		session:    session,
		queue:      bus.NewQueue(cfg.QueueCapacity),
		classifier: components.Classifier,
		ledger:     components.Ledger,
		correlator: tr.NewCorrelator(),
		admission:  components.Admission,
		tracker:    orders.NewTracker(),
		journal:    components.Journal,
		metrics:    components.Metrics,
		queued:     make(map[adapter.Code]struct{}),
		lastPrice:  make(map[adapter.Code]adapter.Price),
		buyWake:    make(chan struct{}, 1),
	}
}

// Run starts the buy worker and drains the event queue until the context is
// done or the queue is closed. It blocks the calling goroutine.
func (e *Engine) Run(ctx context.Context) error {
	if e.session == nil {
		return exception.ErrEngineNilSession
	}
	if !e.running.CompareAndSwap(false, true) {
		return exception.ErrEngineAlreadyRunning
	}

	go e.runBuyWorker(ctx)
	e.queue.Run(ctx, func(ev adapter.Event) {
		e.route(ctx, ev)
	})
	return nil
}

// Publish hands an event to the router queue. A full queue drops the event
// rather than blocking the feed callback.
func (e *Engine) Publish(ev adapter.Event) {
	if err := e.queue.TryPublish(ev); err != nil {
		e.metrics.IncQueueDrop()
		logs.Errorf("drop event, kind: %d, err: %+v", ev.Kind(), err)
	}
}

// Close stops the queue from accepting new events.
func (e *Engine) Close() {
	e.queue.Close()
}

// Ledger exposes the position ledger for shutdown reporting.
func (e *Engine) Ledger() *ledger.Ledger {
	return e.ledger
}

func (e *Engine) cacheLastPrice(code adapter.Code, price adapter.Price) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastPrice[code] = price
}

func (e *Engine) lastPriceOf(code adapter.Code) (adapter.Price, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	price, ok := e.lastPrice[code]
	return price, ok
}

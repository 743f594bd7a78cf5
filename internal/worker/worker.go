package worker

import (
	"context"
	"sync"
	"time"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Sweeper evicts idle sessions and reports how many remain
type Sweeper interface {
	Sweep(now time.Time) int
	Len() int
}

// SessionSweeper periodically evicts idle sessions from an in-memory store
type SessionSweeper struct {
	store    Sweeper
	interval time.Duration
	now      func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewSessionSweeper creates a sweeper running every interval
func NewSessionSweeper(store Sweeper, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{
		store:    store,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until ctx is done or Stop is called
func (w *SessionSweeper) Start(ctx context.Context) error {
	defer close(w.done)
	logger := util.GetLogger()
	logger.Info("Starting session sweeper", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case <-ticker.C:
			w.SweepOnce()
		}
	}
}

// SweepOnce evicts idle sessions now
func (w *SessionSweeper) SweepOnce() int {
	evicted := w.store.Sweep(w.now())
	util.SessionsEvictedTotal.Add(float64(evicted))
	util.ActiveSessions.Set(float64(w.store.Len()))
	if evicted > 0 {
		util.GetLogger().Info("Evicted idle sessions", zap.Int("count", evicted))
	}
	return evicted
}

// Stop ends the loop and waits for it to return
func (w *SessionSweeper) Stop() error {
	util.GetLogger().Info("Stopping session sweeper")
	w.once.Do(func() { close(w.stop) })
	<-w.done
	return nil
}

// Tally is a running summary of consumed storefront events
type Tally struct {
	Sessions       int
	CheckoutsBegun int
	OrdersPlaced   int
	ItemsSold      int
	AdviceOutcomes map[string]int
}

// InsightsWorker consumes storefront events and turns them into metrics
type InsightsWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler

	mu    sync.Mutex
	tally Tally
}

// NewInsightsWorker creates a new insights worker
func NewInsightsWorker(consumer *broker.Consumer) *InsightsWorker {
	w := &InsightsWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		tally:        Tally{AdviceOutcomes: map[string]int{}},
	}

	w.eventHandler.OnSessionStarted(w.handleSessionStarted)
	w.eventHandler.OnCheckoutStarted(w.handleCheckoutStarted)
	w.eventHandler.OnCheckoutCompleted(w.handleCheckoutCompleted)
	w.eventHandler.OnAdviceRequested(w.handleAdviceRequested)

	return w
}

// Start starts the worker
func (w *InsightsWorker) Start(ctx context.Context) error {
	util.GetLogger().Info("Starting insights worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *InsightsWorker) Stop() error {
	util.GetLogger().Info("Stopping insights worker")
	return w.consumer.Close()
}

// Tally returns a copy of the running summary
func (w *InsightsWorker) Tally() Tally {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := w.tally
	t.AdviceOutcomes = make(map[string]int, len(w.tally.AdviceOutcomes))
	for k, v := range w.tally.AdviceOutcomes {
		t.AdviceOutcomes[k] = v
	}
	return t
}

func (w *InsightsWorker) handleSessionStarted(_ context.Context, _ *models.SessionStartedEvent) error {
	util.InsightsEventsTotal.WithLabelValues(models.EventTypeSessionStarted).Inc()
	w.mu.Lock()
	w.tally.Sessions++
	w.mu.Unlock()
	return nil
}

func (w *InsightsWorker) handleCheckoutStarted(_ context.Context, _ *models.CheckoutStartedEvent) error {
	util.InsightsEventsTotal.WithLabelValues(models.EventTypeCheckoutStarted).Inc()
	w.mu.Lock()
	w.tally.CheckoutsBegun++
	w.mu.Unlock()
	return nil
}

func (w *InsightsWorker) handleCheckoutCompleted(_ context.Context, event *models.CheckoutCompletedEvent) error {
	util.InsightsEventsTotal.WithLabelValues(models.EventTypeCheckoutCompleted).Inc()
	util.InsightsBasketItems.Observe(float64(event.Cart.ItemCount))
	util.InsightsSalesTotal.Add(event.Cart.Subtotal.InexactFloat64())

	w.mu.Lock()
	w.tally.OrdersPlaced++
	w.tally.ItemsSold += event.Cart.ItemCount
	w.mu.Unlock()

	util.GetLogger().Info("Order placed",
		zap.String("session_id", event.SessionID),
		zap.Int("items", event.Cart.ItemCount),
		zap.String("subtotal", event.Cart.Subtotal.StringFixed(2)))
	return nil
}

func (w *InsightsWorker) handleAdviceRequested(_ context.Context, event *models.AdviceRequestedEvent) error {
	util.InsightsEventsTotal.WithLabelValues(models.EventTypeAdviceRequested).Inc()
	w.mu.Lock()
	w.tally.AdviceOutcomes[event.Outcome]++
	w.mu.Unlock()
	return nil
}

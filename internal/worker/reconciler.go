package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/topupshop/internal/domain/model"
	"github.com/polkiloo/topupshop/internal/pkg/clock"
)

// maxBackoffFactor caps the quarantine of a failing order at this many intervals.
const maxBackoffFactor = 32

// OrderSource lists orders that still wait for a final provider status.
type OrderSource interface {
	NonTerminalOrders(ctx context.Context, limit int) ([]model.Order, error)
}

// OrderRefresher pulls the provider status of one order and reconciles it.
type OrderRefresher interface {
	RefreshOrder(ctx context.Context, order model.Order) (bool, error)
}

// TickStats summarises one reconciliation scan.
type TickStats struct {
	Scanned int
	Applied int
	Failed  int
	Skipped int
}

type backoff struct {
	failures int
	until    time.Time
}

// Reconciler periodically polls the provider for every non-terminal order.
// An order whose refresh fails is skipped for an exponentially growing period.
type Reconciler struct {
	source     OrderSource
	refresher  OrderRefresher
	clock      clock.Clock
	interval   time.Duration
	maxBackoff time.Duration
	batchSize  int
	workers    int
	logger     *slog.Logger

	mu      sync.Mutex
	backoff map[string]backoff

	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReconciler constructs the reconciliation loop.
func NewReconciler(source OrderSource, refresher OrderRefresher, clk clock.Clock, interval time.Duration, batchSize, workers int, logger *slog.Logger) *Reconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reconciler{
		source:     source,
		refresher:  refresher,
		clock:      clk,
		interval:   interval,
		maxBackoff: interval * maxBackoffFactor,
		batchSize:  batchSize,
		workers:    workers,
		logger:     logger,
		backoff:    make(map[string]backoff),
	}
}

// Start launches the periodic scan.
func (r *Reconciler) Start(ctx context.Context) {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.loop(runCtx)
}

// Stop cancels the loop and waits for the running scan to finish.
func (r *Reconciler) Stop() {
	r.runMu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.runMu.Unlock()

	r.wg.Wait()
}

func (r *Reconciler) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := r.Tick(ctx)
			if stats.Scanned > 0 {
				r.logger.Info("reconciliation scan finished",
					slog.Int("scanned", stats.Scanned),
					slog.Int("applied", stats.Applied),
					slog.Int("failed", stats.Failed),
					slog.Int("skipped", stats.Skipped),
				)
			}
		}
	}
}

// Tick runs one full scan synchronously. Quarantined orders are fetched on
// top of the batch so they never take the place of orders that are due.
func (r *Reconciler) Tick(ctx context.Context) TickStats {
	var stats TickStats
	orders, err := r.source.NonTerminalOrders(ctx, r.batchSize+r.quarantineSize())
	if err != nil {
		r.logger.Error("fetch orders for reconciliation failed", slog.String("error", err.Error()))
		return stats
	}
	stats.Scanned = len(orders)
	now := r.clock.Now()
	r.prune(orders)

	due := make([]model.Order, 0, len(orders))
	for _, order := range orders {
		if order.ExternalID == "" || r.quarantined(order.ID, now) || len(due) == r.batchSize {
			stats.Skipped++
			continue
		}
		due = append(due, order)
	}
	if len(due) == 0 {
		return stats
	}

	var applied, failed, dispatched atomic.Int32
	jobs := make(chan model.Order)
	workers := min(r.workers, len(due))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for order := range jobs {
				ok, err := r.refresher.RefreshOrder(ctx, order)
				if err != nil {
					failed.Add(1)
					r.recordFailure(order.ID, now)
					r.logger.Warn("reconcile order failed",
						slog.String("order_id", order.ID),
						slog.String("external_id", order.ExternalID),
						slog.String("error", err.Error()),
					)
					continue
				}
				r.recordSuccess(order.ID)
				if ok {
					applied.Add(1)
				}
			}
		}()
	}

feed:
	for _, order := range due {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- order:
			dispatched.Add(1)
		}
	}
	close(jobs)
	wg.Wait()

	stats.Applied = int(applied.Load())
	stats.Failed = int(failed.Load())
	stats.Skipped += len(due) - int(dispatched.Load())
	return stats
}

func (r *Reconciler) quarantineSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.backoff)
}

func (r *Reconciler) quarantined(orderID string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.backoff[orderID]
	return ok && now.Before(b.until)
}

func (r *Reconciler) recordFailure(orderID string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.backoff[orderID]
	b.failures++
	b.until = now.Add(r.backoffDelay(b.failures))
	r.backoff[orderID] = b
}

func (r *Reconciler) recordSuccess(orderID string) {
	r.mu.Lock()
	delete(r.backoff, orderID)
	r.mu.Unlock()
}

// backoffDelay is interval·2^(failures-1), capped at maxBackoff.
func (r *Reconciler) backoffDelay(failures int) time.Duration {
	delay := r.interval
	for i := 1; i < failures; i++ {
		delay *= 2
		if delay >= r.maxBackoff {
			return r.maxBackoff
		}
	}
	return delay
}

// prune forgets orders that left the non-terminal set.
func (r *Reconciler) prune(current []model.Order) {
	live := make(map[string]struct{}, len(current))
	for _, o := range current {
		live[o.ID] = struct{}{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.backoff {
		if _, ok := live[id]; !ok {
			delete(r.backoff, id)
		}
	}
}

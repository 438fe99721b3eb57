package service

import (
	"context"
	"sync"
	"time"

	"github.com/dafibh/fortuna/loan-ledger/internal/domain"
	"github.com/dafibh/fortuna/loan-ledger/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AccrualWorker is a background worker that announces newly started interest periods.
// Accrual itself is derived on read; the worker only watches the period count of
// active loans and publishes loan.interest_accrued when it grows.
type AccrualWorker struct {
	loanService *LoanService
	publisher   websocket.EventPublisher
	logger      zerolog.Logger
	interval    time.Duration
	seen        map[uuid.UUID]int
	stopCh      chan struct{}
	doneCh      chan struct{}
	stopOnce    sync.Once
	mu          sync.Mutex
	started     bool
	running     bool
}

// AccrualWorkerConfig holds configuration for the accrual worker
type AccrualWorkerConfig struct {
	Interval time.Duration // How often to sweep active loans
}

// DefaultAccrualWorkerConfig returns sensible defaults
func DefaultAccrualWorkerConfig() AccrualWorkerConfig {
	return AccrualWorkerConfig{Interval: 1 * time.Hour}
}

// AccrualSweepResult summarises one sweep
type AccrualSweepResult struct {
	Checked   int
	Announced int
}

// NewAccrualWorker creates a new accrual worker
func NewAccrualWorker(
	loanService *LoanService,
	publisher websocket.EventPublisher,
	logger zerolog.Logger,
	config AccrualWorkerConfig,
) *AccrualWorker {
	if config.Interval <= 0 {
		config.Interval = 1 * time.Hour
	}
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}

	return &AccrualWorker{
		loanService: loanService,
		publisher:   publisher,
		logger:      logger.With().Str("component", "accrual_worker").Logger(),
		interval:    config.Interval,
		seen:        make(map[uuid.UUID]int),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background sweep. A worker runs at most once; later calls are no-ops.
func (w *AccrualWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Msg("Starting accrual worker")

	go w.run(ctx)
}

// Stop gracefully stops the accrual worker and waits for the current sweep.
// It may be called any number of times, from any goroutine.
func (w *AccrualWorker) Stop() {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if !started {
		return
	}

	w.stopOnce.Do(func() {
		w.logger.Info().Msg("Stopping accrual worker")
		close(w.stopCh)
	})
	<-w.doneCh
	w.logger.Info().Msg("Accrual worker stopped")
}

func (w *AccrualWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Prime the period counts without announcing anything
	w.sweep(ctx, false)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setStopped()
			return
		case <-w.stopCh:
			w.setStopped()
			return
		case <-ticker.C:
			w.sweep(ctx, true)
		}
	}
}

func (w *AccrualWorker) setStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// Sweep checks every active loan once and announces loans whose period count grew
// since the previous sweep. Loans seen for the first time are only recorded.
func (w *AccrualWorker) Sweep(ctx context.Context) (*AccrualSweepResult, error) {
	return w.sweepOnce(ctx, true)
}

func (w *AccrualWorker) sweep(ctx context.Context, announce bool) {
	startTime := time.Now()
	result, err := w.sweepOnce(ctx, announce)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to list loans for accrual sweep")
		return
	}
	w.logger.Info().
		Int("checked", result.Checked).
		Int("announced", result.Announced).
		Dur("elapsed", time.Since(startTime)).
		Msg("Completed accrual sweep")
}

func (w *AccrualWorker) sweepOnce(ctx context.Context, announce bool) (*AccrualSweepResult, error) {
	items, err := w.loanService.List(ctx, domain.LoanFilter{})
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	result := &AccrualSweepResult{}
	active := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		id := item.Loan.ID
		active[id] = struct{}{}
		result.Checked++

		previous, known := w.seen[id]
		w.seen[id] = item.State.PeriodsStarted
		if !announce || !known || item.State.PeriodsStarted <= previous {
			continue
		}

		w.publisher.Publish(id, websocket.LoanInterestAccrued(map[string]interface{}{
			"loanId":          id,
			"periodsStarted":  item.State.PeriodsStarted,
			"newPeriods":      item.State.PeriodsStarted - previous,
			"periodsUnpaid":   item.State.PeriodsUnpaid,
			"interestAccrued": item.State.InterestAccrued.StringFixed(2),
		}))
		result.Announced++
		w.logger.Debug().
			Str("loan_id", id.String()).
			Int("periods_started", item.State.PeriodsStarted).
			Msg("Announced new interest period")
	}

	// forget closed and deleted loans
	for id := range w.seen {
		if _, ok := active[id]; !ok {
			delete(w.seen, id)
		}
	}
	return result, nil
}

// IsRunning returns whether the worker is currently running
func (w *AccrualWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

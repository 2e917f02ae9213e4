package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/shulefund/payments/internal/models"
	"github.com/shulefund/payments/internal/platform/backend"
	"github.com/shulefund/payments/pkg/config"
	"github.com/shulefund/payments/pkg/metrics"
)

var (
	// ErrWatchActive: a watch for this transaction id is already running.
	// Guarding here prevents duplicate terminal-state handling, e.g. a
	// success callback firing twice.
	ErrWatchActive = errors.New("a status watch is already active for this transaction")

	// ErrInconclusive: the poll budget expired without a terminal status.
	// The transaction is still pending, not failed; the backend may resolve
	// it later via webhook.
	ErrInconclusive = errors.New("payment still pending, check back later")
)

// StatusSource answers authoritative status queries.
type StatusSource interface {
	GetTransactionStatus(ctx context.Context, transactionID string) (*models.PaymentTransaction, error)
}

// Poller watches backend-authoritative transaction status on a fixed cadence
// until a terminal state, cancellation, or the configured maximum wait.
type Poller struct {
	source   StatusSource
	log      *zap.SugaredLogger
	metrics  *metrics.Metrics
	interval time.Duration
	maxWait  time.Duration

	mu     sync.Mutex
	active map[string]struct{}
}

func New(cfg *config.Config, log *zap.SugaredLogger, source StatusSource, m *metrics.Metrics) *Poller {
	interval := cfg.Polling.Interval
	if interval <= 0 {
		interval = 4 * time.Second
	}
	maxWait := cfg.Polling.MaxWait
	if maxWait <= 0 {
		maxWait = 2 * time.Minute
	}
	return &Poller{
		source:   source,
		log:      log,
		metrics:  m,
		interval: interval,
		maxWait:  maxWait,
		active:   make(map[string]struct{}),
	}
}

// Watch is the handle for one running poll loop. Stop is idempotent and
// guaranteed to release the loop's timer and the per-id slot.
type Watch struct {
	transactionID string

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	tx  *models.PaymentTransaction
	err error
}

// Done closes when the watch stops for any reason.
func (w *Watch) Done() <-chan struct{} { return w.done }

// Stop cancels the watch and waits for the loop to release its resources.
func (w *Watch) Stop() {
	w.cancel()
	<-w.done
}

// Result returns the last observed view and the stop cause: nil on a terminal
// status, ErrInconclusive on budget expiry, or the cancellation error.
func (w *Watch) Result() (*models.PaymentTransaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tx, w.err
}

func (w *Watch) record(tx *models.PaymentTransaction, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if tx != nil {
		w.tx = tx
	}
	w.err = err
}

// Start begins watching transactionID. onUpdate fires for every accepted
// status change, including non-terminal ones (spinners reflect intermediate
// state). At most one watch per id may run at a time.
func (p *Poller) Start(ctx context.Context, transactionID string, onUpdate func(*models.PaymentTransaction)) (*Watch, error) {
	if transactionID == "" {
		return nil, errors.New("transaction id is required")
	}

	p.mu.Lock()
	if _, busy := p.active[transactionID]; busy {
		p.mu.Unlock()
		return nil, ErrWatchActive
	}
	p.active[transactionID] = struct{}{}
	p.mu.Unlock()

	wctx, cancel := context.WithCancel(ctx)
	w := &Watch{transactionID: transactionID, cancel: cancel, done: make(chan struct{})}
	if p.metrics != nil {
		p.metrics.WatchesActive.Inc()
	}

	go p.run(wctx, w, onUpdate)
	return w, nil
}

// Await is the blocking form: it watches until the loop stops and returns the
// final view and stop cause.
func (p *Poller) Await(ctx context.Context, transactionID string, onUpdate func(*models.PaymentTransaction)) (*models.PaymentTransaction, error) {
	w, err := p.Start(ctx, transactionID, onUpdate)
	if err != nil {
		return nil, err
	}
	<-w.Done()
	return w.Result()
}

func (p *Poller) run(ctx context.Context, w *Watch, onUpdate func(*models.PaymentTransaction)) {
	defer func() {
		p.mu.Lock()
		delete(p.active, w.transactionID)
		p.mu.Unlock()
		if p.metrics != nil {
			p.metrics.WatchesActive.Dec()
		}
		w.cancel()
		close(w.done)
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(p.maxWait)
	defer deadline.Stop()

	var view *models.PaymentTransaction

	for {
		observed, err := p.observe(ctx, w.transactionID)
		switch {
		case err != nil:
			// A transient status-check failure must not flip the transaction
			// to failed locally; try again on the next tick.
			p.log.Warnw("status poll failed, will retry",
				"transaction_id", w.transactionID, "err", err)
		case view == nil:
			view = observed
			w.record(view, nil)
			if onUpdate != nil {
				onUpdate(view)
			}
		default:
			if view.Refresh(observed) {
				w.record(view, nil)
				if onUpdate != nil {
					onUpdate(view)
				}
			}
		}

		if view != nil && view.IsTerminal() {
			if p.metrics != nil {
				p.metrics.PaymentsTerminal.WithLabelValues(string(view.Status)).Inc()
			}
			w.record(view, nil)
			return
		}

		select {
		case <-ctx.Done():
			w.record(view, ctx.Err())
			return
		case <-deadline.C:
			w.record(view, ErrInconclusive)
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) observe(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	if p.metrics != nil {
		p.metrics.PollTicks.Inc()
	}
	return p.source.GetTransactionStatus(ctx, transactionID)
}

func newSource(c *backend.Client) StatusSource { return c }

var Module = fx.Options(
	fx.Provide(newSource),
	fx.Provide(New),
)

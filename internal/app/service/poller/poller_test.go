package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shulefund/payments/internal/models"
	"github.com/shulefund/payments/pkg/config"
	"github.com/shulefund/payments/pkg/types"
)

// scriptedSource replays a fixed sequence of observations; the last entry
// repeats once the script runs out.
type scriptedSource struct {
	mu     sync.Mutex
	script []func() (*models.PaymentTransaction, error)
	i      int
}

func (s *scriptedSource) GetTransactionStatus(_ context.Context, id string) (*models.PaymentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step := s.script[s.i]
	if s.i < len(s.script)-1 {
		s.i++
	}
	return step()
}

func status(id string, st types.TransactionStatus) func() (*models.PaymentTransaction, error) {
	return func() (*models.PaymentTransaction, error) {
		return &models.PaymentTransaction{ID: id, Status: st, PaymentType: types.PaymentTypeDonation}, nil
	}
}

func failure(err error) func() (*models.PaymentTransaction, error) {
	return func() (*models.PaymentTransaction, error) { return nil, err }
}

func newTestPoller(src StatusSource, interval, maxWait time.Duration) *Poller {
	cfg := &config.Config{Polling: config.PollingConfig{Interval: interval, MaxWait: maxWait}}
	return New(cfg, zap.NewNop().Sugar(), src, nil)
}

func TestPoller_StopsOnTerminalAndReportsEachChange(t *testing.T) {
	src := &scriptedSource{script: []func() (*models.PaymentTransaction, error){
		status("tx-1", types.StatusInitiated),
		status("tx-1", types.StatusPending),
		status("tx-1", types.StatusProcessing),
		status("tx-1", types.StatusCompleted),
	}}
	p := newTestPoller(src, 2*time.Millisecond, time.Second)

	var mu sync.Mutex
	var seen []types.TransactionStatus
	tx, err := p.Await(context.Background(), "tx-1", func(tx *models.PaymentTransaction) {
		mu.Lock()
		seen = append(seen, tx.Status)
		mu.Unlock()
	})

	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, tx.Status)

	// every transition is reported, including intermediate ones, and the
	// terminal one exactly once
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []types.TransactionStatus{
		types.StatusInitiated,
		types.StatusPending,
		types.StatusProcessing,
		types.StatusCompleted,
	}, seen)
}

func TestPoller_TerminalFiresExactlyOnce(t *testing.T) {
	src := &scriptedSource{script: []func() (*models.PaymentTransaction, error){
		status("tx-1", types.StatusPending),
		status("tx-1", types.StatusCompleted),
		status("tx-1", types.StatusCompleted),
	}}
	p := newTestPoller(src, time.Millisecond, time.Second)

	var completions int
	_, err := p.Await(context.Background(), "tx-1", func(tx *models.PaymentTransaction) {
		if tx.Status == types.StatusCompleted {
			completions++
		}
	})
	require.NoError(t, err)
	require.Equal(t, 1, completions)
}

func TestPoller_SecondWatchForSameIDRejected(t *testing.T) {
	src := &scriptedSource{script: []func() (*models.PaymentTransaction, error){
		status("tx-1", types.StatusPending),
	}}
	p := newTestPoller(src, 5*time.Millisecond, time.Second)

	w, err := p.Start(context.Background(), "tx-1", nil)
	require.NoError(t, err)

	_, err = p.Start(context.Background(), "tx-1", nil)
	require.ErrorIs(t, err, ErrWatchActive)

	// a different transaction id is unaffected
	src2 := p // same poller
	w2, err := src2.Start(context.Background(), "tx-2", nil)
	require.NoError(t, err)
	w2.Stop()

	w.Stop()

	// once released, the id can be watched again
	w3, err := p.Start(context.Background(), "tx-1", nil)
	require.NoError(t, err)
	w3.Stop()
}

func TestPoller_BudgetExpiryIsInconclusiveNotFailed(t *testing.T) {
	src := &scriptedSource{script: []func() (*models.PaymentTransaction, error){
		status("tx-1", types.StatusPending),
	}}
	p := newTestPoller(src, 2*time.Millisecond, 20*time.Millisecond)

	tx, err := p.Await(context.Background(), "tx-1", nil)
	require.ErrorIs(t, err, ErrInconclusive)
	// the record may still complete later via webhook; it is not failed
	require.NotNil(t, tx)
	require.Equal(t, types.StatusPending, tx.Status)
}

func TestPoller_TransientErrorsDoNotFailTheWatch(t *testing.T) {
	src := &scriptedSource{script: []func() (*models.PaymentTransaction, error){
		failure(errors.New("connection reset")),
		failure(errors.New("connection reset")),
		status("tx-1", types.StatusCompleted),
	}}
	p := newTestPoller(src, time.Millisecond, time.Second)

	tx, err := p.Await(context.Background(), "tx-1", nil)
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, tx.Status)
}

func TestPoller_CancellationReleasesTheWatch(t *testing.T) {
	src := &scriptedSource{script: []func() (*models.PaymentTransaction, error){
		status("tx-1", types.StatusPending),
	}}
	p := newTestPoller(src, 5*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	w, err := p.Start(ctx, "tx-1", nil)
	require.NoError(t, err)

	cancel()
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancellation")
	}

	_, err = w.Result()
	require.ErrorIs(t, err, context.Canceled)

	// the per-id slot is released on this exit path too
	w2, err := p.Start(context.Background(), "tx-1", nil)
	require.NoError(t, err)
	w2.Stop()
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	src := &scriptedSource{script: []func() (*models.PaymentTransaction, error){
		status("tx-1", types.StatusPending),
	}}
	p := newTestPoller(src, 5*time.Millisecond, time.Minute)

	w, err := p.Start(context.Background(), "tx-1", nil)
	require.NoError(t, err)
	w.Stop()
	w.Stop()
}

package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abgdnv/storefront/pkg/logger"
)

// ErrDispatcherClosed is returned for intents dispatched after shutdown began.
var ErrDispatcherClosed = errors.New("dispatcher is closed")

// Applier executes a single intent.
type Applier interface {
	Apply(ctx context.Context, in Intent) error
}

type job struct {
	ctx    context.Context
	intent Intent
	result chan error
}

// Dispatcher executes intents one at a time on a single goroutine.
//
// An intent runs on a context detached from its caller: a caller that stops
// waiting does not cancel the API call, and the result is still committed.
type Dispatcher struct {
	applier   Applier
	queue     chan job
	closing   chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher with room for queueSize waiting intents.
func NewDispatcher(applier Applier, queueSize int, logger *slog.Logger) *Dispatcher {
	if queueSize < 0 {
		queueSize = 0
	}
	return &Dispatcher{
		applier: applier,
		queue:   make(chan job, queueSize),
		closing: make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger.With("component", "dispatcher"),
	}
}

// Run executes queued intents until ctx is done, then finishes the intents already queued.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("Dispatcher started")
	for {
		select {
		case j := <-d.queue:
			d.execute(j)
		case <-ctx.Done():
			d.closeOnce.Do(func() { close(d.closing) })
			d.drain()
			close(d.stopped)
			d.logger.Info("Dispatcher stopped")
			return nil
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case j := <-d.queue:
			d.execute(j)
		default:
			return
		}
	}
}

func (d *Dispatcher) execute(j job) {
	ctx := logger.WithIntent(context.WithoutCancel(j.ctx), fmt.Sprintf("%T", j.intent))
	defer func() {
		if rvr := recover(); rvr != nil {
			d.logger.ErrorContext(ctx, "Intent panicked", "panic", rvr)
			j.result <- fmt.Errorf("intent %T panicked: %v", j.intent, rvr)
		}
	}()
	d.logger.DebugContext(ctx, "Applying intent")
	j.result <- d.applier.Apply(ctx, j.intent)
}

// Dispatch queues in and waits for its result. When ctx ends first, Dispatch
// returns ctx.Err() but the intent still runs to completion.
func (d *Dispatcher) Dispatch(ctx context.Context, in Intent) error {
	select {
	case <-d.closing:
		return ErrDispatcherClosed
	default:
	}

	j := job{ctx: ctx, intent: in, result: make(chan error, 1)}
	select {
	case d.queue <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.closing:
		return ErrDispatcherClosed
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		select {
		case err := <-j.result:
			return err
		default:
			return ErrDispatcherClosed
		}
	}
}

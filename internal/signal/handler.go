// Package signal cancels command contexts on SIGINT and SIGTERM so batch
// jobs and sync watch loops can stop mid-run without corrupting the ledger.
// It deliberately imports nothing from the rest of the module.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler wraps a context and cancels it on the first interrupt signal.
// Interrupted() lets commands distinguish a Ctrl+C from a normal exit.
type Handler struct {
	ctx         context.Context //nolint:containedctx // the handler owns the context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	done        chan struct{}
	signals     chan os.Signal
	once        sync.Once
	stopOnce    sync.Once
}

// NewHandler starts listening for SIGINT and SIGTERM. Callers must Stop the
// handler when done:
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	run(h.Context())
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		// signal.Notify requires a buffered channel or signals may be lost.
		signals: make(chan os.Signal, 1),
	}

	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	go h.loop()
	return h
}

// Context returns the context canceled on interrupt. All interruptible work
// should run under it.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel closed when an interrupt signal arrived.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Stop unregisters the signal listener and cancels the context. Safe to call
// more than once.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.signals)
		close(h.done)
		h.cancel()
	})
}

// interrupt records the first signal; later signals are drained but ignored.
func (h *Handler) interrupt() {
	h.once.Do(func() {
		h.cancel()
		close(h.interrupted)
	})
}

func (h *Handler) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case <-h.signals:
			h.interrupt()
		}
	}
}

package signal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interruptedClosed(h *Handler) bool {
	select {
	case <-h.Interrupted():
		return true
	default:
		return false
	}
}

func TestHandlerInterrupt(t *testing.T) {
	t.Run("cancels context and closes channel", func(t *testing.T) {
		h := NewHandler(context.Background())
		defer h.Stop()

		assert.NoError(t, h.Context().Err())
		assert.False(t, interruptedClosed(h))

		h.interrupt()

		require.ErrorIs(t, h.Context().Err(), context.Canceled)
		assert.True(t, interruptedClosed(h))
	})

	t.Run("repeated interrupts are idempotent", func(t *testing.T) {
		h := NewHandler(context.Background())
		defer h.Stop()

		h.interrupt()
		h.interrupt()
		h.interrupt()

		require.Error(t, h.Context().Err())
		assert.True(t, interruptedClosed(h))
	})

	t.Run("loop keeps draining after the first signal", func(t *testing.T) {
		h := NewHandler(context.Background())
		defer h.Stop()

		h.signals <- nil
		h.signals <- nil

		select {
		case <-h.Interrupted():
		case <-time.After(time.Second):
			t.Fatal("interrupt not processed")
		}
		require.ErrorIs(t, h.Context().Err(), context.Canceled)
	})
}

func TestHandlerStop(t *testing.T) {
	t.Run("cancels context", func(t *testing.T) {
		h := NewHandler(context.Background())
		h.Stop()
		assert.Error(t, h.Context().Err())
	})

	t.Run("safe to call twice", func(t *testing.T) {
		h := NewHandler(context.Background())
		h.Stop()
		h.Stop()
		assert.Error(t, h.Context().Err())
	})

	t.Run("does not close interrupted", func(t *testing.T) {
		h := NewHandler(context.Background())
		h.Stop()
		assert.False(t, interruptedClosed(h))
	})
}

func TestHandlerParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := NewHandler(parent)
	defer h.Stop()

	cancel()
	assert.Error(t, h.Context().Err())
}

package interrupt_test

// Notes:
// - Black-box tests; every handler gets an injected signal channel, exit
//   function and clock.
// - ctx.Done() confirms the first signal was processed before sending the
//   next one.
// - bytes.Buffer is not safe for the concurrent writes of listen(), hence
//   syncBuffer.

import (
	"bytes"
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alnah/go-cuesplit/internal/interrupt"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Contains(substr string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Contains(b.buf.Bytes(), []byte(substr))
}

// stepClock returns the given instants in order, repeating the last one.
func stepClock(instants ...time.Duration) func() time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	i := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		d := instants[min(i, len(instants)-1)]
		i++
		return base.Add(d)
	}
}

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context should be canceled after first signal")
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestNewHandler(t *testing.T) {
	t.Parallel()

	h, ctx := interrupt.NewHandler(context.Background())
	defer h.Stop()

	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled before any signal")
	default:
	}
	if h.WasInterrupted() || h.WasAborted() {
		t.Error("fresh handler reports an interrupt")
	}
}

func TestHandler_FirstInterrupt(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	var stderr syncBuffer
	var exitCalled atomic.Bool

	h, ctx := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{
		SigCh:    sigCh,
		ExitFunc: func(int) { exitCalled.Store(true) },
		Stderr:   &stderr,
	})
	defer h.Stop()

	sigCh <- os.Interrupt
	waitDone(t, ctx)

	if !h.WasInterrupted() {
		t.Error("WasInterrupted should be true after first signal")
	}
	if h.WasAborted() || exitCalled.Load() {
		t.Error("single signal must not abort")
	}
	deadline := time.Now().Add(time.Second)
	for !stderr.Contains("finishing the current track") {
		if time.Now().After(deadline) {
			t.Fatal("stop message not printed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandler_SecondInterrupt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		clock     []time.Duration
		wantAbort bool
	}{
		{name: "within window aborts", clock: []time.Duration{0, time.Second}, wantAbort: true},
		{name: "at window edge aborts", clock: []time.Duration{0, 2 * time.Second}, wantAbort: true},
		{name: "after window is ignored", clock: []time.Duration{0, 3 * time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sigCh := make(chan os.Signal, 2)
			var stderr syncBuffer
			var exitCode atomic.Int32
			exitCode.Store(-1)

			h, ctx := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{
				SigCh:    sigCh,
				ExitFunc: func(code int) { exitCode.Store(int32(code)) },
				NowFunc:  stepClock(tt.clock...),
				Stderr:   &stderr,
			})
			defer h.Stop()

			sigCh <- os.Interrupt
			waitDone(t, ctx)
			sigCh <- os.Interrupt

			if tt.wantAbort {
				deadline := time.Now().Add(time.Second)
				for exitCode.Load() == -1 {
					if time.Now().After(deadline) {
						t.Fatal("exitFunc should have been called")
					}
					time.Sleep(5 * time.Millisecond)
				}
				if got := exitCode.Load(); got != interrupt.ExitInterrupt {
					t.Errorf("exit code = %d, want %d", got, interrupt.ExitInterrupt)
				}
				if !h.WasAborted() || !stderr.Contains("Aborted.") {
					t.Error("abort not reported")
				}
				return
			}

			time.Sleep(50 * time.Millisecond)
			if exitCode.Load() != -1 || h.WasAborted() {
				t.Error("late second signal must not abort")
			}
		})
	}
}

func TestHandler_LateSignalOpensNewWindow(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 3)
	var exitCode atomic.Int32
	exitCode.Store(-1)

	h, ctx := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{
		SigCh:    sigCh,
		ExitFunc: func(code int) { exitCode.Store(int32(code)) },
		NowFunc:  stepClock(0, 5*time.Second, 6*time.Second),
		Stderr:   &syncBuffer{},
	})
	defer h.Stop()

	sigCh <- os.Interrupt
	waitDone(t, ctx)
	sigCh <- os.Interrupt
	sigCh <- os.Interrupt

	deadline := time.Now().Add(time.Second)
	for exitCode.Load() == -1 {
		if time.Now().After(deadline) {
			t.Fatal("third signal within the new window should abort")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandler_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 1)
	h, ctx := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{SigCh: sigCh})

	h.Stop()
	h.Stop()

	sigCh <- os.Interrupt
	time.Sleep(20 * time.Millisecond)
	select {
	case <-ctx.Done():
		t.Error("stopped handler must ignore signals")
	default:
	}
}

func TestHandler_ParentCancellation(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	h, ctx := interrupt.NewHandlerWithOptions(parent, interrupt.Options{})
	defer h.Stop()

	cancel()
	waitDone(t, ctx)
	if h.WasInterrupted() {
		t.Error("parent cancellation is not an interrupt")
	}
}

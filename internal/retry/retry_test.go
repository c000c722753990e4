package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo(t *testing.T) {
	t.Parallel()

	errBusy := errors.New("busy")
	errFatal := errors.New("fatal")
	fast := Config{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Jitter: time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), fast, func() error {
			calls++
			if calls < 3 {
				return errBusy
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Fatalf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("gives up and wraps last error", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), fast, func() error {
			calls++
			return errBusy
		})
		if !errors.Is(err, errBusy) || calls != 3 {
			t.Fatalf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		cfg := fast
		cfg.Retryable = func(err error) bool { return errors.Is(err, errBusy) }
		calls := 0
		err := Do(context.Background(), cfg, func() error {
			calls++
			return errFatal
		})
		if err != errFatal || calls != 1 {
			t.Fatalf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cfg := Config{Attempts: 5, BaseDelay: time.Second, MaxDelay: time.Second, Jitter: time.Millisecond}
		err := Do(ctx, cfg, func() error { return errBusy })
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err=%v", err)
		}
	})
}

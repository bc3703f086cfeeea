package game

import (
	"context"
	"time"

	"github.com/averlon/questline/internal/clock"
)

// WaitUntil polls pred every interval until it reports true or the
// timeout budget elapses. The budget is measured from entry on the
// supplied clock, independent of how many polls run. Returns false on
// timeout or context cancellation; the predicate is always tried at
// least once.
func WaitUntil(ctx context.Context, clk clock.Clock, timeout, interval time.Duration, pred func(context.Context) bool) bool {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	start := clk.Now()
	for {
		if ctx.Err() != nil {
			return false
		}
		if pred(ctx) {
			return true
		}
		if clk.Since(start)+interval > timeout {
			return false
		}
		if err := clk.Sleep(ctx, interval); err != nil {
			return false
		}
	}
}

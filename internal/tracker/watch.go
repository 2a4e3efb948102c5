package tracker

import (
	"context"
	"time"

	"github.com/coder/quartz"
)

// Snapshotter is anything that can hand out a consistent summary.
type Snapshotter interface {
	Snapshot() SessionSummary
}

// Watch calls fn with a snapshot of src straight away and then every
// interval until ctx is done. It never holds src's lock while fn runs.
func Watch(ctx context.Context, clock quartz.Clock, interval time.Duration, src Snapshotter, fn func(SessionSummary)) error {
	ticker := clock.NewTicker(interval, "tracker", "watch")
	defer ticker.Stop()

	fn(src.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(src.Snapshot())
		}
	}
}

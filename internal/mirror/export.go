package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExportTimeout indicates an export did not complete within its deadline.
var ErrExportTimeout = errors.New("export timed out")

const defaultPollInterval = time.Second

// ExportOptions configures export polling. A zero Timeout waits indefinitely.
type ExportOptions struct {
	Interval   time.Duration
	Timeout    time.Duration
	OnProgress func(ExportStatus)
}

// ExportPoller returns the current state of one export job.
type ExportPoller func(ctx context.Context) (ExportStatus, error)

// WaitForExport polls until the export completes, the deadline passes, or
// ctx is done. It never returns a partially complete status without error.
func WaitForExport(ctx context.Context, now func() time.Time, poll ExportPoller, opts ExportOptions) (ExportStatus, error) {
	if now == nil {
		now = time.Now
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	var deadline time.Time
	if opts.Timeout > 0 {
		deadline = now().Add(opts.Timeout)
	}

	for {
		exportPollsTotal.Inc()
		st, err := poll(ctx)
		if err != nil {
			return ExportStatus{}, err
		}
		if opts.OnProgress != nil {
			opts.OnProgress(st)
		}
		if st.Done() {
			return st, nil
		}
		if !deadline.IsZero() && !now().Before(deadline) {
			return ExportStatus{}, fmt.Errorf("%w after %s (last progress %.0f%%)", ErrExportTimeout, opts.Timeout, st.Progress*100)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ExportStatus{}, ctx.Err()
		case <-timer.C:
		}
	}
}

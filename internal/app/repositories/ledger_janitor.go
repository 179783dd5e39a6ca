package repositories

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RunLedgerJanitor purges ledger records older than retention every interval
// until ctx is cancelled.
func RunLedgerJanitor(ctx context.Context, ledger SubmissionLedger, retention, interval time.Duration, logger zerolog.Logger) {
	if retention <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := ledger.DeleteOlderThan(ctx, now.Add(-retention))
			if err != nil {
				logger.Error().Err(err).Msg("Failed to purge idempotency ledger")
				continue
			}
			if removed > 0 {
				logger.Info().Int64("removed", removed).Msg("Purged expired idempotency records")
			}
		}
	}
}

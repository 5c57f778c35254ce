package collector

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/oraculo/stats-api/internal/sources/opendota"
)

// ProMatchLister pages the professional match feed, newest first.
type ProMatchLister interface {
	ProMatches(ctx context.Context, lessThan int64) ([]opendota.ProMatch, error)
}

// Enqueuer accepts match IDs for asynchronous ingestion.
type Enqueuer interface {
	Enqueue(matchID int64) bool
}

// BackfillOptions bound a backfill run.
type BackfillOptions struct {
	Limit    int   // stop after this many IDs; 0 means one page
	LeagueID int64 // only matches of this league when > 0
	Since    time.Time
	// RetryWait is how long to wait when the queue rejects an ID.
	RetryWait time.Duration
	Logger    *zap.Logger
}

// Backfill pages ProMatches and enqueues match IDs until the limit is reached,
// the feed is exhausted, a match older than Since appears, or ctx is done.
// It returns the number of IDs enqueued.
func Backfill(ctx context.Context, src ProMatchLister, q Enqueuer, opts BackfillOptions) (int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Sugar()
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}

	var (
		enqueued int
		lessThan int64
	)
	for {
		page, err := src.ProMatches(ctx, lessThan)
		if err != nil {
			return enqueued, err
		}
		if len(page) == 0 {
			return enqueued, nil
		}

		for _, m := range page {
			if lessThan == 0 || m.MatchID < lessThan {
				lessThan = m.MatchID
			}
			if !opts.Since.IsZero() && time.Unix(m.StartTime, 0).Before(opts.Since) {
				log.Infow("Backfill reached cutoff", "matchID", m.MatchID, "enqueued", enqueued)
				return enqueued, nil
			}
			if opts.LeagueID > 0 && m.LeagueID != opts.LeagueID {
				continue
			}
			for !q.Enqueue(m.MatchID) {
				select {
				case <-ctx.Done():
					return enqueued, ctx.Err()
				case <-time.After(opts.RetryWait):
				}
			}
			enqueued++
			if opts.Limit > 0 && enqueued >= opts.Limit {
				return enqueued, nil
			}
		}

		if opts.Limit <= 0 {
			return enqueued, nil
		}
		log.Infow("Backfill page done", "enqueued", enqueued, "nextLessThan", lessThan)
	}
}

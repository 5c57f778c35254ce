// Package worker implements the buffered worker pool that turns match IDs into
// stored matches. It decouples whoever discovers match IDs (HTTP ingest,
// backfill, pollers) from the slow fetch-and-store path:
// - Backpressure handling via load shedding
// - Batch inserts into the configured sink
// - Graceful shutdown with flush guarantees

package worker

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/oraculo/stats-api/internal/models"
)

// Prometheus metrics
var (
	matchesEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oraculo_matches_enqueued_total",
		Help: "Total number of match IDs accepted by the ingest queue",
	})

	matchesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oraculo_matches_processed_total",
		Help: "Total number of matches fetched and stored",
	})

	matchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oraculo_matches_failed_total",
		Help: "Total number of matches that failed to fetch or store",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oraculo_worker_queue_depth",
		Help: "Current depth of the ingest queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oraculo_batch_insert_duration_seconds",
		Help:    "Duration of batch inserts into the match sink",
		Buckets: prometheus.DefBuckets,
	})

	matchesLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oraculo_matches_load_shed_total",
		Help: "Total number of match IDs dropped because the queue was full",
	})
)

// MatchSource fetches a full match by ID.
type MatchSource interface {
	Match(ctx context.Context, matchID int64) (*models.Match, error)
}

// Sink stores a batch of matches.
type Sink interface {
	InsertMatches(ctx context.Context, matches []models.Match) error
}

// Job represents a unit of work for the worker pool
type Job struct {
	MatchID    int64
	EnqueuedAt time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	FetchTimeout  time.Duration
	Source        MatchSource
	Sink          Sink
	Logger        *zap.Logger
}

// Pool manages a pool of workers for async match ingestion
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
	stopped  atomic.Bool

	processed atomic.Int64
	failed    atomic.Int64
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop closes the queue, lets the workers drain it and flush, then cancels
// the pool context.
func (p *Pool) Stop() {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}
	p.logger.Info("Stopping worker pool...")

	close(p.jobQueue)
	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Infow("Worker pool stopped", "processed", p.processed.Load(), "failed", p.failed.Load())
}

// Enqueue adds a match ID to the queue without blocking. It returns false when
// the queue is full or the pool is stopped.
func (p *Pool) Enqueue(matchID int64) bool {
	if p.stopped.Load() {
		return false
	}

	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue match (pool stopped)", "matchID", matchID)
		}
	}()

	select {
	case p.jobQueue <- Job{MatchID: matchID, EnqueuedAt: time.Now()}:
		matchesEnqueued.Inc()
		return true
	default:
		p.logger.Warnw("Ingest queue full, dropping match", "matchID", matchID)
		matchesLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// Processed returns how many matches were stored since Start.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Failed returns how many matches could not be fetched or stored.
func (p *Pool) Failed() int64 { return p.failed.Load() }

// worker fetches matches from the source and stores them in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]models.Match, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Batch insert failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			matchesFailed.Add(float64(len(batch)))
			p.failed.Add(int64(len(batch)))
		} else {
			p.logger.Infow("Batch stored", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			matchesProcessed.Add(float64(len(batch)))
			p.processed.Add(int64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}

			m, err := p.fetch(job.MatchID)
			if err != nil {
				p.logger.Warnw("Match fetch failed", "worker", id, "matchID", job.MatchID, "error", err)
				matchesFailed.Inc()
				p.failed.Add(1)
				continue
			}
			batch = append(batch, *m)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			p.logger.Infow("Context done, flushing final batch", "worker", id)
			flush()
			return
		}
	}
}

func (p *Pool) fetch(matchID int64) (*models.Match, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.config.FetchTimeout)
	defer cancel()

	m, err := p.config.Source.Match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	normalizeMatch(m)
	return m, nil
}

// processBatch hands the batch to the sink. The pool context may already be
// canceled during shutdown, so inserts get their own deadline.
func (p *Pool) processBatch(batch []models.Match) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return p.config.Sink.InsertMatches(ctx, batch)
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}

// Helper functions

func normalizeMatch(m *models.Match) {
	m.Radiant.Name = normalizeName(m.Radiant.Name)
	m.Dire.Name = normalizeName(m.Dire.Name)
	m.LeagueName = normalizeName(m.LeagueName)
	for i := range m.Players {
		m.Players[i].Name = normalizeName(m.Players[i].Name)
	}
}

// normalizeName drops control and zero-width characters and collapses runs
// of whitespace into one space.
func normalizeName(s string) string {
	// Fast path: plain printable ASCII without doubled or edge spaces
	clean := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c >= 0x7f || (c == ' ' && (i == 0 || i == len(s)-1 || s[i-1] == ' ')) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = sb.Len() > 0
			continue
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			continue
		}
		if pendingSpace {
			sb.WriteByte(' ')
			pendingSpace = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

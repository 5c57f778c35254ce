// Package collector discovers matches and keeps local snapshots of remote feeds.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoTargets is returned when a poller is built without targets.
var ErrNoTargets = errors.New("no poll targets configured")

// Target is one independently polled feed. Each target owns its output file.
type Target struct {
	Name     string
	Interval time.Duration
	Path     string
	Fetch    func(ctx context.Context) (any, error)
}

// Snapshot is the document written to a target's file.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	Target    string    `json:"target"`
	FetchedAt time.Time `json:"fetched_at"`
	Data      any       `json:"data"`
}

// Poller runs a fixed set of targets. Targets share nothing but the logger.
type Poller struct {
	targets []Target
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewPoller validates the targets. Names and paths must be unique.
func NewPoller(targets []Target, logger *zap.Logger) (*Poller, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	names := map[string]bool{}
	paths := map[string]bool{}
	for _, t := range targets {
		if t.Name == "" || t.Path == "" || t.Fetch == nil {
			return nil, fmt.Errorf("target %q: name, path and fetch are required", t.Name)
		}
		if t.Interval <= 0 {
			return nil, fmt.Errorf("target %q: interval must be positive", t.Name)
		}
		abs, err := filepath.Abs(t.Path)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", t.Name, err)
		}
		if names[t.Name] {
			return nil, fmt.Errorf("duplicate target name %q", t.Name)
		}
		if paths[abs] {
			return nil, fmt.Errorf("target %q: path %s already used by another target", t.Name, t.Path)
		}
		names[t.Name] = true
		paths[abs] = true
	}
	return &Poller{targets: targets, logger: logger.Sugar(), now: time.Now}, nil
}

// Run polls every target immediately and then on its own interval until ctx
// is canceled. A failed poll is logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range p.targets {
		t := t
		g.Go(func() error {
			ticker := time.NewTicker(t.Interval)
			defer ticker.Stop()
			for {
				if err := p.poll(ctx, t); err != nil && ctx.Err() == nil {
					p.logger.Warnw("Poll failed", "target", t.Name, "error", err)
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		})
	}
	return g.Wait()
}

// RunOnce polls every target once, concurrently, and returns all failures combined.
func (p *Poller) RunOnce(ctx context.Context) error {
	errs := make([]error, len(p.targets))
	var g errgroup.Group
	for i, t := range p.targets {
		i, t := i, t
		g.Go(func() error {
			errs[i] = p.poll(ctx, t)
			return nil
		})
	}
	_ = g.Wait()
	return multierr.Combine(errs...)
}

func (p *Poller) poll(ctx context.Context, t Target) error {
	data, err := t.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("%s: fetch: %w", t.Name, err)
	}
	snap := Snapshot{ID: uuid.New(), Target: t.Name, FetchedAt: p.now().UTC(), Data: data}
	if err := WriteFileAtomic(t.Path, snap); err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	p.logger.Infow("Snapshot written", "target", t.Name, "path", t.Path)
	return nil
}

// WriteFileAtomic writes v as indented JSON to a temp file next to path and
// renames it into place, so readers never see a partial file.
func WriteFileAtomic(path string, v any) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot written by a poller. Data is decoded into data.
func ReadSnapshot(path string, data any) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Snapshot
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if data != nil && len(doc.Data) > 0 {
		if err := json.Unmarshal(doc.Data, data); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", path, err)
		}
	}
	snap := doc.Snapshot
	snap.Data = data
	return &snap, nil
}

// Package sources builds the external data clients from configuration and
// combines them where several APIs can answer the same question.
package sources

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/oraculo/stats-api/internal/config"
	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/sources/httpclient"
	"github.com/oraculo/stats-api/internal/sources/opendota"
	"github.com/oraculo/stats-api/internal/sources/pandascore"
	"github.com/oraculo/stats-api/internal/sources/steam"
	"github.com/oraculo/stats-api/internal/sources/stratz"
)

// Set holds one client per API. PandaScore and Stratz are nil without a token.
type Set struct {
	OpenDota   *opendota.Client
	PandaScore *pandascore.Client
	Steam      *steam.Client
	Stratz     *stratz.Client
}

// New builds the clients. cache may be nil.
func New(cfg config.SourcesConfig, cache httpclient.Cache, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []httpclient.Option{
		httpclient.WithRateLimit(cfg.RatePerSecond, 1),
		httpclient.WithLogger(logger),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, httpclient.WithTimeout(cfg.Timeout))
	}
	if cache != nil {
		opts = append(opts, httpclient.WithCache(cache, cfg.CacheTTL))
	}

	s := &Set{
		OpenDota: opendota.New("", cfg.OpenDotaKey, opts...),
		Steam:    steam.New("", cfg.SteamKey, opts...),
	}
	if cfg.PandaScoreToken != "" {
		s.PandaScore = pandascore.New("", cfg.PandaScoreToken, opts...)
	}
	if cfg.StratzToken != "" {
		s.Stratz = stratz.New("", cfg.StratzToken, opts...)
	}
	return s
}

// MatchFetcher is implemented by every client that can load a full match.
type MatchFetcher interface {
	Match(ctx context.Context, matchID int64) (*models.Match, error)
}

// Chain asks each fetcher in turn and returns the first match found.
type Chain []MatchFetcher

// MatchChain orders the configured clients OpenDota, STRATZ, Steam.
func (s *Set) MatchChain() Chain {
	c := Chain{s.OpenDota}
	if s.Stratz != nil {
		c = append(c, s.Stratz)
	}
	if s.Steam != nil {
		c = append(c, steamMatches{s.Steam})
	}
	return c
}

func (c Chain) Match(ctx context.Context, matchID int64) (*models.Match, error) {
	var errs error
	for _, f := range c {
		m, err := f.Match(ctx, matchID)
		if err == nil && m != nil {
			return m, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err == nil {
			err = fmt.Errorf("match %d: %w", matchID, httpclient.ErrNotFound)
		}
		errs = multierr.Append(errs, err)
	}
	if errs == nil {
		return nil, errors.New("no match sources configured")
	}
	return nil, errs
}

type steamMatches struct{ c *steam.Client }

func (s steamMatches) Match(ctx context.Context, matchID int64) (*models.Match, error) {
	return s.c.MatchDetails(ctx, matchID)
}

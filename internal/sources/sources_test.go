package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraculo/stats-api/internal/config"
	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/sources/httpclient"
)

type MockFetcher struct {
	MatchFunc func(ctx context.Context, id int64) (*models.Match, error)
	Calls     int
}

func (m *MockFetcher) Match(ctx context.Context, id int64) (*models.Match, error) {
	m.Calls++
	return m.MatchFunc(ctx, id)
}

func TestChain_FallsThrough(t *testing.T) {
	notFound := &MockFetcher{MatchFunc: func(ctx context.Context, id int64) (*models.Match, error) {
		return nil, httpclient.ErrNotFound
	}}
	found := &MockFetcher{MatchFunc: func(ctx context.Context, id int64) (*models.Match, error) {
		return &models.Match{MatchID: id}, nil
	}}
	unused := &MockFetcher{}

	m, err := Chain{notFound, found, unused}.Match(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), m.MatchID)
	assert.Equal(t, 1, notFound.Calls)
	assert.Zero(t, unused.Calls)
}

func TestChain_AllFail(t *testing.T) {
	a := &MockFetcher{MatchFunc: func(ctx context.Context, id int64) (*models.Match, error) {
		return nil, httpclient.ErrNotFound
	}}
	b := &MockFetcher{MatchFunc: func(ctx context.Context, id int64) (*models.Match, error) {
		return nil, errors.New("stratz 503")
	}}
	nilMatch := &MockFetcher{MatchFunc: func(ctx context.Context, id int64) (*models.Match, error) {
		return nil, nil
	}}

	_, err := Chain{a, b, nilMatch}.Match(context.Background(), 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, httpclient.ErrNotFound)
	assert.ErrorContains(t, err, "stratz 503")

	_, err = Chain{}.Match(context.Background(), 7)
	assert.Error(t, err)
}

func TestChain_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &MockFetcher{MatchFunc: func(ctx context.Context, id int64) (*models.Match, error) {
		cancel()
		return nil, ctx.Err()
	}}
	second := &MockFetcher{}

	_, err := Chain{first, second}.Match(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, second.Calls)
}

func TestNew_OptionalClients(t *testing.T) {
	s := New(config.SourcesConfig{RatePerSecond: 1}, nil, nil)
	assert.NotNil(t, s.OpenDota)
	assert.NotNil(t, s.Steam)
	assert.Nil(t, s.PandaScore)
	assert.Nil(t, s.Stratz)
	assert.Len(t, s.MatchChain(), 2)

	s = New(config.SourcesConfig{RatePerSecond: 1, PandaScoreToken: "p", StratzToken: "s"}, nil, nil)
	assert.NotNil(t, s.PandaScore)
	assert.Len(t, s.MatchChain(), 3)
}

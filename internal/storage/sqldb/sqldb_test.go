package sqldb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oraculo/stats-api/internal/models"
)

func openTemp(t *testing.T) *Builder {
	t.Helper()
	db, err := Open("", filepath.Join(t.TempDir(), "oraculo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db, DriverSQLite))
	return NewBuilder(db, zap.NewNop())
}

func match(id int64, day int, radiantWin bool) models.Match {
	return models.Match{
		MatchID:     id,
		StartTime:   time.Date(2024, 5, day, 12, 0, 0, 0, time.UTC),
		DurationSec: 2400,
		RadiantWin:  radiantWin,
		Radiant:     models.TeamRef{ID: 7119388, Name: "Team Spirit", Tag: "TSpirit"},
		Dire:        models.TeamRef{ID: 2586976, Name: "OG", Tag: "OG"},
		LeagueID:    16935,
		LeagueName:  "PGL Wallachia",
		Players: []models.PlayerMatch{
			{AccountID: 1, Name: "Yatoro", HeroID: 1, PlayerSlot: 0, IsRadiant: true, Kills: 9, GPM: 720},
			{AccountID: 2, Name: "Ame", HeroID: 94, PlayerSlot: 128, IsRadiant: false, Kills: 4, GPM: 610},
		},
		PicksBans: []models.PickBan{
			{IsPick: false, HeroID: 23, Team: 0, Order: 0},
			{IsPick: true, HeroID: 1, Team: 0, Order: 1},
		},
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "x")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
	assert.ErrorIs(t, Migrate(nil, "postgres"), ErrUnsupportedDriver)
}

func TestImportAndLoad(t *testing.T) {
	ctx := context.Background()
	b := openTemp(t)

	require.NoError(t, b.ImportMatches(ctx, []models.Match{match(2, 2, false), match(1, 1, true)}))
	// re-importing replaces instead of failing on primary keys
	require.NoError(t, b.InsertMatches(ctx, []models.Match{match(1, 1, true)}))

	got, err := b.LoadMatches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].MatchID)
	assert.Equal(t, int64(2), got[1].MatchID)

	m := got[0]
	assert.True(t, m.RadiantWin)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), m.StartTime)
	assert.Equal(t, "Team Spirit", m.Radiant.Name)
	require.Len(t, m.Players, 2)
	assert.True(t, m.Players[0].IsRadiant)
	assert.Equal(t, 720, m.Players[0].GPM)
	assert.Equal(t, "Ame", m.Players[1].Name)
	require.Len(t, m.PicksBans, 2)
	assert.False(t, m.PicksBans[0].IsPick)
	assert.True(t, m.PicksBans[1].IsPick)

	counts, err := b.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["teams"])
	assert.Equal(t, int64(2), counts["matches"])
	assert.Equal(t, int64(4), counts["player_matches"])
}

func TestLoadMatches_Limit(t *testing.T) {
	ctx := context.Background()
	b := openTemp(t)
	require.NoError(t, b.ImportMatches(ctx, []models.Match{match(1, 1, true), match(2, 2, true), match(3, 3, false)}))

	got, err := b.LoadMatches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].MatchID)
	assert.Equal(t, int64(3), got[1].MatchID)
}

func TestImportHeroes(t *testing.T) {
	ctx := context.Background()
	b := openTemp(t)
	heroes := []models.Hero{
		{ID: 1, Name: "npc_dota_hero_antimage", LocalizedName: "Anti-Mage", PrimaryAttr: "agi", AttackType: "Melee", Roles: []string{"Carry", "Escape"}},
		{ID: 2, Name: "npc_dota_hero_axe", LocalizedName: "Axe", PrimaryAttr: "str", AttackType: "Melee"},
	}
	require.NoError(t, b.ImportHeroes(ctx, heroes))
	require.NoError(t, b.ImportHeroes(ctx, heroes))

	var roles string
	require.NoError(t, b.db.QueryRow(`SELECT roles FROM heroes WHERE id = 1`).Scan(&roles))
	assert.Equal(t, "Carry,Escape", roles)

	counts, err := b.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["heroes"])
}

func TestImport_Empty(t *testing.T) {
	b := openTemp(t)
	assert.NoError(t, b.ImportMatches(context.Background(), nil))
	assert.NoError(t, b.ImportHeroes(context.Background(), nil))
	got, err := b.LoadMatches(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

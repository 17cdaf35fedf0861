package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Empty(t, cfg.DatabasePath)
	assert.True(t, cfg.EnableLogging)
	assert.False(t, cfg.Leaderboard.Enabled)
	assert.Equal(t, 30, cfg.Leaderboard.WindowDays)
	assert.Equal(t, RankAgentLines, cfg.RankDisplay)
	assert.Equal(t, "https://cursor.com", cfg.APIBaseURL)
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFrom_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{
  "database_path": "  /data/state.vscdb  ",
  "enable_logging": false,
  "leaderboard": {"enabled": true, "window_days": 7},
  "rank_display": "tabCompletions",
  "api_base_url": "http://localhost:8080/"
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/state.vscdb", cfg.DatabasePath)
	assert.False(t, cfg.EnableLogging)
	assert.True(t, cfg.Leaderboard.Enabled)
	assert.Equal(t, 7, cfg.Leaderboard.WindowDays)
	assert.Equal(t, RankTabCompletions, cfg.RankDisplay)
	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
}

func TestLoadFrom_NormalizesInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"leaderboard":{"window_days":-3},"rank_display":"bogus","api_base_url":""}`), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultWindowDays, cfg.Leaderboard.WindowDays)
	assert.Equal(t, RankAgentLines, cfg.RankDisplay)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)

	require.NoError(t, os.WriteFile(path, []byte(`{"leaderboard":{"window_days":1000}}`), 0o644))
	cfg, err = LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, MaxWindowDays, cfg.Leaderboard.WindowDays)
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	cfg, err := LoadFrom(path)
	require.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	cfg := DefaultConfig()
	cfg.Leaderboard.Enabled = true
	cfg.RankDisplay = RankAcceptedDiffs

	require.NoError(t, SaveTo(path, cfg))
	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestCompare(t *testing.T) {
	base := DefaultConfig()

	assert.Equal(t, Change(0), Compare(base, base))

	next := base
	next.RankDisplay = RankTabCompletions
	assert.Equal(t, ChangeRankDisplay, Compare(base, next))

	next = base
	next.Leaderboard.WindowDays = 14
	assert.Equal(t, ChangeLeaderboard, Compare(base, next))

	next = base
	next.Leaderboard.Enabled = true
	next.DatabasePath = "/tmp/state.vscdb"
	next.EnableLogging = false
	c := Compare(base, next)
	assert.True(t, c.Has(ChangeLeaderboard))
	assert.True(t, c.Has(ChangeDatabasePath))
	assert.True(t, c.Has(ChangeLogging))
	assert.False(t, c.Has(ChangeRankDisplay))
	assert.Equal(t, "leaderboard,database_path,enable_logging", c.String())
	assert.Equal(t, "none", Change(0).String())
}

func TestWatcher_DeliversChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, SaveTo(path, DefaultConfig()))

	w, err := NewWatcher(path, DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Config, 4)
	go w.Run(ctx, func(cfg Config) { got <- cfg })

	next := DefaultConfig()
	next.RankDisplay = RankTabCompletions
	require.NoError(t, SaveTo(path, next))

	select {
	case cfg := <-got:
		assert.Equal(t, RankTabCompletions, cfg.RankDisplay)
	case <-time.After(5 * time.Second):
		t.Fatal("settings change not delivered")
	}

	// An unrelated file in the same directory is ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.json"), []byte("{}"), 0o644))
	select {
	case cfg := <-got:
		t.Fatalf("unexpected delivery: %+v", cfg)
	case <-time.After(200 * time.Millisecond):
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/janekbaraniewski/cursorbar/internal/config"
	"github.com/janekbaraniewski/cursorbar/internal/cursorapi"
	"github.com/janekbaraniewski/cursorbar/internal/refresh"
)

func sampleView() refresh.View {
	return refresh.View{
		Usage: cursorapi.UsageSummary{
			MembershipType: "enterprise",
			IndividualUsage: cursorapi.IndividualUsage{
				OnDemand: &cursorapi.UsageBucket{Enabled: true, Used: 31471},
			},
		},
		User: cursorapi.UserInfo{Email: "dev@example.com", TeamID: 7},
		Leaderboard: &cursorapi.LeaderboardData{
			AgentLines: cursorapi.Section[cursorapi.ComposerEntry]{
				UserEntry:  &cursorapi.ComposerEntry{Email: "dev@example.com", Rank: 2},
				TotalUsers: 9,
			},
		},
		RankDisplay: config.RankAgentLines,
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"watch", "tray", "status", "token", "config", "version"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{formatText, formatJSON, formatYAML} {
		assert.NoError(t, validateFormat(f))
	}
	assert.Error(t, validateFormat("xml"))
}

func TestWriteStatus_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, sampleView(), formatText, true))

	out := buf.String()
	assert.Contains(t, out, "Cursor $314.71 · #2/9\n")
	assert.Contains(t, out, "- Agent lines: #2 of 9")
	assert.NotContains(t, out, "**")
}

func TestWriteStatus_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, sampleView(), formatJSON, false))

	var decoded refresh.View
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "dev@example.com", decoded.User.Email)
	require.NotNil(t, decoded.Leaderboard)
	assert.Equal(t, 2, decoded.Leaderboard.AgentLines.UserEntry.Rank)
}

func TestWriteStatus_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, sampleView(), formatYAML, false))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "agentLines", decoded["rank_display"])
	assert.Contains(t, buf.String(), "membership_type: enterprise")
}

func TestCaptureRenderer(t *testing.T) {
	c := &captureRenderer{}
	c.ShowLoading()
	c.ShowError("Not signed in")
	assert.False(t, c.ok)
	assert.Equal(t, "Not signed in", c.errMsg)

	c.Update(sampleView())
	assert.True(t, c.ok)
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	require.NoError(t, initConfig(path, false))
	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	err = initConfig(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, os.WriteFile(path, []byte(`{"rank_display":"tabCompletions"}`), 0o644))
	require.NoError(t, initConfig(path, true))
	cfg, err = config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, config.RankAgentLines, cfg.RankDisplay)
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", humanBytes(512))
	assert.Equal(t, "1.5 KiB", humanBytes(1536))
	assert.Equal(t, "1.5 GiB", humanBytes(1536<<20))
}

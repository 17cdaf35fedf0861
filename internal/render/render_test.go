package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/janekbaraniewski/cursorbar/internal/config"
	"github.com/janekbaraniewski/cursorbar/internal/cursorapi"
	"github.com/janekbaraniewski/cursorbar/internal/refresh"
)

func ptr(v float64) *float64 { return &v }

func sampleView() refresh.View {
	return refresh.View{
		Usage: cursorapi.UsageSummary{
			BillingCycleStart: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			BillingCycleEnd:   time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
			MembershipType:    "enterprise",
			IndividualUsage: cursorapi.IndividualUsage{
				Plan:     &cursorapi.UsageBucket{Enabled: true, Used: 2000, Limit: ptr(2000)},
				OnDemand: &cursorapi.UsageBucket{Enabled: true, Used: 31471},
			},
			TeamUsage: &cursorapi.TeamUsage{
				Pooled: &cursorapi.UsageBucket{Enabled: true, Used: 125000, Limit: ptr(500000)},
			},
		},
		User: cursorapi.UserInfo{FirstName: "Dana", LastName: "Dev", Email: "dev@example.com"},
		Leaderboard: &cursorapi.LeaderboardData{
			AgentLines: cursorapi.Section[cursorapi.ComposerEntry]{
				UserEntry:  &cursorapi.ComposerEntry{Rank: 3, TotalLinesAccepted: 12345, FavoriteModel: "gpt-5"},
				TotalUsers: 12,
			},
			AcceptedDiffs: cursorapi.Section[cursorapi.ComposerEntry]{TotalUsers: 12},
		},
		RankDisplay: config.RankAgentLines,
	}
}

func TestStatusText(t *testing.T) {
	v := sampleView()
	assert.Equal(t, "Cursor $334.71 · #3/12", StatusText(v))

	v.RankDisplay = config.RankAcceptedDiffs
	assert.Equal(t, "Cursor $334.71", StatusText(v), "no entry means no rank")

	v.Leaderboard = nil
	v.RankDisplay = config.RankAgentLines
	assert.Equal(t, "Cursor $334.71", StatusText(v))
}

func TestRankLabel(t *testing.T) {
	assert.Equal(t, "#3 of 12", RankLabel(3, 12))
	assert.Equal(t, "no activity", RankLabel(0, 0))
}

func TestTooltip(t *testing.T) {
	tip := Tooltip(sampleView())

	assert.Contains(t, tip, "**Cursor usage** (Oct 1 to Nov 1)")
	assert.Contains(t, tip, "Dana Dev <dev@example.com> · enterprise")
	assert.Contains(t, tip, "- Plan: $20.00 of $20.00")
	assert.Contains(t, tip, "- On-demand: $314.71 (no limit)")
	assert.Contains(t, tip, "- Team pooled: $1,250.00 of $5,000.00")
	assert.Contains(t, tip, "- Your spend: $334.71")
	assert.Contains(t, tip, "- Your contribution: 26.8%")
	assert.Contains(t, tip, "- Agent lines: #3 of 12 (12,345 lines)")
	assert.Contains(t, tip, "- Accepted diffs: no activity")
	assert.Contains(t, tip, "- Tab completions: no activity")
	assert.Contains(t, tip, "- Favorite model: gpt-5")
	assert.NotContains(t, tip, "Updated")
}

func TestTooltip_NoContributionWithoutPooledSpend(t *testing.T) {
	v := sampleView()
	v.Usage.TeamUsage.Pooled.Used = 0
	assert.NotContains(t, Tooltip(v), "contribution")

	v.Usage.TeamUsage = nil
	v.Leaderboard = nil
	tip := Tooltip(v)
	assert.NotContains(t, tip, "contribution")
	assert.NotContains(t, tip, "Leaderboard")
}

func TestFit(t *testing.T) {
	assert.Equal(t, "short", Fit("short", 10))
	assert.Equal(t, "Cursor $3…", Fit("Cursor $334.71", 10))
	assert.Equal(t, "unbounded", Fit("unbounded", 0))
}

func TestPlainTooltip(t *testing.T) {
	v := sampleView()
	v.UpdatedAt = time.Date(2026, 10, 16, 9, 30, 0, 0, time.Local)
	tip := PlainTooltip(v)

	assert.NotContains(t, tip, "**")
	assert.Contains(t, tip, "Cursor usage (Oct 1 to Nov 1)")
	assert.Contains(t, tip, "\nUpdated 09:30:00")
}

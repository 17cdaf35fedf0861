package config

import (
	"strings"

	"github.com/samber/lo"
)

// Change is a set of setting groups that differ between two configs.
type Change uint8

const (
	ChangeRankDisplay Change = 1 << iota
	ChangeLeaderboard
	ChangeDatabasePath
	ChangeLogging
	ChangeAPIBaseURL
)

func (c Change) Has(flag Change) bool { return c&flag != 0 }

func (c Change) String() string {
	if c == 0 {
		return "none"
	}
	names := map[Change]string{
		ChangeRankDisplay:  "rank_display",
		ChangeLeaderboard:  "leaderboard",
		ChangeDatabasePath: "database_path",
		ChangeLogging:      "enable_logging",
		ChangeAPIBaseURL:   "api_base_url",
	}
	flags := []Change{ChangeRankDisplay, ChangeLeaderboard, ChangeDatabasePath, ChangeLogging, ChangeAPIBaseURL}
	set := lo.Filter(flags, func(f Change, _ int) bool { return c.Has(f) })
	return strings.Join(lo.Map(set, func(f Change, _ int) string { return names[f] }), ",")
}

// Compare reports which groups changed from prev to next.
func Compare(prev, next Config) Change {
	var c Change
	if prev.RankDisplay != next.RankDisplay {
		c |= ChangeRankDisplay
	}
	if prev.Leaderboard != next.Leaderboard {
		c |= ChangeLeaderboard
	}
	if prev.DatabasePath != next.DatabasePath {
		c |= ChangeDatabasePath
	}
	if prev.EnableLogging != next.EnableLogging {
		c |= ChangeLogging
	}
	if prev.APIBaseURL != next.APIBaseURL {
		c |= ChangeAPIBaseURL
	}
	return c
}

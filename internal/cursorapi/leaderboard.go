package cursorapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/janekbaraniewski/cursorbar/internal/token"
)

// SortBy is a leaderboard sort dimension.
type SortBy string

const (
	SortLinesOfCode SortBy = "linesOfCode"
	SortDiffAccepts SortBy = "diffAccepts"
	SortTabAccepts  SortBy = "tabAccepts"

	leaderboardPageSize = 10
	dateLayout          = "2006-01-02"
)

// FetchAllLeaderboards queries the three sort dimensions concurrently and keeps
// only the caller's own row from each. All three must succeed.
func (c *Client) FetchAllLeaderboards(ctx context.Context, cred token.Credential, teamID int64, email string, windowDays int) (LeaderboardData, error) {
	var (
		g                  errgroup.Group
		lines, diffs, tabs leaderboardResp
	)
	g.Go(func() error {
		var err error
		lines, err = c.fetchLeaderboard(ctx, cred, teamID, email, windowDays, SortLinesOfCode)
		return err
	})
	g.Go(func() error {
		var err error
		diffs, err = c.fetchLeaderboard(ctx, cred, teamID, email, windowDays, SortDiffAccepts)
		return err
	})
	g.Go(func() error {
		var err error
		tabs, err = c.fetchLeaderboard(ctx, cred, teamID, email, windowDays, SortTabAccepts)
		return err
	})
	if err := g.Wait(); err != nil {
		return LeaderboardData{}, err
	}

	return LeaderboardData{
		AgentLines:     composerSection(lines.ComposerLeaderboard, email),
		AcceptedDiffs:  composerSection(diffs.ComposerLeaderboard, email),
		TabCompletions: tabSection(tabs.TabLeaderboard, email),
	}, nil
}

func (c *Client) fetchLeaderboard(ctx context.Context, cred token.Credential, teamID int64, email string, windowDays int, sortBy SortBy) (leaderboardResp, error) {
	end := c.now()
	start := end.AddDate(0, 0, -windowDays)

	q := url.Values{}
	q.Set("startDate", start.Format(dateLayout))
	q.Set("endDate", end.Format(dateLayout))
	q.Set("pageSize", strconv.Itoa(leaderboardPageSize))
	q.Set("teamId", strconv.FormatInt(teamID, 10))
	q.Set("user", email)
	q.Set("leaderboardSortBy", string(sortBy))

	var out leaderboardResp
	if err := c.get(ctx, cred, leaderboardPath, q, &out); err != nil {
		return leaderboardResp{}, fmt.Errorf("leaderboard %s: %w", sortBy, err)
	}
	return out, nil
}

func composerSection(page *leaderboardPage[ComposerEntry], email string) Section[ComposerEntry] {
	if page == nil {
		return Section[ComposerEntry]{}
	}
	entry, ok := lo.Find(page.Data, func(e ComposerEntry) bool { return sameEmail(e.Email, email) })
	if !ok {
		return Section[ComposerEntry]{TotalUsers: page.TotalUsers}
	}
	return Section[ComposerEntry]{UserEntry: &entry, TotalUsers: page.TotalUsers}
}

func tabSection(page *leaderboardPage[TabEntry], email string) Section[TabEntry] {
	if page == nil {
		return Section[TabEntry]{}
	}
	entry, ok := lo.Find(page.Data, func(e TabEntry) bool { return sameEmail(e.Email, email) })
	if !ok {
		return Section[TabEntry]{TotalUsers: page.TotalUsers}
	}
	return Section[TabEntry]{UserEntry: &entry, TotalUsers: page.TotalUsers}
}

func sameEmail(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

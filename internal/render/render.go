// Package render turns a refresh.View into the status line and tooltip text
// shared by every renderer.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/janekbaraniewski/cursorbar/internal/config"
	"github.com/janekbaraniewski/cursorbar/internal/cursorapi"
	"github.com/janekbaraniewski/cursorbar/internal/refresh"
)

const (
	Title       = "Cursor"
	LoadingText = Title + ": loading…"
	dateLayout  = "Jan 2"
)

var numbers = message.NewPrinter(language.AmericanEnglish)

// StatusText is the one-line summary: individual spend plus the selected rank.
func StatusText(v refresh.View) string {
	s := fmt.Sprintf("%s %s", Title, cursorapi.FormatCentsToDollars(v.Usage.IndividualUsed()))
	if rank, ok := ShortRank(v); ok {
		s += " · " + rank
	}
	return s
}

// ErrorText is the status line shown when a cycle fails.
func ErrorText(message string) string {
	return Title + ": " + message
}

// ShortRank renders the rank picked by v.RankDisplay as "#3/12". It reports
// false when leaderboards are not loaded or the user has no entry.
func ShortRank(v refresh.View) (string, bool) {
	if v.Leaderboard == nil {
		return "", false
	}
	rank, total, ok := selectedRank(*v.Leaderboard, v.RankDisplay)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("#%d/%d", rank, total), true
}

func selectedRank(lb cursorapi.LeaderboardData, display config.RankDisplay) (rank, total int, ok bool) {
	switch display {
	case config.RankAcceptedDiffs:
		if e := lb.AcceptedDiffs.UserEntry; e != nil {
			return e.Rank, lb.AcceptedDiffs.TotalUsers, true
		}
	case config.RankTabCompletions:
		if e := lb.TabCompletions.UserEntry; e != nil {
			return e.Rank, lb.TabCompletions.TotalUsers, true
		}
	default:
		if e := lb.AgentLines.UserEntry; e != nil {
			return e.Rank, lb.AgentLines.TotalUsers, true
		}
	}
	return 0, 0, false
}

// RankLabel is "#3 of 12", or "no activity" when rank is 0.
func RankLabel(rank, total int) string {
	if rank <= 0 {
		return "no activity"
	}
	return fmt.Sprintf("#%d of %d", rank, total)
}

// Tooltip is the markdown detail view.
func Tooltip(v refresh.View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s usage**", Title)
	if !v.Usage.BillingCycleStart.IsZero() && !v.Usage.BillingCycleEnd.IsZero() {
		fmt.Fprintf(&b, " (%s to %s)", v.Usage.BillingCycleStart.Format(dateLayout), v.Usage.BillingCycleEnd.Format(dateLayout))
	}
	b.WriteString("\n\n")

	if name := v.User.Name(); name != "" || v.User.Email != "" {
		b.WriteString(strings.TrimSpace(name + " " + angle(v.User.Email)))
		if v.Usage.MembershipType != "" {
			fmt.Fprintf(&b, " · %s", v.Usage.MembershipType)
		}
		b.WriteString("\n\n")
	}

	writeBucket(&b, "Plan", v.Usage.IndividualUsage.Plan)
	writeBucket(&b, "On-demand", v.Usage.IndividualUsage.OnDemand)
	if team := v.Usage.TeamUsage; team != nil {
		writeBucket(&b, "Team on-demand", team.OnDemand)
		writeBucket(&b, "Team pooled", team.Pooled)
	}
	fmt.Fprintf(&b, "- Your spend: %s\n", cursorapi.FormatCentsToDollars(v.Usage.IndividualUsed()))

	if pooled, enabled := v.Usage.PooledUsed(); enabled && pooled > 0 {
		share := cursorapi.CalculateIndividualContribution(v.Usage.IndividualUsed(), pooled)
		fmt.Fprintf(&b, "- Your contribution: %.1f%%\n", share)
	}

	if lb := v.Leaderboard; lb != nil {
		b.WriteString("\n**Leaderboard**\n\n")

		agent := lb.AgentLines.UserEntry
		b.WriteString("- Agent lines: ")
		if agent != nil {
			numbers.Fprintf(&b, "%s (%d lines)\n", RankLabel(agent.Rank, lb.AgentLines.TotalUsers), agent.TotalLinesAccepted)
		} else {
			b.WriteString(RankLabel(0, 0) + "\n")
		}

		b.WriteString("- Accepted diffs: ")
		if e := lb.AcceptedDiffs.UserEntry; e != nil {
			numbers.Fprintf(&b, "%s (%d diffs)\n", RankLabel(e.Rank, lb.AcceptedDiffs.TotalUsers), e.TotalDiffAccepts)
		} else {
			b.WriteString(RankLabel(0, 0) + "\n")
		}

		b.WriteString("- Tab completions: ")
		if e := lb.TabCompletions.UserEntry; e != nil {
			numbers.Fprintf(&b, "%s (%d accepted)\n", RankLabel(e.Rank, lb.TabCompletions.TotalUsers), e.TotalAccepts)
		} else {
			b.WriteString(RankLabel(0, 0) + "\n")
		}

		if agent != nil && agent.FavoriteModel != "" {
			fmt.Fprintf(&b, "- Favorite model: %s\n", agent.FavoriteModel)
		}
	}

	if !v.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "\n_Updated %s_", v.UpdatedAt.Local().Format("15:04:05"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeBucket(b *strings.Builder, label string, bucket *cursorapi.UsageBucket) {
	if bucket == nil || !bucket.Enabled {
		return
	}
	used := cursorapi.FormatCentsToDollars(bucket.Used)
	if bucket.Unlimited() {
		fmt.Fprintf(b, "- %s: %s (no limit)\n", label, used)
		return
	}
	fmt.Fprintf(b, "- %s: %s of %s\n", label, used, cursorapi.FormatCentsToDollars(*bucket.Limit))
}

func angle(email string) string {
	if email == "" {
		return ""
	}
	return "<" + email + ">"
}

// Fit truncates s to width terminal cells, keeping ANSI sequences intact.
func Fit(s string, width int) string {
	if width <= 0 || ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// PlainTooltip is Tooltip without markdown markers, for surfaces that show raw text.
func PlainTooltip(v refresh.View) string {
	lines := strings.Split(Tooltip(v), "\n")
	for i, line := range lines {
		line = strings.ReplaceAll(line, "**", "")
		if strings.HasPrefix(line, "_") && strings.HasSuffix(line, "_") {
			line = strings.Trim(line, "_")
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

package cursorapi

import "time"

// UsageBucket is one spending allowance, in cents. A nil Limit means unlimited.
type UsageBucket struct {
	Enabled   bool     `json:"enabled" yaml:"enabled"`
	Used      float64  `json:"used" yaml:"used"`
	Limit     *float64 `json:"limit" yaml:"limit"`
	Remaining *float64 `json:"remaining" yaml:"remaining"`
}

func (b *UsageBucket) Unlimited() bool { return b != nil && b.Limit == nil }

type IndividualUsage struct {
	Plan     *UsageBucket `json:"plan,omitempty" yaml:"plan,omitempty"`
	OnDemand *UsageBucket `json:"onDemand,omitempty" yaml:"on_demand,omitempty"`
}

type TeamUsage struct {
	OnDemand *UsageBucket `json:"onDemand,omitempty" yaml:"on_demand,omitempty"`
	Pooled   *UsageBucket `json:"pooled,omitempty" yaml:"pooled,omitempty"`
}

// UsageSummary is the response of /api/usage-summary.
type UsageSummary struct {
	BillingCycleStart time.Time       `json:"billingCycleStart" yaml:"billing_cycle_start"`
	BillingCycleEnd   time.Time       `json:"billingCycleEnd" yaml:"billing_cycle_end"`
	MembershipType    string          `json:"membershipType" yaml:"membership_type"`
	LimitType         string          `json:"limitType" yaml:"limit_type"`
	IsUnlimited       bool            `json:"isUnlimited" yaml:"is_unlimited"`
	IndividualUsage   IndividualUsage `json:"individualUsage" yaml:"individual_usage"`
	TeamUsage         *TeamUsage      `json:"teamUsage,omitempty" yaml:"team_usage,omitempty"`
}

// IndividualUsed is the caller's spend this cycle across plan and on-demand, in cents.
func (u UsageSummary) IndividualUsed() float64 {
	var total float64
	if b := u.IndividualUsage.Plan; b != nil {
		total += b.Used
	}
	if b := u.IndividualUsage.OnDemand; b != nil && b.Enabled {
		total += b.Used
	}
	return total
}

// PooledUsed returns the team pooled spend and whether pooling is enabled.
func (u UsageSummary) PooledUsed() (float64, bool) {
	if u.TeamUsage == nil || u.TeamUsage.Pooled == nil || !u.TeamUsage.Pooled.Enabled {
		return 0, false
	}
	return u.TeamUsage.Pooled.Used, true
}

// UserInfo is the response of /api/dashboard/get-me.
type UserInfo struct {
	UserID           int64  `json:"userId" yaml:"user_id"`
	AuthID           string `json:"authId" yaml:"auth_id"`
	Email            string `json:"email" yaml:"email"`
	FirstName        string `json:"firstName" yaml:"first_name"`
	LastName         string `json:"lastName" yaml:"last_name"`
	TeamID           int64  `json:"teamId" yaml:"team_id"`
	IsEnterpriseUser bool   `json:"isEnterpriseUser" yaml:"is_enterprise_user"`
}

func (u UserInfo) Name() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	}
	return u.LastName
}

// TabEntry is a row of the tab-completion leaderboard.
type TabEntry struct {
	Email               string  `json:"email" yaml:"email"`
	UserID              int64   `json:"user_id" yaml:"user_id"`
	TotalAccepts        int64   `json:"total_accepts" yaml:"total_accepts"`
	TotalLinesAccepted  int64   `json:"total_lines_accepted" yaml:"total_lines_accepted"`
	TotalLinesSuggested int64   `json:"total_lines_suggested" yaml:"total_lines_suggested"`
	LineAcceptanceRatio float64 `json:"line_acceptance_ratio" yaml:"line_acceptance_ratio"`
	AcceptRatio         float64 `json:"accept_ratio" yaml:"accept_ratio"`
	FavoriteModel       string  `json:"favorite_model" yaml:"favorite_model"`
	Rank                int     `json:"rank" yaml:"rank"`
}

// ComposerEntry is a row of the agent (composer) leaderboard.
type ComposerEntry struct {
	Email               string  `json:"email" yaml:"email"`
	UserID              int64   `json:"user_id" yaml:"user_id"`
	TotalDiffAccepts    int64   `json:"total_diff_accepts" yaml:"total_diff_accepts"`
	TotalLinesAccepted  int64   `json:"total_lines_accepted" yaml:"total_lines_accepted"`
	TotalLinesSuggested int64   `json:"total_lines_suggested" yaml:"total_lines_suggested"`
	AcceptRatio         float64 `json:"accept_ratio" yaml:"accept_ratio"`
	FavoriteModel       string  `json:"favorite_model" yaml:"favorite_model"`
	Rank                int     `json:"rank" yaml:"rank"`
}

// Section is one sort dimension of the leaderboard, reduced to the caller's row.
// UserEntry is nil when the caller had no activity in the window.
type Section[T any] struct {
	UserEntry  *T  `json:"userEntry" yaml:"user_entry"`
	TotalUsers int `json:"totalUsers" yaml:"total_users"`
}

type LeaderboardData struct {
	AgentLines     Section[ComposerEntry] `json:"agentLines" yaml:"agent_lines"`
	AcceptedDiffs  Section[ComposerEntry] `json:"acceptedDiffs" yaml:"accepted_diffs"`
	TabCompletions Section[TabEntry]      `json:"tabCompletions" yaml:"tab_completions"`
}

type leaderboardPage[T any] struct {
	Data       []T `json:"data"`
	TotalUsers int `json:"total_users"`
}

type leaderboardResp struct {
	TabLeaderboard      *leaderboardPage[TabEntry]      `json:"tab_leaderboard,omitempty"`
	ComposerLeaderboard *leaderboardPage[ComposerEntry] `json:"composer_leaderboard,omitempty"`
}

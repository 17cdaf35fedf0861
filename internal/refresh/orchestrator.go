// Package refresh drives the periodic credential -> fetch -> render cycle and
// the retry cadence around it.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/janekbaraniewski/cursorbar/internal/config"
	"github.com/janekbaraniewski/cursorbar/internal/cursorapi"
	"github.com/janekbaraniewski/cursorbar/internal/token"
)

const (
	NormalInterval    = 60 * time.Second
	FastRetryInterval = 1 * time.Second
	FastRetryWindow   = 60 * time.Second

	NotSignedInMessage = "Not signed in"
)

// Mode selects the refresh cadence.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFastRetry
)

func (m Mode) String() string {
	if m == ModeFastRetry {
		return "fast-retry"
	}
	return "normal"
}

func (m Mode) Interval() time.Duration {
	if m == ModeFastRetry {
		return FastRetryInterval
	}
	return NormalInterval
}

type CredentialSource interface {
	Credential(ctx context.Context, cfg config.Config) (token.Credential, error)
}

// API is the subset of the dashboard client the orchestrator needs.
type API interface {
	FetchUserInfo(ctx context.Context, cred token.Credential) (cursorapi.UserInfo, error)
	FetchUsageSummary(ctx context.Context, cred token.Credential) (cursorapi.UsageSummary, error)
	FetchAllLeaderboards(ctx context.Context, cred token.Credential, teamID int64, email string, windowDays int) (cursorapi.LeaderboardData, error)
}

// Renderer displays the outcome of a refresh cycle. Each cycle ends in exactly
// one ShowError or Update call, except a cycle overtaken by a configuration
// change, which leaves rendering to the reload that follows it.
type Renderer interface {
	ShowLoading()
	ShowError(message string)
	Update(view View)
}

// View is a snapshot of everything the renderers display.
type View struct {
	Usage       cursorapi.UsageSummary     `json:"usage" yaml:"usage"`
	Leaderboard *cursorapi.LeaderboardData `json:"leaderboard,omitempty" yaml:"leaderboard,omitempty"`
	User        cursorapi.UserInfo         `json:"user" yaml:"user"`
	RankDisplay config.RankDisplay         `json:"rankDisplay" yaml:"rank_display"`
	UpdatedAt   time.Time                  `json:"updatedAt" yaml:"updated_at"`
}

// ConfigurationError reports a missing dependency. It is not recoverable.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("refresh: %s is required", e.Field)
}

// Options configures an Orchestrator. Source, API and Renderer are required.
type Options struct {
	Source   CredentialSource
	API      API
	Renderer Renderer
	Clock    Clock
	Logger   zerolog.Logger
	Config   config.Config

	// NewAPI rebuilds the client when api_base_url changes. Optional.
	NewAPI func(baseURL string) API
}

// Orchestrator owns the refresh state: single-flight guard, retry mode,
// timers and the last fetched usage, user and leaderboard data.
type Orchestrator struct {
	source   CredentialSource
	renderer Renderer
	clock    Clock
	logger   zerolog.Logger
	newAPI   func(string) API

	refreshing atomic.Bool
	reload     atomic.Bool

	mu        sync.Mutex
	api       API
	cfg       config.Config
	mode      Mode
	fastSince time.Time
	// set once a fast-retry window runs out; cleared by a credential or focus
	fastSpent bool
	timer     Timer
	started   bool
	suspended bool
	baseCtx   context.Context

	// caches; gen bumps whenever they are invalidated
	gen         uint64
	user        *cursorapi.UserInfo
	userFor     string
	usage       *cursorapi.UsageSummary
	leaderboard *cursorapi.LeaderboardData
	updatedAt   time.Time
}

// New validates opts and returns an idle orchestrator. Call Start to begin.
func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Source == nil:
		return nil, &ConfigurationError{Field: "credential source"}
	case opts.API == nil:
		return nil, &ConfigurationError{Field: "api client"}
	case opts.Renderer == nil:
		return nil, &ConfigurationError{Field: "renderer"}
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	return &Orchestrator{
		source:   opts.Source,
		api:      opts.API,
		renderer: opts.Renderer,
		clock:    clock,
		logger:   opts.Logger.With().Str("component", "refresh").Logger(),
		newAPI:   opts.NewAPI,
		cfg:      opts.Config,
		baseCtx:  context.Background(),
	}, nil
}

// Start shows the loading state, refreshes once and arms the normal timer.
// Timer-driven refreshes run with ctx.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return
	}
	o.started = true
	o.fastSpent = false
	o.baseCtx = ctx
	o.scheduleLocked()
	o.mu.Unlock()

	o.renderer.ShowLoading()
	o.Refresh(ctx)
}

// Stop cancels the timer. An in-flight refresh is allowed to finish.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = false
	o.stopTimerLocked()
}

// Refresh runs one cycle. It returns false without doing anything when another
// cycle is already in flight.
func (o *Orchestrator) Refresh(ctx context.Context) bool {
	if !o.refreshing.CompareAndSwap(false, true) {
		o.logger.Debug().Msg("refresh already in flight; skipping")
		return false
	}
	func() {
		defer o.refreshing.Store(false)
		o.cycle(ctx)
	}()
	if o.reload.Load() {
		o.Refresh(ctx)
	}
	return true
}

func (o *Orchestrator) cycle(ctx context.Context) {
	o.reload.Store(false)

	o.mu.Lock()
	cfg, api, gen := o.cfg, o.api, o.gen
	o.mu.Unlock()

	cred, err := o.source.Credential(ctx, cfg)
	if err != nil {
		if errors.Is(err, token.ErrNotSignedIn) {
			o.logger.Info().Err(err).Msg("no usable session")
			o.noteSignedOut()
			o.renderer.ShowError(NotSignedInMessage)
			return
		}
		o.logger.Error().Err(err).Msg("reading credential")
		o.renderer.ShowError(err.Error())
		return
	}
	o.noteSignedIn()
	if !cred.ExpiresAt.IsZero() {
		o.logger.Debug().Time("expires_at", cred.ExpiresAt).Msg("session token")
	}

	view, err := o.fetch(ctx, api, cfg, cred, gen)
	if o.stale(gen) {
		o.logger.Debug().Msg("configuration changed mid-refresh; discarding result")
		return
	}
	if err != nil {
		o.logger.Warn().Err(err).Msg("refresh failed")
		o.renderer.ShowError(err.Error())
		return
	}
	o.renderer.Update(view)
}

// stale reports whether the caches were invalidated after gen was read. A
// reload cycle is queued whenever that happens.
func (o *Orchestrator) stale(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen != gen
}

func (o *Orchestrator) fetch(ctx context.Context, api API, cfg config.Config, cred token.Credential, gen uint64) (View, error) {
	o.mu.Lock()
	var user *cursorapi.UserInfo
	if o.user != nil && o.userFor == cred.UserID {
		u := *o.user
		user = &u
	}
	o.mu.Unlock()

	if user == nil {
		u, err := api.FetchUserInfo(ctx, cred)
		if err != nil {
			return View{}, err
		}
		user = &u
		o.mu.Lock()
		if o.gen == gen {
			o.user, o.userFor = &u, cred.UserID
		}
		o.mu.Unlock()
	}

	var (
		g           errgroup.Group
		usage       cursorapi.UsageSummary
		leaderboard *cursorapi.LeaderboardData
	)
	g.Go(func() error {
		var err error
		usage, err = api.FetchUsageSummary(ctx, cred)
		return err
	})
	if leaderboardEligible(cfg, *user) {
		g.Go(func() error {
			data, err := api.FetchAllLeaderboards(ctx, cred, user.TeamID, user.Email, cfg.Leaderboard.WindowDays)
			if err != nil {
				return err
			}
			leaderboard = &data
			return nil
		})
	} else if cfg.Leaderboard.Enabled {
		o.logger.Debug().
			Bool("enterprise", user.IsEnterpriseUser).
			Int64("team_id", user.TeamID).
			Msg("leaderboard not available for this account")
	}
	if err := g.Wait(); err != nil {
		return View{}, err
	}

	now := o.clock.Now()

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gen == gen {
		o.usage = &usage
		o.leaderboard = leaderboard
		o.updatedAt = now
	}
	return View{
		Usage:       usage,
		Leaderboard: leaderboard,
		User:        *user,
		RankDisplay: o.cfg.RankDisplay,
		UpdatedAt:   now,
	}, nil
}

func leaderboardEligible(cfg config.Config, user cursorapi.UserInfo) bool {
	return cfg.Leaderboard.Enabled && user.IsEnterpriseUser && user.TeamID != 0
}

func (o *Orchestrator) noteSignedOut() {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.clock.Now()
	switch o.mode {
	case ModeNormal:
		if o.fastSpent {
			return
		}
		o.mode = ModeFastRetry
		o.fastSince = now
		o.logger.Info().Dur("interval", FastRetryInterval).Msg("waiting for sign-in")
		o.scheduleLocked()
	case ModeFastRetry:
		if now.Sub(o.fastSince) >= FastRetryWindow {
			o.mode = ModeNormal
			o.fastSince = time.Time{}
			o.fastSpent = true
			o.logger.Info().Dur("interval", NormalInterval).Msg("still signed out; slowing down")
			o.scheduleLocked()
		}
	}
}

func (o *Orchestrator) noteSignedIn() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.fastSpent = false
	if o.mode != ModeFastRetry {
		return
	}
	o.mode = ModeNormal
	o.fastSince = time.Time{}
	o.logger.Info().Msg("signed in; back to normal cadence")
	o.scheduleLocked()
}

func (o *Orchestrator) scheduleLocked() {
	o.stopTimerLocked()
	if !o.started || o.suspended {
		return
	}
	ctx := o.baseCtx
	o.timer = o.clock.Every(o.mode.Interval(), func() {
		if ctx.Err() != nil {
			return
		}
		o.Refresh(ctx)
	})
}

func (o *Orchestrator) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

// FocusGained resumes the timer for the current mode and refreshes at once.
// A signed-out refresh after focus may start a new fast-retry window.
func (o *Orchestrator) FocusGained(ctx context.Context) {
	o.mu.Lock()
	o.suspended = false
	o.fastSpent = false
	o.scheduleLocked()
	o.mu.Unlock()

	o.Refresh(ctx)
}

// FocusLost stops periodic refreshes until focus returns.
func (o *Orchestrator) FocusLost() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.suspended = true
	o.stopTimerLocked()
}

// ApplyConfig switches to cfg. A rank change re-renders from cache; leaderboard,
// database path and API changes invalidate the affected caches and refresh.
func (o *Orchestrator) ApplyConfig(ctx context.Context, cfg config.Config) {
	o.mu.Lock()
	changed := config.Compare(o.cfg, cfg)
	o.cfg = cfg
	if changed == 0 {
		o.mu.Unlock()
		return
	}

	refetch := false
	if changed.Has(config.ChangeDatabasePath) || changed.Has(config.ChangeAPIBaseURL) {
		o.dropCachesLocked()
		refetch = true
	}
	if changed.Has(config.ChangeAPIBaseURL) && o.newAPI != nil {
		o.api = o.newAPI(cfg.APIBaseURL)
	}
	if changed.Has(config.ChangeLeaderboard) {
		o.gen++
		o.leaderboard = nil
		refetch = true
	}
	if refetch {
		o.reload.Store(true)
	}
	view, cached := o.viewLocked()
	o.mu.Unlock()

	o.logger.Info().Stringer("changes", changed).Msg("configuration changed")

	if refetch {
		o.Refresh(ctx)
		return
	}
	if changed.Has(config.ChangeRankDisplay) && cached {
		o.renderer.Update(view)
	}
}

func (o *Orchestrator) dropCachesLocked() {
	o.gen++
	o.user = nil
	o.userFor = ""
	o.usage = nil
	o.leaderboard = nil
	o.updatedAt = time.Time{}
}

func (o *Orchestrator) viewLocked() (View, bool) {
	if o.usage == nil || o.user == nil {
		return View{}, false
	}
	v := View{
		Usage:       *o.usage,
		User:        *o.user,
		RankDisplay: o.cfg.RankDisplay,
		UpdatedAt:   o.updatedAt,
	}
	if o.leaderboard != nil {
		lb := *o.leaderboard
		v.Leaderboard = &lb
	}
	return v, true
}

// Cached returns the last successful view, if any.
func (o *Orchestrator) Cached() (View, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

func (o *Orchestrator) Mode() Mode {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mode
}

// Interval is the cadence of the armed timer, or 0 when none is running.
func (o *Orchestrator) Interval() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timer == nil {
		return 0
	}
	return o.mode.Interval()
}

func (o *Orchestrator) Config() config.Config {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cfg
}

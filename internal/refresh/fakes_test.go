package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/janekbaraniewski/cursorbar/internal/config"
	"github.com/janekbaraniewski/cursorbar/internal/cursorapi"
	"github.com/janekbaraniewski/cursorbar/internal/token"
)

// fakeClock fires timers synchronously from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	every   time.Duration
	next    time.Time
	fn      func()
	stopped atomic.Bool
}

func (t *fakeTimer) Stop() { t.stopped.Store(true) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Every(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{every: d, next: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var due *fakeTimer
		for _, t := range c.timers {
			if t.stopped.Load() || t.next.After(target) {
				continue
			}
			if due == nil || t.next.Before(due.next) {
				due = t
			}
		}
		if due == nil {
			break
		}
		c.now = due.next
		due.next = due.next.Add(due.every)
		c.mu.Unlock()
		due.fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

type fakeSource struct {
	mu    sync.Mutex
	cred  token.Credential
	err   error
	paths []string
}

func (s *fakeSource) Credential(_ context.Context, cfg config.Config) (token.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, cfg.DatabasePath)
	return s.cred, s.err
}

func (s *fakeSource) set(cred token.Credential, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred, s.err = cred, err
}

func (s *fakeSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

type leaderboardCall struct {
	TeamID     int64
	Email      string
	WindowDays int
}

type fakeAPI struct {
	user     cursorapi.UserInfo
	usage    cursorapi.UsageSummary
	usageErr error

	// when set, FetchUsageSummary signals entered and waits on release
	entered chan struct{}
	release chan struct{}

	userCalls  atomic.Int32
	usageCalls atomic.Int32

	mu       sync.Mutex
	lbCalls  []leaderboardCall
	lbResult cursorapi.LeaderboardData
}

func (a *fakeAPI) FetchUserInfo(context.Context, token.Credential) (cursorapi.UserInfo, error) {
	a.userCalls.Add(1)
	return a.user, nil
}

func (a *fakeAPI) FetchUsageSummary(context.Context, token.Credential) (cursorapi.UsageSummary, error) {
	a.usageCalls.Add(1)
	if a.entered != nil {
		a.entered <- struct{}{}
		<-a.release
	}
	return a.usage, a.usageErr
}

func (a *fakeAPI) FetchAllLeaderboards(_ context.Context, _ token.Credential, teamID int64, email string, windowDays int) (cursorapi.LeaderboardData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lbCalls = append(a.lbCalls, leaderboardCall{teamID, email, windowDays})
	return a.lbResult, nil
}

func (a *fakeAPI) leaderboardCalls() []leaderboardCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]leaderboardCall(nil), a.lbCalls...)
}

type fakeRenderer struct {
	mu     sync.Mutex
	events []string
	views  []View
}

func (r *fakeRenderer) ShowLoading() { r.record("loading") }

func (r *fakeRenderer) ShowError(message string) { r.record("error:" + message) }

func (r *fakeRenderer) Update(view View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "update:"+string(view.RankDisplay))
	r.views = append(r.views, view)
}

func (r *fakeRenderer) record(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *fakeRenderer) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *fakeRenderer) LastView() (View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.views) == 0 {
		return View{}, false
	}
	return r.views[len(r.views)-1], true
}

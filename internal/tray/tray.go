//go:build tray

package tray

import (
	"fyne.io/systray"

	"github.com/janekbaraniewski/cursorbar/internal/refresh"
	"github.com/janekbaraniewski/cursorbar/internal/render"
)

// Run blocks until the tray exits.
func Run(setup Setup) error {
	var setupErr error
	systray.Run(func() {
		setupErr = onReady(setup)
		if setupErr != nil {
			systray.Quit()
		}
	}, func() {})
	return setupErr
}

func onReady(setup Setup) error {
	systray.SetTitle(render.LoadingText)
	systray.SetTooltip("Cursor usage")

	mStatus := systray.AddMenuItem(render.LoadingText, "")
	mStatus.Disable()
	mRank := systray.AddMenuItem("", "")
	mRank.Disable()
	mRank.Hide()
	systray.AddSeparator()
	mRefresh := systray.AddMenuItem("Refresh now", "Fetch usage immediately")
	mQuit := systray.AddMenuItem("Quit", "")

	hooks, err := setup(&menuRenderer{status: mStatus, rank: mRank})
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-mRefresh.ClickedCh:
				if hooks.Refresh != nil {
					hooks.Refresh()
				}
			case <-mQuit.ClickedCh:
				if hooks.Quit != nil {
					hooks.Quit()
				}
				systray.Quit()
				return
			}
		}
	}()
	return nil
}

type menuRenderer struct {
	status *systray.MenuItem
	rank   *systray.MenuItem
}

func (r *menuRenderer) ShowLoading() {
	systray.SetTitle(render.LoadingText)
	r.status.SetTitle(render.LoadingText)
}

func (r *menuRenderer) ShowError(message string) {
	text := render.ErrorText(message)
	systray.SetTitle(text)
	systray.SetTooltip(text)
	r.status.SetTitle(text)
	r.rank.Hide()
}

func (r *menuRenderer) Update(view refresh.View) {
	text := render.StatusText(view)
	systray.SetTitle(text)
	systray.SetTooltip(render.PlainTooltip(view))
	r.status.SetTitle(text)
	if rank, ok := render.ShortRank(view); ok {
		r.rank.SetTitle(string(view.RankDisplay) + " " + rank)
		r.rank.Show()
	} else {
		r.rank.Hide()
	}
}

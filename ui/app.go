package ui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"
	"github.com/yhkl-dev/lofi/config"
	"github.com/yhkl-dev/lofi/domain"
)

// Commander accepts playback commands without blocking
type Commander interface {
	Submit(cmd domain.Command) bool
}

// SnapshotSource provides the state to render
type SnapshotSource interface {
	Snapshot() domain.Snapshot
}

// App represents the TUI application. It never touches playback directly:
// keys become commands and the screen is redrawn from snapshots.
type App struct {
	tviewApp *tview.Application
	cfg      *config.Config
	commands Commander
	state    SnapshotSource
	ctx      context.Context
	logger   logrus.FieldLogger
	title    string

	rootFlex   *tview.Flex
	statusLine *tview.TextView
	artistLine *tview.TextView
	progress   *tview.TextView
	infoLine   *tview.TextView
	errorLine  *tview.TextView
	helpView   *HelpView
	queueView  *QueueView
	keys       *KeyBindingManager
}

// NewApp creates a new TUI application with dependency injection
func NewApp(ctx context.Context, cfg *config.Config, title string, commands Commander, state SnapshotSource, logger logrus.FieldLogger) *App {
	a := &App{
		tviewApp: tview.NewApplication(),
		cfg:      cfg,
		commands: commands,
		state:    state,
		ctx:      ctx,
		logger:   logger.WithField("component", "ui"),
		title:    title,
	}
	a.keys = NewPlayerKeyBindings(PlayerActions{
		Submit:      a.submit,
		ToggleHelp:  a.toggleHelp,
		ToggleQueue: a.toggleQueue,
	}, cfg.Player.VolumeStep)
	return a
}

// Run builds the layout and blocks until Stop is called
func (a *App) Run() error {
	a.createHomepage()
	a.render(a.state.Snapshot())
	go a.refreshLoop()

	a.logger.Info("Starting terminal UI")
	return a.tviewApp.Run()
}

// Stop stops the application
func (a *App) Stop() {
	if a.tviewApp != nil {
		a.tviewApp.Stop()
	}
}

// submit forwards a command; Quit stops the UI right away if the controller is gone
func (a *App) submit(cmd domain.Command) bool {
	if a.commands.Submit(cmd) {
		return true
	}
	if cmd.Kind == domain.CmdQuit {
		a.Stop()
	}
	return false
}

// createHomepage sets up the UI layout
func (a *App) createHomepage() {
	newLine := func() *tview.TextView {
		tv := tview.NewTextView().
			SetDynamicColors(true).
			SetScrollable(false).
			SetWrap(false)
		tv.SetBorder(false)
		return tv
	}
	a.statusLine = newLine()
	a.artistLine = newLine()
	a.progress = newLine()
	a.infoLine = newLine()
	a.errorLine = newLine()

	hint := newLine()
	hint.SetText(CreateControlsHint())

	a.helpView = NewHelpView()
	a.queueView = NewQueueView()

	player := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.statusLine, 1, 0, false).
		AddItem(a.artistLine, 1, 0, false).
		AddItem(a.progress, 1, 0, false).
		AddItem(a.infoLine, 1, 0, false).
		AddItem(a.errorLine, 1, 0, false).
		AddItem(hint, 1, 0, false)
	player.SetBorder(true).
		SetTitle(" lofi · " + tview.Escape(a.title) + " ").
		SetBorderColor(tcell.ColorDarkCyan)

	a.rootFlex = centered(player, a.cfg.UI.Width+4, 8)
	a.setupInputHandlers()
	a.tviewApp.SetRoot(a.rootFlex, true)
}

// setupInputHandlers routes keys to overlays first, then to the key map
func (a *App) setupInputHandlers() {
	a.tviewApp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if a.helpView.IsActive() {
			if event.Key() == tcell.KeyEscape || event.Rune() == '?' {
				a.toggleHelp()
				return nil
			}
			return event
		}
		if a.queueView.IsActive() {
			if event.Key() == tcell.KeyEscape || event.Rune() == 'u' {
				a.toggleQueue()
				return nil
			}
			return event
		}

		if a.keys.HandleKey(event) {
			return nil
		}
		return event
	})
}

// refreshLoop redraws the screen from a fresh snapshot on every tick
func (a *App) refreshLoop() {
	ticker := time.NewTicker(a.cfg.UI.FrameInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			snap := a.state.Snapshot()
			a.tviewApp.QueueUpdateDraw(func() {
				a.render(snap)
			})
		case <-a.ctx.Done():
			a.Stop()
			return
		}
	}
}

func (a *App) render(snap domain.Snapshot) {
	if a.statusLine == nil {
		return
	}
	width := a.cfg.UI.Width
	a.statusLine.SetText(FormatStatusLine(snap, width))
	a.artistLine.SetText(FormatArtistLine(snap, width))
	a.progress.SetText(FormatProgressLine(snap, width))
	a.infoLine.SetText(FormatVolumeLine(snap))
	a.errorLine.SetText(FormatErrorLine(snap, width))
	if a.queueView.IsActive() {
		a.queueView.Refresh(snap.Upcoming)
	}
}

// toggleHelp shows or hides the help modal view
func (a *App) toggleHelp() {
	if a.helpView.IsActive() {
		a.helpView.isActive = false
		a.tviewApp.SetRoot(a.rootFlex, true)
		return
	}
	a.helpView.isActive = true
	a.tviewApp.SetRoot(centered(a.helpView.GetContainer(), 60, 24), true)
	a.tviewApp.SetFocus(a.helpView.textView)
}

// toggleQueue shows or hides the upcoming tracks view
func (a *App) toggleQueue() {
	if a.queueView.IsActive() {
		a.queueView.isActive = false
		a.tviewApp.SetRoot(a.rootFlex, true)
		return
	}
	a.queueView.isActive = true
	a.queueView.Refresh(a.state.Snapshot().Upcoming)
	a.tviewApp.SetRoot(centered(a.queueView.GetContainer(), 60, 12), true)
	a.tviewApp.SetFocus(a.queueView.table)
}

// centered wraps p in a modal-style container of the given size
func centered(p tview.Primitive, width, height int) *tview.Flex {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexColumn).
			AddItem(nil, 0, 1, false).
			AddItem(p, width, 0, true).
			AddItem(nil, 0, 1, false), height, 0, true).
		AddItem(nil, 0, 1, false)
}

package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const helpText = `[yellow::b]Keyboard Shortcuts[-:-:-]

[lightgreen]Playback:[-]
  [white]s / n / l[-]    Skip to the next track
  [white]Space / p[-]    Play/Pause
  [white]b[-]            Bookmark the current track

[lightgreen]Volume:[-]
  [white]+ / = / k / ↑[-]  Louder
  [white]- / _ / j / ↓[-]  Quieter
  [white]→ / ←[-]          Fine adjust

[lightgreen]General:[-]
  [white]u[-]            Show upcoming tracks
  [white]?[-]            Show this help panel
  [white]q / Esc[-]      Quit
  [white]Ctrl+C[-]       Quit

[yellow]Press ESC or ? to close this help panel[-]
`

// HelpView represents the keyboard shortcuts help interface
type HelpView struct {
	container *tview.Flex
	textView  *tview.TextView
	isActive  bool
}

// NewHelpView creates a new help view
func NewHelpView() *HelpView {
	hv := &HelpView{}

	hv.textView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	hv.textView.SetText(helpText)

	hv.container = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(hv.textView, 0, 1, true)

	hv.container.SetBorder(true).
		SetTitle(" Help (ESC to close) ").
		SetBorderColor(tcell.ColorYellow)

	return hv
}

// IsActive returns whether the help view is active
func (hv *HelpView) IsActive() bool {
	return hv.isActive
}

// GetContainer returns the help view container
func (hv *HelpView) GetContainer() *tview.Flex {
	return hv.container
}

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"
	"github.com/yhkl-dev/lofi/domain"
)

// FormatDuration converts a duration to MM:SS format
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// CreateProgressBar creates a visual progress bar
func CreateProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	filledWidth := int(progress * float64(width))

	var b strings.Builder
	b.WriteString("[lightgreen]")
	b.WriteString(strings.Repeat("▓", filledWidth))
	b.WriteString("[darkgray]")
	b.WriteString(strings.Repeat("░", width-filledWidth))
	return b.String()
}

// Progress returns how far into the track a snapshot is, or 0 when unknown
func Progress(snap domain.Snapshot) float64 {
	if snap.Duration <= 0 {
		return 0
	}
	p := float64(snap.Elapsed) / float64(snap.Duration)
	if p > 1 {
		return 1
	}
	return p
}

// FormatStatusLine shows the playback status and the current track
func FormatStatusLine(snap domain.Snapshot, width int) string {
	var status string
	switch snap.Status {
	case domain.StatusPlaying:
		status = "[lightgreen]playing"
	case domain.StatusPaused:
		status = "[yellow]paused"
	case domain.StatusLoading:
		return "[gray]loading..."
	default:
		return "[red]stopped"
	}

	name := snap.TrackName
	if snap.Bookmarked {
		name += " ★"
	}
	name = truncate(name, width-len("playing")-1)
	return fmt.Sprintf("%s [white]%s", status, tview.Escape(name))
}

// FormatArtistLine shows the artist from the track tags, when there is one
func FormatArtistLine(snap domain.Snapshot, width int) string {
	if snap.Artist == "" || snap.Track == nil {
		return ""
	}
	return "[gray]" + tview.Escape(truncate(snap.Artist, width))
}

// FormatProgressLine shows elapsed and total time around a progress bar
func FormatProgressLine(snap domain.Snapshot, width int) string {
	if snap.Track == nil {
		return "[darkgray]" + strings.Repeat("░", max(width-12, 1)) + " --:--/--:--"
	}
	total := "--:--"
	if snap.Duration > 0 {
		total = FormatDuration(snap.Duration)
	}
	barWidth := max(width-12, 1)
	return fmt.Sprintf("%s [white]%s/%s", CreateProgressBar(Progress(snap), barWidth), FormatDuration(snap.Elapsed), total)
}

// FormatVolumeLine shows the volume and the prefetch queue depth
func FormatVolumeLine(snap domain.Snapshot) string {
	return fmt.Sprintf("[darkgray]vol [white]%3d%% [darkgray]queue [white]%d", snap.Volume, snap.QueueReady)
}

// FormatErrorLine shows the last recoverable error, if any
func FormatErrorLine(snap domain.Snapshot, width int) string {
	if snap.LastError == "" {
		return ""
	}
	return "[red]" + tview.Escape(truncate(snap.LastError, width))
}

// CreateControlsHint lists the most used keys
func CreateControlsHint() string {
	return "[darkgray][s]kip [p]ause [+/-] vol [b]ookmark [q]uit [?] help"
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

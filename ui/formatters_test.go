package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/yhkl-dev/lofi/domain"
)

func TestFormatDuration(t *testing.T) {
	testCases := map[time.Duration]string{
		0:                             "00:00",
		59 * time.Second:              "00:59",
		3*time.Minute + 7*time.Second: "03:07",
		-time.Second:                  "00:00",
	}
	for d, want := range testCases {
		if got := FormatDuration(d); got != want {
			t.Errorf("%v: expected %s, got %s", d, want, got)
		}
	}
}

func TestCreateProgressBar(t *testing.T) {
	bar := CreateProgressBar(0.5, 10)
	if strings.Count(bar, "▓") != 5 || strings.Count(bar, "░") != 5 {
		t.Errorf("Expected half filled bar, got %q", bar)
	}
	if strings.Count(CreateProgressBar(2, 4), "▓") != 4 {
		t.Errorf("Expected progress to clamp at full")
	}
}

func TestFormatStatusLine(t *testing.T) {
	track := domain.TrackRef{Locator: "/a.mp3", DisplayName: "Rainy [Day]"}
	snap := domain.Snapshot{Status: domain.StatusPlaying, Track: &track, TrackName: track.Name(), Bookmarked: true}

	line := FormatStatusLine(snap, 40)
	if !strings.Contains(line, "playing") || !strings.Contains(line, "★") {
		t.Errorf("Unexpected status line %q", line)
	}
	if !strings.Contains(line, "Rainy [Day[]") {
		t.Errorf("Expected track name to be escaped, got %q", line)
	}

	if line := FormatStatusLine(domain.Snapshot{Status: domain.StatusLoading}, 40); !strings.Contains(line, "loading") {
		t.Errorf("Unexpected loading line %q", line)
	}
	if line := FormatStatusLine(domain.Snapshot{Status: domain.StatusStopped}, 40); !strings.Contains(line, "stopped") {
		t.Errorf("Unexpected stopped line %q", line)
	}
}

func TestFormatProgressLine(t *testing.T) {
	track := domain.TrackRef{Locator: "/a.mp3"}
	snap := domain.Snapshot{Track: &track, Elapsed: 30 * time.Second, Duration: 2 * time.Minute}
	if line := FormatProgressLine(snap, 32); !strings.HasSuffix(line, "00:30/02:00") {
		t.Errorf("Unexpected progress line %q", line)
	}

	snap.Duration = 0
	if line := FormatProgressLine(snap, 32); !strings.HasSuffix(line, "00:30/--:--") {
		t.Errorf("Expected unknown duration placeholder, got %q", line)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("Expected abc…, got %s", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Errorf("Expected abc, got %s", got)
	}
}

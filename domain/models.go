package domain

import (
	"strings"
	"time"
)

// TrackRef is a logical track: where to get it and how to call it
type TrackRef struct {
	Locator     string
	DisplayName string
}

// Name returns the display name, falling back to the locator
func (t TrackRef) Name() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.Locator
}

// IsRemote reports whether the locator points at an HTTP(S) resource
func (t TrackRef) IsRemote() bool {
	return strings.HasPrefix(t.Locator, "http://") || strings.HasPrefix(t.Locator, "https://")
}

// TrackListHeader describes how entries of a track list are resolved.
// It is computed once when the list is loaded.
type TrackListHeader struct {
	Base        string
	IsURL       bool
	IsLocalFile bool
	HasHeader   bool
}

// LoadedTrack is a fetched track waiting to be decoded and played.
// It has exactly one owner at a time.
type LoadedTrack struct {
	Ref       TrackRef
	Data      []byte
	FetchedIn time.Duration
}

// Status is the playback controller state
type Status int

const (
	StatusStopped Status = iota
	StatusLoading
	StatusPlaying
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// CommandKind enumerates what the UI can ask the controller to do
type CommandKind int

const (
	CmdSkip CommandKind = iota
	CmdPlayPause
	CmdVolumeUp
	CmdVolumeDown
	CmdBookmark
	CmdQuit
)

func (k CommandKind) String() string {
	switch k {
	case CmdSkip:
		return "skip"
	case CmdPlayPause:
		return "play-pause"
	case CmdVolumeUp:
		return "volume-up"
	case CmdVolumeDown:
		return "volume-down"
	case CmdBookmark:
		return "bookmark"
	case CmdQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command is a single request from the UI. Step is only used by volume commands.
type Command struct {
	Kind CommandKind
	Step int
}

func Skip() Command { return Command{Kind: CmdSkip} }
func PlayPause() Command { return Command{Kind: CmdPlayPause} }
func VolumeUp(step int) Command { return Command{Kind: CmdVolumeUp, Step: step} }
func VolumeDown(step int) Command { return Command{Kind: CmdVolumeDown, Step: step} }
func Bookmark() Command { return Command{Kind: CmdBookmark} }
func Quit() Command { return Command{Kind: CmdQuit} }

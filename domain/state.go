package domain

import (
	"sync"
	"time"
)

// DefaultVolume is the volume a fresh player starts with
const DefaultVolume = 100

// Progress reports how far the active stream has played.
// Implementations must be safe to call from any goroutine.
type Progress interface {
	Elapsed() time.Duration
	Duration() time.Duration
}

// Snapshot is an immutable copy of the player state handed to collaborators
type Snapshot struct {
	Status     Status
	Volume     int
	Track      *TrackRef
	TrackName  string
	Artist     string
	QueueReady int
	Upcoming   []string
	Bookmarked bool
	Elapsed    time.Duration
	Duration   time.Duration
	LastError  string
}

// PlayerState manages the current playback state in a thread-safe manner.
// The playback controller is its only writer.
type PlayerState struct {
	status     Status
	volume     int
	track      *TrackRef
	artist     string
	queueReady int
	upcoming   []string
	bookmarked bool
	lastError  string
	progress   Progress
	mux        sync.RWMutex
}

// NewPlayerState creates a new PlayerState with default values
func NewPlayerState(volume int) *PlayerState {
	return &PlayerState{
		status: StatusStopped,
		volume: ClampVolume(volume),
	}
}

// ClampVolume keeps a volume percentage inside 0..100
func ClampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Snapshot returns a copy of the current state (thread-safe)
func (s *PlayerState) Snapshot() Snapshot {
	s.mux.RLock()
	defer s.mux.RUnlock()

	snap := Snapshot{
		Status:     s.status,
		Volume:     s.volume,
		Artist:     s.artist,
		QueueReady: s.queueReady,
		Upcoming:   append([]string(nil), s.upcoming...),
		Bookmarked: s.bookmarked,
		LastError:  s.lastError,
	}
	if s.track != nil {
		track := *s.track
		snap.Track = &track
		snap.TrackName = track.Name()
	}
	if s.progress != nil {
		snap.Elapsed = s.progress.Elapsed()
		snap.Duration = s.progress.Duration()
	}
	return snap
}

// Status returns the current status (thread-safe)
func (s *PlayerState) Status() Status {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.status
}

// Volume returns the current volume (thread-safe)
func (s *PlayerState) Volume() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.volume
}

// SetStatus updates the playback status (thread-safe)
func (s *PlayerState) SetStatus(status Status) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.status = status
}

// SetVolume updates the volume and returns the clamped value (thread-safe)
func (s *PlayerState) SetVolume(volume int) int {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.volume = ClampVolume(volume)
	return s.volume
}

// SetCurrent updates the current track and its progress source (thread-safe).
// A nil track clears both.
func (s *PlayerState) SetCurrent(track *TrackRef, artist string, progress Progress, bookmarked bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if track == nil {
		s.track = nil
		s.artist = ""
		s.progress = nil
		s.bookmarked = false
		return
	}
	t := *track
	s.track = &t
	s.artist = artist
	s.progress = progress
	s.bookmarked = bookmarked
}

// SetBookmarked updates the bookmark flag of the current track (thread-safe)
func (s *PlayerState) SetBookmarked(bookmarked bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.bookmarked = bookmarked
}

// SetQueue updates the prefetch queue view (thread-safe)
func (s *PlayerState) SetQueue(ready int, upcoming []string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.queueReady = ready
	s.upcoming = append(s.upcoming[:0:0], upcoming...)
}

// SetLastError records the most recent recoverable error (thread-safe)
func (s *PlayerState) SetLastError(msg string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.lastError = msg
}

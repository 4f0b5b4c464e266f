package player

import (
	"time"

	"github.com/yhkl-dev/lofi/domain"
)

// Decoder turns fetched bytes into something the audio output can play
type Decoder interface {
	// Decode opens the container held by track. Failures are *domain.DecodeError.
	Decode(track domain.LoadedTrack) (*Decoded, error)
}

// Output abstracts the audio device so the controller can be driven without one
type Output interface {
	// Start begins playing d and returns its handle. Any stream still active
	// is torn down first, so at most one plays at a time.
	Start(d *Decoded, volume int, paused bool) (Stream, error)

	// Close stops playback and releases the device
	Close() error
}

// Stream is the handle of the single active playback
type Stream interface {
	// SetVolume applies a 0..100 volume immediately
	SetVolume(volume int)

	// SetPaused pauses or resumes without losing position
	SetPaused(paused bool)

	// Done is closed once the track has played to its end or the stream was closed
	Done() <-chan struct{}

	// Elapsed returns how much of the track has been played
	Elapsed() time.Duration

	// Duration returns the track length, or zero when unknown
	Duration() time.Duration

	// Close stops the stream. It returns once no more audio from it can be heard.
	Close() error
}

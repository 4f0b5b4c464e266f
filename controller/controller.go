package controller

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yhkl-dev/lofi/domain"
	"github.com/yhkl-dev/lofi/library"
	"github.com/yhkl-dev/lofi/player"
	"github.com/yhkl-dev/lofi/prefetch"
	"go.uber.org/atomic"
)

// DefaultVolumeStep is used by volume commands that carry no step
const DefaultVolumeStep = 10

// Buffer is the part of the prefetch buffer the controller consumes
type Buffer interface {
	TryTakeNext() (*domain.LoadedTrack, bool)
	Ready() <-chan struct{}
	Events() <-chan prefetch.Event
	Exhausted() bool
	Upcoming() []string
}

// Bookmarks persists bookmarked tracks
type Bookmarks interface {
	Toggle(ref domain.TrackRef) (bool, error)
	Contains(locator string) bool
}

// Options tune a Controller
type Options struct {
	Paused        bool
	CommandBuffer int
	Logger        logrus.FieldLogger
}

// Controller owns the audio output and is the only writer of PlayerState.
// Everything it does happens on the goroutine running Run.
type Controller struct {
	buffer    Buffer
	decoder   player.Decoder
	output    player.Output
	bookmarks Bookmarks
	state     *domain.PlayerState
	logger    logrus.FieldLogger

	commands chan domain.Command
	done     chan struct{}

	paused  bool
	current player.Stream
	track   *domain.TrackRef
	started *atomic.Int64
}

// New creates a controller. bookmarks may be nil, which disables bookmarking.
func New(buffer Buffer, decoder player.Decoder, output player.Output, bookmarks Bookmarks, state *domain.PlayerState, opts Options) *Controller {
	if opts.CommandBuffer < 1 {
		opts.CommandBuffer = 32
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Controller{
		buffer:    buffer,
		decoder:   decoder,
		output:    output,
		bookmarks: bookmarks,
		state:     state,
		logger:    logger.WithField("component", "controller"),
		commands:  make(chan domain.Command, opts.CommandBuffer),
		done:      make(chan struct{}),
		paused:    opts.Paused,
		started:   atomic.NewInt64(0),
	}
}

// State returns the state the controller publishes
func (c *Controller) State() *domain.PlayerState {
	return c.state
}

// Snapshot is a shortcut for State().Snapshot()
func (c *Controller) Snapshot() domain.Snapshot {
	return c.state.Snapshot()
}

// TracksStarted returns how many tracks have begun playing
func (c *Controller) TracksStarted() int64 {
	return c.started.Load()
}

// Submit queues a command without waiting for it to run. It reports false when
// the command was dropped: the queue is full or the controller has stopped.
// Quit is never dropped while the controller is running.
func (c *Controller) Submit(cmd domain.Command) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.commands <- cmd:
		return true
	default:
	}

	if cmd.Kind != domain.CmdQuit {
		c.logger.WithField("command", cmd.Kind).Warn("Command queue full, dropping command")
		return false
	}
	select {
	case c.commands <- cmd:
		return true
	case <-c.done:
		return false
	}
}

// Run is the control loop. It returns when Quit is handled or ctx is done,
// with the active stream already torn down.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	c.state.SetStatus(domain.StatusLoading)
	c.advance()

	for {
		select {
		case <-ctx.Done():
			c.stop()
			return nil

		case cmd := <-c.commands:
			if quit := c.handle(cmd); quit {
				return nil
			}

		case <-c.buffer.Ready():
			if c.current == nil {
				c.advance()
			} else {
				c.syncQueue()
			}

		case e := <-c.buffer.Events():
			c.handleEvent(e)

		case <-c.streamDone():
			c.logger.WithField("track", c.track.Name()).Debug("Track finished")
			c.advance()
		}
	}
}

func (c *Controller) streamDone() <-chan struct{} {
	if c.current == nil {
		return nil
	}
	return c.current.Done()
}

func (c *Controller) handle(cmd domain.Command) bool {
	switch cmd.Kind {
	case domain.CmdSkip:
		if c.current == nil {
			return false
		}
		c.logger.WithField("track", c.track.Name()).Debug("Skipping track")
		c.advance()

	case domain.CmdPlayPause:
		c.paused = !c.paused
		if c.current != nil {
			c.current.SetPaused(c.paused)
			c.state.SetStatus(c.playingStatus())
		}

	case domain.CmdVolumeUp, domain.CmdVolumeDown:
		step := cmd.Step
		if step == 0 {
			step = DefaultVolumeStep
		}
		if cmd.Kind == domain.CmdVolumeDown {
			step = -step
		}
		volume := c.state.SetVolume(c.state.Volume() + step)
		if c.current != nil {
			c.current.SetVolume(volume)
		}

	case domain.CmdBookmark:
		if c.track == nil || c.bookmarks == nil {
			return false
		}
		on, err := c.bookmarks.Toggle(*c.track)
		if err != nil {
			c.logger.WithError(err).WithField("track", c.track.Name()).Warn("Failed to update bookmarks")
			c.state.SetLastError(err.Error())
			return false
		}
		c.state.SetBookmarked(on)

	case domain.CmdQuit:
		c.stop()
		return true
	}
	return false
}

func (c *Controller) handleEvent(e prefetch.Event) {
	switch e.Kind {
	case prefetch.EventFailed:
		if e.Err != nil {
			c.state.SetLastError(e.Err.Error())
		}
		c.syncQueue()

	case prefetch.EventExhausted:
		c.state.SetLastError(domain.ErrExhausted.Error())
		if c.current == nil {
			c.state.SetStatus(domain.StatusStopped)
		}

	case prefetch.EventResumed:
		if c.current == nil {
			c.advance()
		}
	}
}

// advance tears down the active stream and starts the next ready track.
// With nothing ready the controller waits in Loading, or Stopped when the
// buffer has given up.
func (c *Controller) advance() {
	c.teardown()

	for {
		track, ok := c.buffer.TryTakeNext()
		if !ok {
			if c.buffer.Exhausted() {
				c.state.SetStatus(domain.StatusStopped)
			} else {
				c.state.SetStatus(domain.StatusLoading)
			}
			c.syncQueue()
			return
		}
		if err := c.start(track); err != nil {
			entry := c.logger.WithFields(logrus.Fields{
				"track":   track.Ref.Name(),
				"locator": track.Ref.Locator,
			}).WithError(err)
			if domain.IsRecoverable(err) {
				entry.Warn("Skipping track that could not be played")
			} else {
				entry.Error("Audio output failed to start a track")
			}
			c.state.SetLastError(err.Error())
			continue
		}
		c.syncQueue()
		return
	}
}

func (c *Controller) start(track *domain.LoadedTrack) error {
	decoded, err := c.decoder.Decode(*track)
	if err != nil {
		return err
	}

	stream, err := c.output.Start(decoded, c.state.Volume(), c.paused)
	if err != nil {
		decoded.Close()
		return err
	}

	ref := track.Ref
	c.current = stream
	c.track = &ref
	c.started.Inc()

	// a tag title beats a name derived from the file name
	shown := ref
	if decoded.Title != "" && (ref.DisplayName == "" || ref.DisplayName == library.DisplayName(ref.Locator)) {
		shown.DisplayName = decoded.Title
	}

	bookmarked := c.bookmarks != nil && c.bookmarks.Contains(ref.Locator)
	c.state.SetCurrent(&shown, decoded.Artist, stream, bookmarked)
	c.state.SetLastError("")
	c.state.SetStatus(c.playingStatus())

	c.logger.WithFields(logrus.Fields{
		"track":    shown.Name(),
		"artist":   decoded.Artist,
		"duration": decoded.Duration,
		"paused":   c.paused,
	}).Info("Now playing")
	return nil
}

func (c *Controller) teardown() {
	if c.current == nil {
		return
	}
	if err := c.current.Close(); err != nil {
		c.logger.WithError(err).Warn("Failed to close stream")
	}
	c.current = nil
	c.track = nil
	c.state.SetCurrent(nil, "", nil, false)
}

func (c *Controller) stop() {
	c.teardown()
	c.state.SetStatus(domain.StatusStopped)
}

func (c *Controller) playingStatus() domain.Status {
	if c.paused {
		return domain.StatusPaused
	}
	return domain.StatusPlaying
}

func (c *Controller) syncQueue() {
	upcoming := c.buffer.Upcoming()
	c.state.SetQueue(len(upcoming), upcoming)
}

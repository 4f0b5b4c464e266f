package prefetch

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/yhkl-dev/lofi/domain"
	"github.com/yhkl-dev/lofi/library"
	"go.uber.org/atomic"
)

// DefaultDepth is how many tracks are kept ready or downloading
const DefaultDepth = 5

// Fetcher resolves a track reference to its bytes
type Fetcher interface {
	Fetch(ctx context.Context, ref domain.TrackRef, timeout time.Duration) ([]byte, error)
}

// Options tune a Buffer
type Options struct {
	Depth          int
	Timeout        time.Duration
	ExhaustedRetry time.Duration
	Logger         logrus.FieldLogger
}

// slot is a reserved queue position; track is nil while the fetch is in flight
type slot struct {
	ref   domain.TrackRef
	track *domain.LoadedTrack
}

// Buffer keeps up to Depth tracks downloaded ahead of playback.
// Slots are held in draw order and ready plus in-flight never exceeds Depth.
type Buffer struct {
	mu     sync.Mutex
	slots  []*slot
	list   library.Source
	failed map[string]struct{} // distinct locators that failed since the last success

	fetcher   Fetcher
	opts      Options
	logger    logrus.FieldLogger
	exhausted *atomic.Bool
	fetches   *atomic.Int64

	wake   chan struct{}
	ready  chan struct{}
	events chan Event
}

// New creates a buffer over list. Nothing is fetched until Run is called.
func New(list library.Source, fetcher Fetcher, opts Options) *Buffer {
	if opts.Depth < 1 {
		opts.Depth = DefaultDepth
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Buffer{
		list:      list,
		failed:    make(map[string]struct{}),
		fetcher:   fetcher,
		opts:      opts,
		logger:    logger.WithField("component", "prefetch"),
		exhausted: atomic.NewBool(false),
		fetches:   atomic.NewInt64(0),
		wake:      make(chan struct{}, 1),
		ready:     make(chan struct{}, 1),
		events:    make(chan Event, 16),
	}
}

// Run is the refill loop. It returns after ctx is done and every in-flight
// fetch has finished.
func (b *Buffer) Run(ctx context.Context) {
	var wg conc.WaitGroup
	defer func() {
		if r := wg.WaitAndRecover(); r != nil {
			b.logger.WithError(r.AsError()).Error("Fetch worker panicked")
		}
	}()

	var retry <-chan time.Time
	for {
		b.fill(ctx, &wg)

		if b.exhausted.Load() && retry == nil && b.opts.ExhaustedRetry > 0 {
			retry = time.After(b.opts.ExhaustedRetry)
		}

		select {
		case <-ctx.Done():
			return
		case <-b.wake:
		case <-retry:
			retry = nil
			b.retry()
		}
	}
}

// fill reserves slots and starts fetches until the buffer is at depth
func (b *Buffer) fill(ctx context.Context, wg *conc.WaitGroup) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.slots) < b.opts.Depth && !b.exhausted.Load() && ctx.Err() == nil {
		s := &slot{ref: b.list.Next()}
		b.slots = append(b.slots, s)
		wg.Go(func() { b.fetch(ctx, s) })
	}
}

func (b *Buffer) fetch(ctx context.Context, s *slot) {
	b.fetches.Inc()
	start := time.Now()
	data, err := b.fetcher.Fetch(ctx, s.ref, b.opts.Timeout)

	if ctx.Err() != nil {
		b.mu.Lock()
		b.removeLocked(s)
		b.mu.Unlock()
		return
	}

	if err != nil {
		b.fail(s, err)
		return
	}

	b.mu.Lock()
	s.track = &domain.LoadedTrack{Ref: s.ref, Data: data, FetchedIn: time.Since(start)}
	clear(b.failed)
	resumed := b.exhausted.CompareAndSwap(true, false)
	b.mu.Unlock()

	b.logger.WithFields(logrus.Fields{
		"track":   s.ref.Name(),
		"bytes":   len(data),
		"elapsed": s.track.FetchedIn.Round(time.Millisecond),
	}).Debug("Track ready")

	if resumed {
		b.emit(Event{Kind: EventResumed})
	}
	notify(b.ready)
}

func (b *Buffer) fail(s *slot, err error) {
	b.mu.Lock()
	b.removeLocked(s)
	b.failed[s.ref.Locator] = struct{}{}
	exhausted := len(b.failed) >= b.list.Len() && b.exhausted.CompareAndSwap(false, true)
	b.mu.Unlock()

	b.logger.WithFields(logrus.Fields{
		"track":   s.ref.Name(),
		"locator": s.ref.Locator,
		"timeout": domain.IsTimeout(err),
	}).WithError(err).Warn("Failed to fetch track")
	b.emit(Event{Kind: EventFailed, Ref: s.ref, Err: err})

	if exhausted {
		b.logger.WithError(domain.ErrExhausted).Error("Every track in the list failed, waiting before trying again")
		b.emit(Event{Kind: EventExhausted, Err: domain.ErrExhausted})
	}
	notify(b.wake)
}

func (b *Buffer) retry() {
	b.mu.Lock()
	clear(b.failed)
	resumed := b.exhausted.CompareAndSwap(true, false)
	b.mu.Unlock()

	if resumed {
		b.logger.Info("Retrying exhausted track list")
		b.emit(Event{Kind: EventResumed})
	}
}

// Reload swaps in a new track list. Ready tracks from the old list are kept.
func (b *Buffer) Reload(list library.Source) {
	b.mu.Lock()
	b.list = list
	clear(b.failed)
	resumed := b.exhausted.CompareAndSwap(true, false)
	b.mu.Unlock()

	if resumed {
		b.emit(Event{Kind: EventResumed})
	}
	notify(b.wake)
}

// TryTakeNext pops the oldest ready track without blocking
func (b *Buffer) TryTakeNext() (*domain.LoadedTrack, bool) {
	b.mu.Lock()
	var track *domain.LoadedTrack
	for _, s := range b.slots {
		if s.track != nil {
			track = s.track
			b.removeLocked(s)
			break
		}
	}
	b.mu.Unlock()

	if track == nil {
		return nil, false
	}
	notify(b.wake)
	return track, true
}

// Ready signals that at least one track became ready since the last receive
func (b *Buffer) Ready() <-chan struct{} {
	return b.ready
}

// Events delivers failures and exhaustion changes. Events are dropped when
// nobody keeps up with them; Exhausted() stays authoritative.
func (b *Buffer) Events() <-chan Event {
	return b.events
}

// Exhausted reports whether the buffer gave up on the current list
func (b *Buffer) Exhausted() bool {
	return b.exhausted.Load()
}

// Stats returns the current slot counts
func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := Stats{Depth: b.opts.Depth, Exhausted: b.exhausted.Load(), Fetches: int(b.fetches.Load())}
	for _, s := range b.slots {
		if s.track != nil {
			st.Ready++
		} else {
			st.InFlight++
		}
	}
	return st
}

// Upcoming lists the names of ready tracks in play order
func (b *Buffer) Upcoming() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, 0, len(b.slots))
	for _, s := range b.slots {
		if s.track != nil {
			names = append(names, s.ref.Name())
		}
	}
	return names
}

func (b *Buffer) removeLocked(target *slot) {
	for i, s := range b.slots {
		if s == target {
			b.slots = append(b.slots[:i], b.slots[i+1:]...)
			return
		}
	}
}

func (b *Buffer) emit(e Event) {
	select {
	case b.events <- e:
	default:
		b.logger.WithField("event", e.Kind).Debug("Event dropped")
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

package output

import (
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/yhkl-dev/lofi/domain"
	"github.com/yhkl-dev/lofi/player"
	"go.uber.org/atomic"
)

// DefaultSampleRate is the rate the device is opened at; other tracks are resampled
const DefaultSampleRate = beep.SampleRate(44100)

var _ player.Output = (*Speaker)(nil)

// Speaker is the player.Output backed by the system audio device
type Speaker struct {
	sampleRate beep.SampleRate
	mu         sync.Mutex
	active     *speakerStream
}

// NewSpeaker opens the default audio device
func NewSpeaker(sampleRate beep.SampleRate, latency time.Duration) (*Speaker, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if latency <= 0 {
		latency = time.Second / 10
	}
	if err := speaker.Init(sampleRate, sampleRate.N(latency)); err != nil {
		return nil, &domain.AudioDeviceError{Err: err}
	}
	return &Speaker{sampleRate: sampleRate}, nil
}

// Start plays d on the device, tearing down the previous stream first
func (s *Speaker) Start(d *player.Decoded, volume int, paused bool) (player.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.active.Close()
		s.active = nil
	}

	st := newSpeakerStream(d, s.sampleRate, volume, paused)
	speaker.Play(beep.Seq(st.ctrl, beep.Callback(st.finish)))
	s.active = st
	return st, nil
}

// Close stops any active stream and closes the device
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.active.Close()
		s.active = nil
	}
	speaker.Close()
	return nil
}

type speakerStream struct {
	source   beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	played   *atomic.Int64
	duration time.Duration
	done     chan struct{}
	doneOnce sync.Once
	closed   *atomic.Bool
}

func newSpeakerStream(d *player.Decoded, rate beep.SampleRate, volume int, paused bool) *speakerStream {
	st := &speakerStream{
		source:   d.Streamer,
		format:   d.Format,
		played:   atomic.NewInt64(0),
		duration: d.Duration,
		done:     make(chan struct{}),
		closed:   atomic.NewBool(false),
	}

	var s beep.Streamer = &countingStreamer{Streamer: d.Streamer, n: st.played}
	if d.Format.SampleRate != rate {
		s = beep.Resample(4, d.Format.SampleRate, rate, s)
	}

	st.volume = &effects.Volume{Streamer: s, Base: 2}
	applyVolume(st.volume, volume)
	st.ctrl = &beep.Ctrl{Streamer: st.volume, Paused: paused}
	return st
}

func (st *speakerStream) SetVolume(volume int) {
	speaker.Lock()
	applyVolume(st.volume, volume)
	speaker.Unlock()
}

func (st *speakerStream) SetPaused(paused bool) {
	speaker.Lock()
	st.ctrl.Paused = paused
	speaker.Unlock()
}

func (st *speakerStream) Done() <-chan struct{} {
	return st.done
}

func (st *speakerStream) Elapsed() time.Duration {
	return st.format.SampleRate.D(int(st.played.Load()))
}

func (st *speakerStream) Duration() time.Duration {
	return st.duration
}

func (st *speakerStream) Close() error {
	if !st.closed.CompareAndSwap(false, true) {
		return nil
	}

	speaker.Lock()
	st.ctrl.Streamer = nil
	speaker.Unlock()
	speaker.Clear()

	st.finish()
	return st.source.Close()
}

// finish runs on the audio thread when the sequence reaches its end
func (st *speakerStream) finish() {
	st.doneOnce.Do(func() { close(st.done) })
}

// countingStreamer tracks how many source samples have been played
type countingStreamer struct {
	beep.Streamer
	n *atomic.Int64
}

func (c *countingStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := c.Streamer.Stream(samples)
	c.n.Add(int64(n))
	return n, ok
}

// applyVolume maps a 0..100 percentage onto beep's exponential gain
func applyVolume(v *effects.Volume, percent int) {
	gain, silent := volumeLevel(percent)
	v.Volume = gain
	v.Silent = silent
}

func volumeLevel(percent int) (float64, bool) {
	percent = domain.ClampVolume(percent)
	if percent == 0 {
		return 0, true
	}
	return math.Log2(float64(percent) / 100), false
}

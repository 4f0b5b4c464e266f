package output

import (
	"math"
	"testing"

	"github.com/faiface/beep"
	"go.uber.org/atomic"
)

func TestVolumeLevel(t *testing.T) {
	testCases := []struct {
		percent int
		gain    float64
		silent  bool
	}{
		{100, 0, false},
		{50, -1, false},
		{25, -2, false},
		{0, 0, true},
		{-5, 0, true},
		{150, 0, false},
	}
	for _, tc := range testCases {
		gain, silent := volumeLevel(tc.percent)
		if silent != tc.silent || math.Abs(gain-tc.gain) > 1e-9 {
			t.Errorf("%d%%: expected (%v, %v), got (%v, %v)", tc.percent, tc.gain, tc.silent, gain, silent)
		}
	}
}

func TestCountingStreamer(t *testing.T) {
	n := atomic.NewInt64(0)
	c := &countingStreamer{Streamer: beep.Silence(100), n: n}

	buf := make([][2]float64, 64)
	for {
		if _, ok := c.Stream(buf); !ok {
			break
		}
	}
	if n.Load() != 100 {
		t.Errorf("Expected 100 samples counted, got %d", n.Load())
	}
}

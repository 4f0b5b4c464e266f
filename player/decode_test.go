package player

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/yhkl-dev/lofi/domain"
)

// pcmWAV builds a mono 16-bit PCM file holding n samples
func pcmWAV(rate, n int) []byte {
	data := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := int16(math.Sin(float64(i)/8) * 8000)
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}

	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+len(data)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint32(rate))
	binary.Write(&b, binary.LittleEndian, uint32(rate*2))
	binary.Write(&b, binary.LittleEndian, uint16(2))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(data)))
	b.Write(data)
	return b.Bytes()
}

func TestSniff(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
		want Container
	}{
		{"id3", []byte("ID3\x04\x00"), ContainerMP3},
		{"mpeg frame sync", []byte{0xFF, 0xFB, 0x90, 0x00}, ContainerMP3},
		{"flac", []byte("fLaC\x00\x00"), ContainerFLAC},
		{"ogg", []byte("OggS\x00\x02"), ContainerVorbis},
		{"wav", pcmWAV(8000, 4), ContainerWAV},
		{"riff but not wave", []byte("RIFF\x00\x00\x00\x00AVI "), ContainerUnknown},
		{"html", []byte("<html>"), ContainerUnknown},
		{"empty", nil, ContainerUnknown},
	}

	for _, tc := range testCases {
		if got := Sniff(tc.data); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestContainerFromExt(t *testing.T) {
	testCases := map[string]Container{
		"https://a.test/x.MP3":       ContainerMP3,
		"https://a.test/x.ogg?sig=1": ContainerVorbis,
		"/m/x.flac":                  ContainerFLAC,
		"/m/x.wav":                   ContainerWAV,
		"/m/x.txt":                   ContainerUnknown,
	}
	for locator, want := range testCases {
		if got := containerFromExt(locator); got != want {
			t.Errorf("%s: expected %q, got %q", locator, want, got)
		}
	}
}

func TestDecodeWAV(t *testing.T) {
	track := domain.LoadedTrack{
		Ref:  domain.TrackRef{Locator: "/m/tone.wav", DisplayName: "tone"},
		Data: pcmWAV(8000, 8000),
	}

	d, err := NewDecoder().Decode(track)
	if err != nil {
		t.Fatalf("Expected wav to decode, got %v", err)
	}
	defer d.Close()

	if d.Container != ContainerWAV {
		t.Errorf("Expected wav container, got %q", d.Container)
	}
	if d.Format.SampleRate != 8000 || d.Format.NumChannels != 1 {
		t.Errorf("Unexpected format %+v", d.Format)
	}
	if d.Duration != time.Second {
		t.Errorf("Expected 1s duration, got %v", d.Duration)
	}
	if d.Ref != track.Ref {
		t.Errorf("Expected ref to be carried, got %+v", d.Ref)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for name, track := range map[string]domain.LoadedTrack{
		"unknown format": {Ref: domain.TrackRef{Locator: "/m/x.bin"}, Data: []byte("hello world")},
		"corrupt wav":    {Ref: domain.TrackRef{Locator: "/m/x.wav"}, Data: []byte("RIFF\x00\x00\x00\x00WAVEjunk")},
	} {
		_, err := NewDecoder().Decode(track)
		var de *domain.DecodeError
		if !errors.As(err, &de) {
			t.Errorf("%s: expected DecodeError, got %v", name, err)
			continue
		}
		if de.Locator != track.Ref.Locator {
			t.Errorf("%s: expected locator %s, got %s", name, track.Ref.Locator, de.Locator)
		}
		if !domain.IsRecoverable(err) {
			t.Errorf("%s: decode errors should be recoverable", name)
		}
	}
}

// silentMP3 builds n MPEG-1 Layer III frames at 128 kbit/s, 44.1 kHz with
// zeroed side info, which decodes to silence
func silentMP3(n int) []byte {
	const frameSize = 144 * 128000 / 44100
	frame := make([]byte, frameSize)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x00})
	return bytes.Repeat(frame, n)
}

func TestDecodeMP3ReportsDuration(t *testing.T) {
	track := domain.LoadedTrack{
		Ref:  domain.TrackRef{Locator: "https://a.test/9476"},
		Data: silentMP3(40),
	}

	d, err := NewDecoder().Decode(track)
	if err != nil {
		t.Fatalf("Expected mp3 to decode, got %v", err)
	}
	defer d.Close()

	if d.Container != ContainerMP3 {
		t.Errorf("Expected mp3 container, got %q", d.Container)
	}
	if d.Format.SampleRate != 44100 {
		t.Errorf("Expected 44100 Hz, got %d", d.Format.SampleRate)
	}
	if d.Duration <= 0 {
		t.Errorf("Expected a known duration, got %v", d.Duration)
	}
}

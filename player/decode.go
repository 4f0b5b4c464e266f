package player

import (
	"bytes"
	"path"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
	"github.com/yhkl-dev/lofi/domain"
)

// Container is an audio file format the decoder understands
type Container string

const (
	ContainerUnknown Container = ""
	ContainerMP3     Container = "mp3"
	ContainerWAV     Container = "wav"
	ContainerFLAC    Container = "flac"
	ContainerVorbis  Container = "ogg"
)

// Decoded is a track ready to hand to an Output
type Decoded struct {
	Ref       domain.TrackRef
	Streamer  beep.StreamSeekCloser
	Format    beep.Format
	Container Container
	Title     string
	Artist    string
	Duration  time.Duration
}

// Close releases the decoder without playing it
func (d *Decoded) Close() error {
	if d.Streamer == nil {
		return nil
	}
	return d.Streamer.Close()
}

// BeepDecoder decodes in-memory tracks with beep
type BeepDecoder struct{}

// NewDecoder creates a decoder for mp3, wav, flac and ogg/vorbis
func NewDecoder() *BeepDecoder {
	return &BeepDecoder{}
}

// Decode sniffs the container, opens a streamer over the bytes and reads tags
func (BeepDecoder) Decode(track domain.LoadedTrack) (*Decoded, error) {
	container := Sniff(track.Data)
	if container == ContainerUnknown {
		container = containerFromExt(track.Ref.Locator)
	}
	if container == ContainerUnknown {
		return nil, &domain.DecodeError{Locator: track.Ref.Locator, Err: errors.New("unrecognized audio format")}
	}

	streamer, format, err := open(container, track.Data)
	if err != nil {
		return nil, &domain.DecodeError{Locator: track.Ref.Locator, Err: errors.Wrapf(err, "failed to decode %s", container)}
	}
	if format.SampleRate <= 0 || format.NumChannels <= 0 {
		streamer.Close()
		return nil, &domain.DecodeError{Locator: track.Ref.Locator, Err: errors.New("invalid stream format")}
	}

	d := &Decoded{
		Ref:       track.Ref,
		Streamer:  streamer,
		Format:    format,
		Container: container,
	}
	if n := streamer.Len(); n > 0 {
		d.Duration = format.SampleRate.D(n)
	}
	if md, err := tag.ReadFrom(bytes.NewReader(track.Data)); err == nil {
		d.Title = strings.TrimSpace(md.Title())
		d.Artist = strings.TrimSpace(md.Artist())
	}
	return d, nil
}

// Sniff identifies a container by its magic bytes
func Sniff(data []byte) Container {
	switch {
	case bytes.HasPrefix(data, []byte("ID3")):
		return ContainerMP3
	case bytes.HasPrefix(data, []byte("fLaC")):
		return ContainerFLAC
	case bytes.HasPrefix(data, []byte("OggS")):
		return ContainerVorbis
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && string(data[8:12]) == "WAVE":
		return ContainerWAV
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return ContainerMP3
	}
	return ContainerUnknown
}

func containerFromExt(locator string) Container {
	p := locator
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".mp3":
		return ContainerMP3
	case ".wav", ".wave":
		return ContainerWAV
	case ".flac":
		return ContainerFLAC
	case ".ogg", ".oga":
		return ContainerVorbis
	}
	return ContainerUnknown
}

// memFile lets decoders seek the in-memory track, which mp3 and vorbis need
// to report a length
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func open(container Container, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	rc := memFile{bytes.NewReader(data)}
	switch container {
	case ContainerMP3:
		return mp3.Decode(rc)
	case ContainerWAV:
		return wav.Decode(bytes.NewReader(data))
	case ContainerFLAC:
		return flac.Decode(bytes.NewReader(data))
	case ContainerVorbis:
		return vorbis.Decode(rc)
	}
	return nil, beep.Format{}, errors.Errorf("unsupported container %q", container)
}

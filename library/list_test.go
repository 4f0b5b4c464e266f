package library

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/yhkl-dev/lofi/domain"
)

func TestParseHeaderBase(t *testing.T) {
	list, err := Parse("test", strings.NewReader("https://example.com/\na.mp3\nb.mp3!My Song\n"))
	if err != nil {
		t.Fatalf("Expected list to parse, got %v", err)
	}

	if !list.Header.HasHeader || !list.Header.IsURL || list.Header.IsLocalFile {
		t.Errorf("Unexpected header: %+v", list.Header)
	}

	want := []domain.TrackRef{
		{Locator: "https://example.com/a.mp3", DisplayName: "a"},
		{Locator: "https://example.com/b.mp3", DisplayName: "My Song"},
	}
	if len(list.Tracks) != len(want) {
		t.Fatalf("Expected %d tracks, got %d", len(want), len(list.Tracks))
	}
	for i, ref := range want {
		if list.Tracks[i] != ref {
			t.Errorf("Track %d: expected %+v, got %+v", i, ref, list.Tracks[i])
		}
	}
}

func TestParseNoHeader(t *testing.T) {
	list, err := Parse("test", strings.NewReader("noheader\nhttps://x.test/t.mp3\n"))
	if err != nil {
		t.Fatalf("Expected list to parse, got %v", err)
	}
	if list.Header.HasHeader {
		t.Errorf("Expected no header, got %+v", list.Header)
	}
	if got := list.Tracks[0].Locator; got != "https://x.test/t.mp3" {
		t.Errorf("Expected verbatim locator, got %q", got)
	}
	if got := list.Tracks[0].DisplayName; got != "t" {
		t.Errorf("Expected display name t, got %q", got)
	}
}

func TestParseResolution(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		locator string
		display string
	}{
		{"scheme bypasses base", "https://a.test/\nfile:///music/x.flac", "file:///music/x.flac", "x"},
		{"no separator inserted", "https://a.test/dir\ntrack.mp3", "https://a.test/dirtrack.mp3", "dirtrack"},
		{"local base", "/music/\nsong.ogg", "/music/song.ogg", "song"},
		{"escaped bang", "https://a.test/\nwow\\!.mp3!Wow", "https://a.test/wow!.mp3", "Wow"},
		{"percent decoded name", "https://a.test/\nmy%20song.mp3", "https://a.test/my%20song.mp3", "my song"},
		{"query stripped from name", "noheader\nhttps://a.test/x.mp3?sig=1", "https://a.test/x.mp3?sig=1", "x"},
		{"art url after the name is ignored", "noheader\n/a.mp3!Hey!https://art.test/a.jpg", "/a.mp3", "Hey"},
		{"escaped bang in the name", "noheader\n/a.mp3!Hey\\!Ho!art", "/a.mp3", "Hey!Ho"},
		{"whitespace trimmed", "  https://a.test/  \n  a.mp3  ", "https://a.test/a.mp3", "a"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			list, err := Parse("test", strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			ref := list.Tracks[0]
			if ref.Locator != tc.locator {
				t.Errorf("Expected locator %q, got %q", tc.locator, ref.Locator)
			}
			if ref.DisplayName != tc.display {
				t.Errorf("Expected display %q, got %q", tc.display, ref.DisplayName)
			}
		})
	}
}

func TestParseBoundaries(t *testing.T) {
	if _, err := Parse("one", strings.NewReader("https://a.test/\nonly.mp3")); err != nil {
		t.Errorf("Expected a single entry list to parse, got %v", err)
	}

	for name, input := range map[string]string{
		"empty":          "",
		"header only":    "https://a.test/\n",
		"blank entries":  "https://a.test/\n\n   \n",
		"noheader alone": "noheader",
	} {
		_, err := Parse(name, strings.NewReader(input))
		var pe *domain.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%s: expected ParseError, got %v", name, err)
		}
	}
}

func TestFormatEntryRoundTrip(t *testing.T) {
	refs := []domain.TrackRef{
		{Locator: "https://a.test/a.mp3", DisplayName: "a"},
		{Locator: "https://a.test/b!.mp3", DisplayName: "Custom"},
		{Locator: "https://a.test/d.mp3", DisplayName: "Wow!"},
		{Locator: "file:///m/c.flac", DisplayName: "c"},
	}

	var b strings.Builder
	b.WriteString(NoHeader + "\n")
	for _, ref := range refs {
		b.WriteString(FormatEntry(ref) + "\n")
	}

	list, err := Parse("roundtrip", strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for i, ref := range refs {
		if list.Tracks[i] != ref {
			t.Errorf("Entry %d: expected %+v, got %+v", i, ref, list.Tracks[i])
		}
	}
}

func TestShuffleCycles(t *testing.T) {
	var tracks []domain.TrackRef
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		tracks = append(tracks, domain.TrackRef{Locator: name})
	}
	s := NewShuffle(tracks, rand.New(rand.NewPCG(1, 2)))

	var orders [][]string
	for cycle := 0; cycle < 4; cycle++ {
		seen := make(map[string]bool)
		var order []string
		for i := 0; i < len(tracks); i++ {
			ref := s.Next()
			if seen[ref.Locator] {
				t.Fatalf("Cycle %d repeated %s", cycle, ref.Locator)
			}
			seen[ref.Locator] = true
			order = append(order, ref.Locator)
		}
		if len(seen) != len(tracks) {
			t.Errorf("Cycle %d covered %d tracks, expected %d", cycle, len(seen), len(tracks))
		}
		orders = append(orders, order)
	}

	if s.cycles() != 4 {
		t.Errorf("Expected 4 cycles, got %d", s.cycles())
	}

	identical := true
	for _, order := range orders[1:] {
		if strings.Join(order, "") != strings.Join(orders[0], "") {
			identical = false
		}
	}
	if identical {
		t.Errorf("Expected reshuffles to change the order")
	}
}

func TestShuffleSingleTrack(t *testing.T) {
	s := NewShuffle([]domain.TrackRef{{Locator: "only"}}, nil)
	for i := 0; i < 3; i++ {
		if got := s.Next().Locator; got != "only" {
			t.Errorf("Expected only, got %s", got)
		}
	}
	if s.Len() != 1 {
		t.Errorf("Expected Len 1, got %d", s.Len())
	}
}

type staticGetter struct {
	data []byte
	err  error
}

func (g staticGetter) Fetch(ctx context.Context, ref domain.TrackRef, timeout time.Duration) ([]byte, error) {
	return g.data, g.err
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/data/chillhop.txt", []byte("https://c.test/\n1.mp3\n2.mp3"), 0644)
	afero.WriteFile(fs, "/lists/mine.txt", []byte("noheader\n/m/a.mp3"), 0644)

	opts := LoadOptions{Fs: fs, DataDir: "/data"}

	list, err := Load(context.Background(), "chillhop", opts)
	if err != nil {
		t.Fatalf("Expected bare name to resolve, got %v", err)
	}
	if list.Name != "chillhop" || len(list.Tracks) != 2 {
		t.Errorf("Unexpected list %s with %d tracks", list.Name, len(list.Tracks))
	}

	list, err = Load(context.Background(), "/lists/mine.txt", opts)
	if err != nil {
		t.Fatalf("Expected path to load, got %v", err)
	}
	if list.Tracks[0].Locator != "/m/a.mp3" {
		t.Errorf("Unexpected locator %s", list.Tracks[0].Locator)
	}

	_, err = Load(context.Background(), "missing", opts)
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("Expected ParseError for missing list, got %v", err)
	}

	opts.Getter = staticGetter{data: []byte("https://r.test/\nx.mp3")}
	list, err = Load(context.Background(), "https://r.test/list.txt", opts)
	if err != nil {
		t.Fatalf("Expected remote list to load, got %v", err)
	}
	if list.Tracks[0].Locator != "https://r.test/x.mp3" {
		t.Errorf("Unexpected locator %s", list.Tracks[0].Locator)
	}

	opts.Getter = staticGetter{err: &domain.FetchError{Kind: domain.FetchTimeout}}
	if _, err := Load(context.Background(), "https://r.test/list.txt", opts); !errors.As(err, &pe) {
		t.Errorf("Expected ParseError for failed download, got %v", err)
	}
}

func musicFs() afero.Fs {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/music/a.mp3", []byte("ID3"), 0644)
	afero.WriteFile(fs, "/music/cover.jpg", []byte("jpg"), 0644)
	afero.WriteFile(fs, "/music/sub/my song.flac", []byte("fLaC"), 0644)
	afero.WriteFile(fs, "/music/sub/deeper/c.ogg", []byte("OggS"), 0644)
	return fs
}

func TestParseExpandsDirectories(t *testing.T) {
	list, err := ParseFS(musicFs(), "dirs", strings.NewReader("noheader\ndir:///music\nhttps://a.test/x.mp3"))
	if err != nil {
		t.Fatalf("Expected list to parse, got %v", err)
	}

	want := []domain.TrackRef{
		{Locator: "file:///music/a.mp3", DisplayName: "a"},
		{Locator: "file:///music/sub/deeper/c.ogg", DisplayName: "c"},
		{Locator: "file:///music/sub/my%20song.flac", DisplayName: "my song"},
		{Locator: "https://a.test/x.mp3", DisplayName: "x"},
	}
	if len(list.Tracks) != len(want) {
		t.Fatalf("Expected %d tracks, got %+v", len(want), list.Tracks)
	}
	for i, ref := range want {
		if list.Tracks[i] != ref {
			t.Errorf("Track %d: expected %+v, got %+v", i, ref, list.Tracks[i])
		}
	}
	if len(list.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", list.Warnings)
	}
}

func TestParseMissingDirectory(t *testing.T) {
	list, err := ParseFS(musicFs(), "dirs", strings.NewReader("noheader\ndir:///nowhere\n/music/a.mp3"))
	if err != nil {
		t.Fatalf("Expected remaining entries to parse, got %v", err)
	}
	if len(list.Tracks) != 1 || len(list.Warnings) != 1 {
		t.Errorf("Expected one track and one warning, got %+v / %v", list.Tracks, list.Warnings)
	}

	_, err = ParseFS(musicFs(), "dirs", strings.NewReader("noheader\ndir:///nowhere"))
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("Expected ParseError when nothing is left, got %v", err)
	}
}

func TestParseExclusions(t *testing.T) {
	input := "https://a.test/\n-remix\ngood.mp3\nsong (remix).mp3\ndir:///music\n- sub/\n"
	list, err := ParseFS(musicFs(), "excl", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Expected list to parse, got %v", err)
	}

	var got []string
	for _, ref := range list.Tracks {
		got = append(got, ref.Locator)
	}
	want := []string{"https://a.test/good.mp3", "file:///music/a.mp3"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("Expected %v, got %v", want, got)
	}

	_, err = ParseFS(musicFs(), "excl", strings.NewReader("noheader\n/m/a.mp3\n-a.mp3"))
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("Expected ParseError when every track is excluded, got %v", err)
	}
}

func TestLoadFallsBackToBuiltinList(t *testing.T) {
	opts := LoadOptions{Fs: afero.NewMemMapFs(), DataDir: "/empty"}

	list, err := Load(context.Background(), "chillhop", opts)
	if err != nil {
		t.Fatalf("Expected the built-in list, got %v", err)
	}
	if list.IsLocalFile() {
		t.Errorf("A built-in list must not be watched")
	}
	first := list.Tracks[0]
	if first.Locator != "https://stream.chillhop.com/mp3/9476" || first.DisplayName != "Apple Juice" {
		t.Errorf("Unexpected first track %+v", first)
	}

	if _, err := Load(context.Background(), "lists/chillhop", opts); err == nil {
		t.Errorf("Expected paths to skip the built-in lists")
	}
}

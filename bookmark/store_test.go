package bookmark

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/yhkl-dev/lofi/domain"
	"github.com/yhkl-dev/lofi/library"
)

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(afero.NewMemMapFs(), "/data/bookmarks.txt")
	if err != nil {
		t.Fatalf("Expected empty store, got %v", err)
	}
	if len(s.List()) != 0 {
		t.Errorf("Expected no bookmarks, got %v", s.List())
	}
}

func TestAddIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, _ := Open(fs, "/data/bookmarks.txt")
	ref := domain.TrackRef{Locator: "https://a.test/a.mp3", DisplayName: "a"}

	for i := 0; i < 3; i++ {
		if err := s.Add(ref); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if got := len(s.List()); got != 1 {
		t.Errorf("Expected 1 bookmark, got %d", got)
	}

	data, _ := afero.ReadFile(fs, "/data/bookmarks.txt")
	if string(data) != "noheader\nhttps://a.test/a.mp3\n" {
		t.Errorf("Unexpected file contents %q", data)
	}
}

func TestToggleAndRemove(t *testing.T) {
	s, _ := Open(afero.NewMemMapFs(), "/bookmarks.txt")
	ref := domain.TrackRef{Locator: "/m/x.flac", DisplayName: "Custom Name"}

	on, err := s.Toggle(ref)
	if err != nil || !on {
		t.Fatalf("Expected toggle on, got %v %v", on, err)
	}
	if !s.Contains(ref.Locator) {
		t.Errorf("Expected bookmark to be stored")
	}

	on, err = s.Toggle(ref)
	if err != nil || on {
		t.Fatalf("Expected toggle off, got %v %v", on, err)
	}
	if s.Contains(ref.Locator) {
		t.Errorf("Expected bookmark to be removed")
	}

	if err := s.Remove("/never/added.mp3"); err != nil {
		t.Errorf("Removing an unknown locator should be a no-op, got %v", err)
	}
}

func TestRoundTripThroughParser(t *testing.T) {
	fs := afero.NewMemMapFs()
	refs := []domain.TrackRef{
		{Locator: "https://a.test/one.mp3", DisplayName: "one"},
		{Locator: "https://a.test/wow!.mp3", DisplayName: "Wow"},
		{Locator: "file:///m/three.ogg", DisplayName: "Three Renamed"},
	}

	s, _ := Open(fs, "/data/bookmarks.txt")
	for _, ref := range refs {
		if err := s.Add(ref); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if err := s.Remove(refs[0].Locator); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	data, _ := afero.ReadFile(fs, "/data/bookmarks.txt")
	list, err := library.Parse("bookmarks", strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("Bookmark file should parse as a track list: %v", err)
	}
	if list.Header.HasHeader {
		t.Errorf("Expected a headerless list")
	}
	if len(list.Tracks) != 2 || list.Tracks[0] != refs[1] || list.Tracks[1] != refs[2] {
		t.Errorf("Unexpected tracks %+v", list.Tracks)
	}

	reopened, err := Open(fs, "/data/bookmarks.txt")
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if got := reopened.List(); len(got) != 2 || got[0] != refs[1] {
		t.Errorf("Unexpected bookmarks after reopen: %+v", got)
	}
}

func TestOpenEmptiedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, _ := Open(fs, "/b.txt")
	ref := domain.TrackRef{Locator: "/a.mp3", DisplayName: "a"}
	s.Add(ref)
	s.Remove(ref.Locator)

	reopened, err := Open(fs, "/b.txt")
	if err != nil {
		t.Fatalf("Expected a header-only file to open, got %v", err)
	}
	if len(reopened.List()) != 0 {
		t.Errorf("Expected no bookmarks, got %v", reopened.List())
	}
}

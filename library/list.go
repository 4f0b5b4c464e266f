package library

import (
	"bufio"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/yhkl-dev/lofi/domain"
	"github.com/yhkl-dev/lofi/fetch"
)

// NoHeader is the literal first line of a list whose entries are used verbatim
const NoHeader = "noheader"

// DirPrefix marks an entry that expands to every audio file below a local directory
const DirPrefix = "dir://"

var audioExts = map[string]bool{".mp3": true, ".wav": true, ".wave": true, ".flac": true, ".ogg": true, ".oga": true}

var schemes = []string{"http://", "https://", "file://"}

// List is a parsed track list
type List struct {
	Name   string
	Source string
	Header domain.TrackListHeader
	Tracks []domain.TrackRef
	// Warnings name entries that were skipped, such as missing directories
	Warnings []string

	builtin bool
}

// IsLocalFile reports whether the list was read from a file that can be watched
func (l *List) IsLocalFile() bool {
	return !l.builtin && !strings.HasPrefix(l.Source, "http://") && !strings.HasPrefix(l.Source, "https://")
}

// Shuffle returns an infinite shuffled iterator over the list
func (l *List) Shuffle() *Shuffle {
	return NewShuffle(l.Tracks, nil)
}

// Parse reads a track list, expanding dir:// entries on the OS filesystem.
// See ParseFS.
func Parse(source string, r io.Reader) (*List, error) {
	return ParseFS(afero.NewOsFs(), source, r)
}

// ParseFS reads a track list. Line 1 is the header unless it is exactly
// "noheader". Every following non-empty line is one of:
//
//	<locator>[!<display name>[!<art url>]]
//	dir://<path>    every audio file below path, recursively
//	-<pattern>      drop tracks whose locator contains pattern
func ParseFS(fs afero.Fs, source string, r io.Reader) (*List, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, &domain.ParseError{Source: source, Reason: "unreadable", Err: err}
	}
	if len(lines) == 0 {
		return nil, &domain.ParseError{Source: source, Reason: "empty list"}
	}

	header := ParseHeader(lines[0])
	list := &List{
		Name:   listName(source),
		Source: source,
		Header: header,
	}

	var excluded []string
	tracks := make([]domain.TrackRef, 0, len(lines)-1)
	for _, line := range lines[1:] {
		switch {
		case line == "":
		case strings.HasPrefix(line, "-"):
			if pattern := strings.TrimSpace(line[1:]); pattern != "" {
				excluded = append(excluded, pattern)
			}
		case strings.HasPrefix(line, DirPrefix):
			found, err := ExpandDir(fs, strings.TrimPrefix(line, DirPrefix))
			if err != nil {
				list.Warnings = append(list.Warnings, err.Error())
			}
			tracks = append(tracks, found...)
		default:
			tracks = append(tracks, ParseEntry(header, line))
		}
	}

	list.Tracks = tracks[:0]
	for _, ref := range tracks {
		if !isExcluded(ref.Locator, excluded) {
			list.Tracks = append(list.Tracks, ref)
		}
	}
	if len(list.Tracks) == 0 {
		return nil, &domain.ParseError{Source: source, Reason: "no tracks after the header line"}
	}
	return list, nil
}

// ExpandDir lists every audio file below dir as a file:// track, in walk order
func ExpandDir(fs afero.Fs, dir string) ([]domain.TrackRef, error) {
	root, err := fetch.LocalPath(strings.TrimSpace(dir))
	if err != nil {
		return nil, err
	}
	info, err := fs.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "directory %s not found", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", root)
	}

	var tracks []domain.TrackRef
	err = afero.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !audioExts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		locator := "file://" + (&url.URL{Path: filepath.ToSlash(p)}).EscapedPath()
		tracks = append(tracks, domain.TrackRef{Locator: locator, DisplayName: DisplayName(locator)})
		return nil
	})
	if err != nil {
		return tracks, errors.Wrapf(err, "failed to walk %s", root)
	}
	return tracks, nil
}

func isExcluded(locator string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(locator, pattern) {
			return true
		}
	}
	return false
}

// ParseHeader interprets the first line of a list
func ParseHeader(line string) domain.TrackListHeader {
	line = strings.TrimSpace(line)
	if line == NoHeader {
		return domain.TrackListHeader{}
	}
	isURL := strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://")
	return domain.TrackListHeader{
		Base:        line,
		IsURL:       isURL,
		IsLocalFile: !isURL && line != "",
		HasHeader:   true,
	}
}

// ParseEntry turns one list line into a TrackRef using the header base
func ParseEntry(header domain.TrackListHeader, line string) domain.TrackRef {
	suffix, display := splitEntry(line)
	locator := Resolve(header, suffix)
	if display == "" {
		display = DisplayName(locator)
	}
	return domain.TrackRef{Locator: locator, DisplayName: display}
}

// Resolve applies the header base to a locator suffix. Suffixes with a scheme are
// absolute; otherwise the base is prepended with no separator.
func Resolve(header domain.TrackListHeader, suffix string) string {
	if hasScheme(suffix) || !header.HasHeader {
		return suffix
	}
	return header.Base + suffix
}

// DisplayName derives a name from the final path segment of a locator
func DisplayName(locator string) string {
	p := locator
	if i := strings.IndexAny(p, "?#"); i >= 0 && hasScheme(p) {
		p = p[:i]
	}
	seg := path.Base(strings.TrimRight(p, "/"))
	seg = strings.TrimSuffix(seg, path.Ext(seg))
	if decoded, err := url.PathUnescape(seg); err == nil {
		seg = decoded
	}
	if seg == "" || seg == "." || seg == "/" {
		return locator
	}
	return seg
}

// EscapeLocator escapes "!" so the locator survives a round trip through Parse
func EscapeLocator(locator string) string {
	return strings.ReplaceAll(locator, "!", `\!`)
}

// FormatEntry renders a TrackRef as a list line
func FormatEntry(ref domain.TrackRef) string {
	entry := EscapeLocator(ref.Locator)
	if ref.DisplayName != "" && ref.DisplayName != DisplayName(ref.Locator) {
		entry += "!" + EscapeLocator(ref.DisplayName)
	}
	return entry
}

// splitEntry returns the locator and display name fields of an entry. Fields
// are separated by unescaped "!"; anything after the display name (cover art)
// is ignored.
func splitEntry(line string) (string, string) {
	locator, rest := nextField(line)
	display, _ := nextField(rest)
	return locator, strings.TrimSpace(display)
}

// nextField reads up to the first unescaped "!", unescaping `\!` on the way
func nextField(s string) (field, rest string) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && s[i+1] == '!' {
			b.WriteByte('!')
			i++
			continue
		}
		if c == '!' {
			return b.String(), s[i+1:]
		}
		b.WriteByte(c)
	}
	return b.String(), ""
}

func hasScheme(s string) bool {
	for _, scheme := range schemes {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}

func listName(source string) string {
	name := path.Base(strings.TrimSuffix(source, "/"))
	return strings.TrimSuffix(name, path.Ext(name))
}

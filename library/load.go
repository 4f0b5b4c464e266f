package library

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/yhkl-dev/lofi/domain"
)

// Getter downloads a remote track list
type Getter interface {
	Fetch(ctx context.Context, ref domain.TrackRef, timeout time.Duration) ([]byte, error)
}

// LoadOptions control where Load looks for a list
type LoadOptions struct {
	Fs      afero.Fs
	DataDir string
	Getter  Getter
	Timeout time.Duration
}

// Load resolves source to a track list. A source is an http(s) URL, a path to a
// list file, or a bare name looked up as <data dir>/<name>.txt and then among
// the lists built into the binary.
func Load(ctx context.Context, source string, opts LoadOptions) (*List, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if source == "" {
		return nil, &domain.ParseError{Source: source, Reason: "no track list given"}
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if opts.Getter == nil {
			return nil, &domain.ParseError{Source: source, Reason: "remote lists are not supported here"}
		}
		data, err := opts.Getter.Fetch(ctx, domain.TrackRef{Locator: source}, opts.Timeout)
		if err != nil {
			return nil, &domain.ParseError{Source: source, Reason: "download failed", Err: err}
		}
		return ParseFS(opts.Fs, source, bytes.NewReader(data))
	}

	path, err := ResolvePath(opts.Fs, source, opts.DataDir)
	if err != nil {
		if !strings.ContainsAny(source, `/\`) {
			if list, ok, berr := loadBuiltin(opts.Fs, source); ok {
				return list, berr
			}
		}
		return nil, &domain.ParseError{Source: source, Reason: "not found", Err: err}
	}
	return LoadFile(opts.Fs, path)
}

// LoadFile parses a list stored on fs
func LoadFile(fs afero.Fs, path string) (*List, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, &domain.ParseError{Source: path, Reason: "unreadable", Err: err}
	}
	defer f.Close()
	return ParseFS(fs, path, f)
}

// ResolvePath finds the file a local source refers to
func ResolvePath(fs afero.Fs, source, dataDir string) (string, error) {
	candidates := []string{strings.TrimPrefix(source, "file://")}
	if dataDir != "" && !strings.ContainsAny(source, `/\`) {
		name := source
		if filepath.Ext(name) == "" {
			name += ".txt"
		}
		candidates = append(candidates, filepath.Join(dataDir, name))
	}

	for _, candidate := range candidates {
		info, err := fs.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", errors.Errorf("no list file for %q (tried %s)", source, strings.Join(candidates, ", "))
}

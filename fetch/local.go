package fetch

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/yhkl-dev/lofi/domain"
)

// LocalPath turns a file:// locator or plain path into a filesystem path
func LocalPath(locator string) (string, error) {
	p := locator
	if strings.HasPrefix(p, "file://") {
		decoded, err := url.PathUnescape(strings.TrimPrefix(p, "file://"))
		if err != nil {
			return "", errors.Wrapf(err, "invalid file locator %q", locator)
		}
		p = decoded
	}

	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to expand ~")
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Clean(p), nil
}

func (c *Client) readLocal(locator string) ([]byte, error) {
	p, err := LocalPath(locator)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchIO, Locator: locator, Err: err}
	}

	data, err := afero.ReadFile(c.Fs, p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.FetchError{Kind: domain.FetchNotFound, Locator: locator, Err: err}
		}
		return nil, &domain.FetchError{Kind: domain.FetchIO, Locator: locator, Err: err}
	}
	return data, nil
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/yhkl-dev/lofi/domain"
)

// VolumeFile stores the last volume inside the config directory
const VolumeFile = "volume.txt"

// LoadVolume reads the persisted volume, written as "NN" or "NN%".
// A missing file is created with the default of 100.
func LoadVolume(fs afero.Fs, dir string) (int, error) {
	path := filepath.Join(dir, VolumeFile)
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.DefaultVolume, SaveVolume(fs, dir, domain.DefaultVolume)
	}
	if err != nil {
		return domain.DefaultVolume, errors.Wrapf(err, "failed to read %s", path)
	}

	text := strings.TrimSuffix(strings.TrimSpace(string(data)), "%")
	v, err := strconv.Atoi(text)
	if err != nil {
		return domain.DefaultVolume, errors.Wrapf(err, "invalid volume in %s", path)
	}
	return domain.ClampVolume(v), nil
}

// SaveVolume persists volume as an integer percentage
func SaveVolume(fs afero.Fs, dir string, volume int) error {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	path := filepath.Join(dir, VolumeFile)
	if err := afero.WriteFile(fs, path, []byte(strconv.Itoa(domain.ClampVolume(volume))), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

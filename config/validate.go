package config

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Validate checks that every value is usable
func (c *Config) Validate() error {
	if c.Player.TrackList == "" {
		return errors.New("player.track_list must not be empty")
	}
	if c.Player.BufferSize < 1 {
		return errors.Errorf("player.buffer_size must be at least 1, got %d", c.Player.BufferSize)
	}
	if c.Player.Timeout < 1 {
		return errors.Errorf("player.timeout must be at least 1 second, got %d", c.Player.Timeout)
	}
	if c.Player.ExhaustedRetry < 0 {
		return errors.Errorf("player.exhausted_retry must not be negative, got %d", c.Player.ExhaustedRetry)
	}
	if c.Player.VolumeStep < 1 || c.Player.VolumeStep > 100 {
		return errors.Errorf("player.volume_step must be between 1 and 100, got %d", c.Player.VolumeStep)
	}
	if c.UI.FPS < 1 || c.UI.FPS > 120 {
		return errors.Errorf("ui.fps must be between 1 and 120, got %d", c.UI.FPS)
	}
	if c.UI.Width < 16 {
		return errors.Errorf("ui.width must be at least 16, got %d", c.UI.Width)
	}
	if _, err := logrus.ParseLevel(c.LogLevel()); err != nil {
		return errors.Wrap(err, "log.level")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

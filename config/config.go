package config

import (
	"path/filepath"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Player PlayerConfig `mapstructure:"player"`
	Data   DataConfig   `mapstructure:"data"`
	UI     UIConfig     `mapstructure:"ui"`
	Log    LogConfig    `mapstructure:"log"`

	// ConfigDir holds config.toml and volume.txt
	ConfigDir string `mapstructure:"-"`
	// ConfigFile is the file that was read, empty when only defaults apply
	ConfigFile string `mapstructure:"-"`
}

// PlayerConfig contains playback and prefetch settings
type PlayerConfig struct {
	TrackList      string `mapstructure:"track_list"`
	BufferSize     int    `mapstructure:"buffer_size"`
	Timeout        int    `mapstructure:"timeout"`         // in seconds
	Paused         bool   `mapstructure:"paused"`          // start paused
	ExhaustedRetry int    `mapstructure:"exhausted_retry"` // in seconds, 0 waits for a reload
	VolumeStep     int    `mapstructure:"volume_step"`
}

// DataConfig locates track lists and bookmarks
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// UIConfig contains user interface settings
type UIConfig struct {
	FPS   int `mapstructure:"fps"`
	Width int `mapstructure:"width"`
}

// LogConfig controls where and how much is logged
type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"`
	Debug  bool   `mapstructure:"debug"`
}

// GetTimeout returns the fetch timeout as a time.Duration
func (p *PlayerConfig) GetTimeout() time.Duration {
	return time.Duration(p.Timeout) * time.Second
}

// GetExhaustedRetry returns the exhausted retry interval as a time.Duration
func (p *PlayerConfig) GetExhaustedRetry() time.Duration {
	return time.Duration(p.ExhaustedRetry) * time.Second
}

// FrameInterval returns the time between two UI redraws
func (u *UIConfig) FrameInterval() time.Duration {
	return time.Second / time.Duration(u.FPS)
}

// BookmarksPath returns the bookmark list inside the data directory
func (c *Config) BookmarksPath() string {
	return filepath.Join(c.Data.Dir, "bookmarks.txt")
}

// LogFile returns the log destination, defaulting to the data directory
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.Data.Dir, "lofi.log")
}

// LogLevel returns the effective level name; --debug wins over the file
func (c *Config) LogLevel() string {
	if c.Log.Debug {
		return "debug"
	}
	return c.Log.Level
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			TrackList:      "chillhop",
			BufferSize:     5,
			Timeout:        3,
			ExhaustedRetry: 5,
			VolumeStep:     10,
		},
		Data: DataConfig{
			Dir: DefaultDataDir(),
		},
		UI: UIConfig{
			FPS:   12,
			Width: 32,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		ConfigDir: DefaultConfigDir(),
	}
}

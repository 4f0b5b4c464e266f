package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppName names the config and data directories
const AppName = "lofi"

// DefaultConfigDir returns the platform config directory for lofi
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, AppName)
}

// DefaultDataDir returns $XDG_DATA_HOME/lofi, falling back to ~/.local/share/lofi
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// NewFlagSet declares the command line flags
func NewFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	flags.StringP("track-list", "t", "", "track list name, file or URL")
	flags.IntP("buffer-size", "s", 0, "number of tracks to keep downloaded ahead")
	flags.Int("timeout", 0, "seconds before a download is abandoned")
	flags.BoolP("paused", "p", false, "start paused")
	flags.BoolP("debug", "d", false, "log at debug level")
	flags.IntP("fps", "f", 0, "UI redraws per second")
	flags.StringP("config", "c", "", "path to config.toml")
	return flags
}

var flagKeys = map[string]string{
	"track-list":  "player.track_list",
	"buffer-size": "player.buffer_size",
	"timeout":     "player.timeout",
	"paused":      "player.paused",
	"debug":       "log.debug",
	"fps":         "ui.fps",
}

// Load resolves the configuration from flags, config.toml, LOFI_* environment
// variables and defaults, in that order of precedence. A nil fs reads the OS
// filesystem. The returned error is pflag.ErrHelp when --help was given.
func Load(args []string, fs afero.Fs) (*Config, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	flags := NewFlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(fs)

	defaults := DefaultConfig()
	v.SetDefault("player.track_list", defaults.Player.TrackList)
	v.SetDefault("player.buffer_size", defaults.Player.BufferSize)
	v.SetDefault("player.timeout", defaults.Player.Timeout)
	v.SetDefault("player.paused", defaults.Player.Paused)
	v.SetDefault("player.exhausted_retry", defaults.Player.ExhaustedRetry)
	v.SetDefault("player.volume_step", defaults.Player.VolumeStep)
	v.SetDefault("data.dir", defaults.Data.Dir)
	v.SetDefault("ui.fps", defaults.UI.FPS)
	v.SetDefault("ui.width", defaults.UI.Width)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.debug", defaults.Log.Debug)

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, errors.Wrapf(err, "failed to bind flag %s", name)
		}
	}

	v.SetEnvPrefix("LOFI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configDir := defaults.ConfigDir
	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "failed to read config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	cfg.ConfigDir = configDir
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.Data.Dir = expandHome(cfg.Data.Dir)
	cfg.Log.File = expandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/yhkl-dev/lofi/config"
)

// newLogger builds the application logger. The terminal belongs to the UI, so
// entries go to the log file; if it cannot be opened logging is discarded.
func newLogger(cfg *config.Config, fs afero.Fs) (*logrus.Logger, func()) {
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			DisableColors: true,
		})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel())
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	path := cfg.LogFile()
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "lofi: logging disabled: %v\n", err)
		logger.SetOutput(io.Discard)
		return logger, func() {}
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lofi: logging disabled: %v\n", err)
		logger.SetOutput(io.Discard)
		return logger, func() {}
	}
	logger.SetOutput(f)
	return logger, func() { f.Close() }
}

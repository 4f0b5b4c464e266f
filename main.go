package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/yhkl-dev/lofi/bookmark"
	"github.com/yhkl-dev/lofi/config"
	"github.com/yhkl-dev/lofi/controller"
	"github.com/yhkl-dev/lofi/domain"
	"github.com/yhkl-dev/lofi/fetch"
	"github.com/yhkl-dev/lofi/library"
	"github.com/yhkl-dev/lofi/player"
	"github.com/yhkl-dev/lofi/player/output"
	"github.com/yhkl-dev/lofi/prefetch"
	"github.com/yhkl-dev/lofi/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "lofi: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := afero.NewOsFs()

	cfg, err := config.Load(args, fs)
	if err != nil {
		return err
	}

	logger, closeLog := newLogger(cfg, fs)
	defer closeLog()
	logger.WithFields(logrus.Fields{
		"config":     cfg.ConfigFile,
		"track_list": cfg.Player.TrackList,
		"buffer":     cfg.Player.BufferSize,
	}).Info("Starting lofi")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fetcher := fetch.Init(fs, "")
	list, err := library.Load(ctx, cfg.Player.TrackList, library.LoadOptions{
		Fs:      fs,
		DataDir: cfg.Data.Dir,
		Getter:  fetcher,
		Timeout: cfg.Player.GetTimeout(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to load track list")
	}
	logger.WithFields(logrus.Fields{"list": list.Name, "tracks": len(list.Tracks)}).Info("Track list loaded")
	for _, w := range list.Warnings {
		logger.WithField("list", list.Name).Warn(w)
	}

	volume, err := config.LoadVolume(fs, cfg.ConfigDir)
	if err != nil {
		logger.WithError(err).Warn("Could not read saved volume")
	}

	// a nil interface disables bookmarking; never pass a nil *Store
	var marks controller.Bookmarks
	if store, err := bookmark.Open(fs, cfg.BookmarksPath()); err != nil {
		logger.WithError(err).Warn("Bookmarks unavailable")
	} else {
		marks = store
	}

	out, err := output.NewSpeaker(output.DefaultSampleRate, 0)
	if err != nil {
		return errors.Wrap(err, "failed to open audio device")
	}
	defer out.Close()

	state := domain.NewPlayerState(volume)
	buffer := prefetch.New(list.Shuffle(), fetcher, prefetch.Options{
		Depth:          cfg.Player.BufferSize,
		Timeout:        cfg.Player.GetTimeout(),
		ExhaustedRetry: cfg.Player.GetExhaustedRetry(),
		Logger:         logger,
	})
	ctrl := controller.New(buffer, player.NewDecoder(), out, marks, state, controller.Options{
		Paused: cfg.Player.Paused,
		Logger: logger,
	})
	app := ui.NewApp(ctx, cfg, list.Name, ctrl, ctrl, logger)

	var wg conc.WaitGroup
	wg.Go(func() { buffer.Run(ctx) })
	if list.IsLocalFile() {
		watchList(ctx, &wg, list.Source, fs, buffer, logger)
	}

	ctrlErr := make(chan error, 1)
	go func() {
		ctrlErr <- ctrl.Run(ctx)
		app.Stop()
	}()

	uiErr := app.Run()
	cancel()
	err = <-ctrlErr
	wg.Wait()

	if saveErr := config.SaveVolume(fs, cfg.ConfigDir, state.Volume()); saveErr != nil {
		logger.WithError(saveErr).Warn("Could not save volume")
	}
	logger.WithField("tracks_played", ctrl.TracksStarted()).Info("Stopped")

	if uiErr != nil {
		return errors.Wrap(uiErr, "terminal UI failed")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchList swaps the buffer onto a fresh shuffle whenever the list file changes
func watchList(ctx context.Context, wg *conc.WaitGroup, path string, fs afero.Fs, buffer *prefetch.Buffer, logger logrus.FieldLogger) {
	watcher, err := library.NewWatcher(path, fs, logger)
	if err != nil {
		logger.WithError(err).Warn("Track list changes will not be picked up")
		return
	}
	wg.Go(func() { watcher.Run(ctx) })
	wg.Go(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case l := <-watcher.Lists():
				logger.WithField("tracks", len(l.Tracks)).Debug("Prefetch switched to the new list")
				buffer.Reload(l.Shuffle())
			}
		}
	})
}

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/healthtwin/riskengine/pkg/logger"
)

// Watch monitors the YAML file at path and calls onChange with a freshly
// loaded Config after every save. It blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file, so saves that
// replace the file through a rename keep being picked up. A reload that
// fails to parse or validate is logged and skipped; the previous
// configuration stays active.
func Watch(ctx context.Context, path string, log logger.Logger, onChange func(*Config)) error {
	target := filepath.Clean(path)
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("%w: watch %s: %w", ErrWatchConfig, path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: create watcher: %w", ErrWatchConfig, err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("%w: watch %s: %w", ErrWatchConfig, path, err)
	}

	log = log.Named("config")
	log.Info(ctx, "watching for changes", logger.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			// a rename onto target arrives as Create
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(ctx)
			if err != nil {
				log.Error(ctx, "reload failed, keeping previous config",
					logger.String("path", target), logger.Error(err))
				continue
			}

			log.Info(ctx, "reloaded", logger.String("path", target))
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(ctx, "watcher error", logger.Error(err))
		}
	}
}

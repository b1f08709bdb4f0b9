package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// ErrNoSeedFile is returned by Watch on a store without a backing file.
var ErrNoSeedFile = errors.New("store has no seed file")

// Watch reloads the seed whenever it changes on disk, until ctx is done.
//
// The parent directory is watched rather than the file so that editors
// which save by rename are picked up. Watch blocks; run it in a goroutine.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return ErrNoSeedFile
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	defer watcher.Close()

	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	s.logger.Debug(ctx, "watching catalog seed", zap.String("path", target))

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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Reload(ctx); err != nil {
				s.logger.Warn(ctx, "catalog reload failed, keeping previous catalog",
					zap.String("path", target),
					zap.String("op", event.Op.String()),
					zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn(ctx, "catalog watcher error", zap.Error(err))
		}
	}
}

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
)

// reloadDelay coalesces the burst of events a single save produces.
const reloadDelay = 100 * time.Millisecond

// Watch rebuilds the profile's catalog whenever the file at path changes and
// passes the new registry to onChange. It runs until ctx is cancelled.
//
// A reload that fails validation is logged and onChange is not called, so the
// previous registry stays in use.
func Watch(ctx context.Context, profile metadata.Profile, path string, onChange func(*metadata.Registry)) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot watch catalog: %w", err)
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: atomic saves replace the inode.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	slog.Info("Watching catalog for changes", "path", path, "profile", profile)

	var timer *time.Timer
	var reload <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			reload = timer.C

		case <-reload:
			reload = nil
			reg, err := Load(profile, path)
			if err != nil {
				slog.Error("Catalog reload failed, keeping previous catalog", "path", path, "profile", profile, "err", err)
				continue
			}
			slog.Info("Catalog reloaded", "path", path, "profile", profile, "types", reg.Len())
			onChange(reg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Catalog watcher error", "err", err)
		}
	}
}

package bundler

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay lets the frontend build finish writing before we bundle
const DebounceDelay = 100 * time.Millisecond

// Watch bundles once, then again whenever the HTML shell or favicon changes,
// until ctx is cancelled. The parent directories are watched since build
// tools replace files rather than write them in place.
func (b *Bundler) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	targets := b.watchTargets()
	dirs := make(map[string]struct{}, len(targets))
	for target := range targets {
		dirs[filepath.Dir(target)] = struct{}{}
	}
	watching := 0
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			b.logger.WarnWithPath("Unable to watch", dir, "error", err)
			continue
		}
		watching++
		b.logger.InfoWithPath("Watching", dir)
	}
	if watching == 0 {
		return errors.New("no bundle inputs could be watched")
	}

	b.runLogged()

	timer := time.NewTimer(DebounceDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := targets[abs]; !ok {
				continue
			}
			b.logger.Debug("Change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(DebounceDelay)
		case <-timer.C:
			b.runLogged()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			b.logger.Warn("Error watching bundle inputs", "error", err)
		}
	}
}

// runLogged keeps the watch loop alive across size limit failures, Run has
// already logged them
func (b *Bundler) runLogged() {
	if _, err := b.Run(); err != nil {
		var sizeErr *BundleSizeError
		if !errors.As(err, &sizeErr) {
			b.logger.Error("Bundle failed", "error", err)
		}
	}
}

func (b *Bundler) watchTargets() map[string]struct{} {
	targets := make(map[string]struct{}, 2)
	for _, p := range []string{b.opts.IndexPath, b.opts.FaviconPath} {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			targets[abs] = struct{}{}
		}
	}
	return targets
}

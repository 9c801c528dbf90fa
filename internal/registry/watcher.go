package registry

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates cached components when their files change on disk, so
// long-lived processes pick up edits to the component library without a
// restart. It returns once the watcher is installed; invalidation runs in
// the background until ctx is cancelled or Close is called.
func (r *Registry) Watch(ctx context.Context) error {
	if r.dir == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return err
	}
	// Per-target subdirectories that already exist are watched up front;
	// new ones are picked up via the directory event below.
	entries, err := filepath.Glob(filepath.Join(r.dir, "*"))
	if err == nil {
		for _, entry := range entries {
			_ = watcher.Add(entry)
		}
	}
	r.watcher = watcher

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				r.handleEvent(ctx, event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.logger.Warn(ctx, err, "component watcher error")
			}
		}
	}()
	return nil
}

func (r *Registry) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// A new target directory appearing must be watched too.
	if event.Op&fsnotify.Create != 0 && filepath.Ext(event.Name) == "" {
		_ = r.watcher.Add(event.Name)
		return
	}

	name, target, ok := r.componentForPath(event.Name)
	if !ok {
		return
	}
	r.Invalidate(name, target)
	r.logger.Debug(ctx, "component invalidated after file change",
		"name", name, "target", target, "op", event.Op.String())
}

// componentForPath maps a library file path back to its (name, target) key.
func (r *Registry) componentForPath(path string) (name, target string, ok bool) {
	rel, err := filepath.Rel(r.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 || !strings.HasSuffix(parts[1], ".tmpl") {
		return "", "", false
	}
	return strings.TrimSuffix(parts[1], ".tmpl"), parts[0], true
}

// Close stops the background watcher, if one was started.
func (r *Registry) Close() error {
	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}

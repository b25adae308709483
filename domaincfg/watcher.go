package domaincfg

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// watcher hot-reloads domain configs when their files change on disk.
type watcher struct {
	fs     *fsnotify.Watcher
	done   chan struct{}
	cancel context.CancelFunc
}

// Watch starts watching the config directory and reloading domains whose
// files are written. It returns once the watcher is running; watching
// stops when ctx is cancelled or the loader is closed.
func (l *Loader) Watch(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoaderClosed
	}
	if l.watcher != nil {
		l.mu.Unlock()
		return ErrWatcherRunning
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		l.mu.Unlock()
		return err
	}
	if err := fs.Add(l.dir); err != nil {
		fs.Close()
		l.mu.Unlock()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &watcher{fs: fs, done: make(chan struct{}), cancel: cancel}
	l.watcher = w
	l.mu.Unlock()

	go l.watchLoop(ctx, w)
	return nil
}

func (l *Loader) watchLoop(ctx context.Context, w *watcher) {
	defer close(w.done)
	defer w.fs.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			domain, ok := watchedDomain(event.Name)
			if !ok {
				continue
			}
			if _, err := l.Reload(ctx, domain); err != nil {
				l.logger.Warn("config reload failed", "domain", domain, "error", err)
				continue
			}
			l.logger.Info("domain config reloaded", "domain", domain, "file", filepath.Base(event.Name))
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			l.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *watcher) close() error {
	w.cancel()
	<-w.done
	return nil
}

// watchedDomain maps a changed file path to the domain it configures.
// Both base files and environment overrides map to their domain.
func watchedDomain(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".yaml") {
		return "", false
	}
	name = strings.TrimSuffix(name, ".yaml")
	domain, _, _ := strings.Cut(name, ".")
	if domain == "" {
		return "", false
	}
	return domain, true
}

package fs

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/xiaoyuanzhu-com/debug-viewer/log"
)

// watcher handles filesystem watching using fsnotify
type watcher struct {
	service   *Service
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	stopChan  chan struct{}
}

// newWatcher creates a new filesystem watcher
func newWatcher(service *Service) *watcher {
	w := &watcher{
		service:  service,
		stopChan: make(chan struct{}),
	}
	w.debouncer = newDebouncer(service.cfg.DebounceDelay, w.processCreated)
	return w
}

// Start begins watching the image directory. Files already present are
// never reported.
func (w *watcher) Start() error {
	var err error
	w.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	root := w.service.cfg.Root
	log.Info().
		Str("dir", root).
		Bool("recursive", w.service.cfg.Recursive).
		Msg("starting filesystem watcher")

	if w.service.cfg.Recursive {
		err = w.watchRecursive(root)
	} else {
		err = w.watcher.Add(root)
	}
	if err != nil {
		w.watcher.Close()
		return err
	}

	w.service.wg.Add(1)
	go w.eventLoop()

	log.Info().Msg("filesystem watcher started")
	return nil
}

// Stop stops the filesystem watcher. Pending creations are dropped.
func (w *watcher) Stop() {
	if w.debouncer != nil {
		w.debouncer.Stop()
	}

	close(w.stopChan)

	if w.watcher != nil {
		w.watcher.Close()
	}
}

// watchRecursive adds dir and every non-excluded directory below it
func (w *watcher) watchRecursive(dir string) error {
	root := w.service.cfg.Root
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil // Skip unreadable subtrees
		}
		if !d.IsDir() {
			return nil
		}

		if path != root {
			relPath, _ := filepath.Rel(root, path)
			if w.service.filter.IsExcluded(relPath) {
				return filepath.SkipDir
			}
		}

		if err := w.watcher.Add(path); err != nil {
			if path == dir {
				return err
			}
			log.Warn().Err(err).Str("path", path).Msg("failed to watch directory")
		}
		return nil
	})
}

// eventLoop processes filesystem events. Backend errors are logged only;
// the watch is not restarted.
func (w *watcher) eventLoop() {
	defer w.service.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("watcher error")

		case <-w.stopChan:
			return
		}
	}
}

// handleEvent processes a single filesystem event
func (w *watcher) handleEvent(event fsnotify.Event) {
	relPath, err := filepath.Rel(w.service.cfg.Root, event.Name)
	if err != nil || relPath == "." {
		return
	}

	if w.service.filter.IsExcluded(relPath) {
		log.Debug().Str("path", relPath).Str("op", event.Op.String()).Msg("ignoring excluded path")
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			// Already gone (short-lived scratch file)
			return
		}
		if info.IsDir() {
			if w.service.cfg.Recursive {
				if err := w.watchRecursive(event.Name); err != nil {
					log.Warn().Err(err).Str("path", relPath).Msg("failed to watch new directory")
				}
			}
			return
		}
		w.debouncer.Queue(relPath, EventCreate)

	case event.Has(fsnotify.Write):
		w.debouncer.Queue(relPath, EventWrite)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if w.debouncer.Queue(relPath, EventDelete) {
			log.Debug().Str("path", relPath).Msg("file removed before it settled, not reporting")
		}
	}
}

// processCreated is called by the debouncer once a created file has settled
func (w *watcher) processCreated(relPath string) {
	info, err := os.Stat(filepath.Join(w.service.cfg.Root, relPath))
	if err != nil || info.IsDir() {
		return
	}

	log.Info().Str("file", relPath).Msg("new image detected")

	w.service.notifyFileAdded(FileAddedEvent{
		Name:    relPath,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
}

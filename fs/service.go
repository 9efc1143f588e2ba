package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xiaoyuanzhu-com/debug-viewer/log"
)

// Size of the buffered channel for file-added notifications.
// A burst beyond this holds the settled-file callback until the worker catches up.
const addedNotificationBufferSize = 100

// Service coordinates listing and watching of the image directory
type Service struct {
	// Configuration
	cfg Config

	// Sub-components
	filter    *PathFilter
	validator *validator
	watcher   *watcher

	// File-added notification (bounded channel, single worker)
	addedHandler FileAddedHandler
	handlerMu    sync.RWMutex
	addedChan    chan FileAddedEvent

	// Lifecycle
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewService creates a new filesystem service
func NewService(cfg Config) (*Service, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve images dir: %w", err)
	}
	cfg.Root = root

	filter, err := NewPathFilter(cfg.Exclusions, cfg.IgnoreGlobs...)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:       cfg,
		filter:    filter,
		validator: newValidator(),
		stopChan:  make(chan struct{}),
		addedChan: make(chan FileAddedEvent, addedNotificationBufferSize),
	}

	// Only create watcher if enabled
	if cfg.WatchEnabled {
		s.watcher = newWatcher(s)
	}

	return s, nil
}

// Root returns the absolute image directory
func (s *Service) Root() string {
	return s.cfg.Root
}

// Start ensures the image directory exists and starts the watcher.
// A watcher that fails to start is logged and the service keeps serving listings.
func (s *Service) Start() error {
	log.Info().Str("dir", s.cfg.Root).Msg("starting filesystem service")

	if err := os.MkdirAll(s.cfg.Root, 0755); err != nil {
		return fmt.Errorf("create images dir: %w", err)
	}

	s.wg.Add(1)
	go s.addedNotificationWorker()

	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			log.Error().Err(err).Msg("filesystem watcher unavailable, live updates disabled")
			s.watcher = nil
		}
	}

	log.Info().Msg("filesystem service started")
	return nil
}

// Stop gracefully shuts down the service
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		log.Info().Msg("stopping filesystem service")

		if s.watcher != nil {
			s.watcher.Stop()
		}
		close(s.stopChan)

		s.wg.Wait()
		log.Info().Msg("filesystem service stopped")
	})
	return nil
}

// Watching reports whether the watcher is running
func (s *Service) Watching() bool {
	return s.watcher != nil
}

// SetFileAddedHandler registers the callback for new files (used by the broadcaster)
func (s *Service) SetFileAddedHandler(handler FileAddedHandler) {
	s.handlerMu.Lock()
	defer s.handlerMu.Unlock()
	s.addedHandler = handler
}

// notifyFileAdded queues an event for the worker. It runs on debouncer timer
// goroutines, so waiting for room never stalls the fsnotify event loop.
func (s *Service) notifyFileAdded(event FileAddedEvent) {
	select {
	case s.addedChan <- event:
	case <-s.stopChan:
		log.Debug().Str("file", event.Name).Msg("service stopping, file-added event discarded")
	}
}

// addedNotificationWorker delivers file-added events sequentially
func (s *Service) addedNotificationWorker() {
	defer s.wg.Done()

	for {
		select {
		case event := <-s.addedChan:
			s.dispatch(event)

		case <-s.stopChan:
			// Drain remaining events before exiting
			for {
				select {
				case event := <-s.addedChan:
					s.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) dispatch(event FileAddedEvent) {
	s.handlerMu.RLock()
	handler := s.addedHandler
	s.handlerMu.RUnlock()

	if handler != nil {
		handler(event)
	}
}

// ValidateName checks that name stays inside the image directory
func (s *Service) ValidateName(name string) error {
	return s.validator.ValidateName(name)
}

// ResolvePath validates name and returns its absolute path
func (s *Service) ResolvePath(name string) (string, error) {
	if err := s.ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.cfg.Root, filepath.FromSlash(name)), nil
}

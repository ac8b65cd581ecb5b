package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// System holds the current system prompt. When backed by a file it can
// be hot-reloaded through Watch without restarting the process.
type System struct {
	mu      sync.RWMutex
	current string
	path    string

	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	debounce time.Duration
	timer    *time.Timer
	stopCh   chan struct{}
}

// NewSystem creates a System seeded with DefaultSystemPrompt. If path
// is non-empty the file's contents replace the default immediately.
func NewSystem(path string, logger zerolog.Logger) (*System, error) {
	s := &System{
		current:  DefaultSystemPrompt,
		path:     path,
		logger:   logger,
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}

	if path != "" {
		if err := s.reload(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Current returns the active system prompt.
func (s *System) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Watch starts watching the prompt file's directory and reloads the
// prompt when the file changes. No-op when no file is configured.
func (s *System) Watch() error {
	if s.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create prompt watcher: %w", err)
	}
	s.watcher = watcher

	// Watch the directory: editors replace files rather than write in place.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		s.watcher = nil
		return fmt.Errorf("failed to watch prompt directory: %w", err)
	}

	go s.run()

	s.logger.Info().Str("file", s.path).Msg("Watching system prompt file")

	return nil
}

// Stop stops the watcher.
func (s *System) Stop() error {
	if s.watcher == nil {
		return nil
	}
	close(s.stopCh)
	return s.watcher.Close()
}

func (s *System) run() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				s.logger.Debug().
					Str("file", filepath.Base(event.Name)).
					Str("op", event.Op.String()).
					Msg("Prompt file change detected")

				s.scheduleReload()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error().Err(err).Msg("Prompt watcher error")

		case <-s.stopCh:
			return
		}
	}
}

// scheduleReload debounces reloads so editor save bursts trigger one read.
func (s *System) scheduleReload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	s.timer = time.AfterFunc(s.debounce, func() {
		if err := s.reload(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to reload system prompt, keeping previous")
		}
	})
}

func (s *System) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read prompt file: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return fmt.Errorf("prompt file %s is empty", s.path)
	}

	s.mu.Lock()
	s.current = text
	s.mu.Unlock()

	s.logger.Info().Str("file", s.path).Int("bytes", len(text)).Msg("System prompt loaded")

	return nil
}

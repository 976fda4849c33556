// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package watcher

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event for a path
// before it is delivered.
const DefaultDebounce = 100 * time.Millisecond

// FS watches directories with fsnotify. Every subscription owns its own
// fsnotify watcher and event loop, so an FS can be shared freely.
type FS struct {
	logger   *slog.Logger
	debounce time.Duration
}

// Option configures an [FS].
type Option func(*FS)

// WithLogger sets the logger for watch events and errors.
func WithLogger(logger *slog.Logger) Option {
	return func(f *FS) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithDebounce sets how long events for a path are coalesced before
// delivery. Zero or less delivers every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(f *FS) {
		f.debounce = d
	}
}

// New creates a file-system watcher.
func New(opts ...Option) *FS {
	f := &FS{
		logger:   slog.New(slog.DiscardHandler),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Subscribe starts watching dir and calls onEvent with the path of each file
// in dir that is written or created. Watching the directory rather than the
// file keeps working when editors replace the file by renaming over it.
func (f *FS) Subscribe(dir string, onEvent func(path string)) (io.Closer, error) {
	if onEvent == nil {
		return nil, errors.New("watcher: onEvent cannot be nil")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	if err = w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watcher: failed to watch %s: %w", dir, err)
	}

	s := &subscription{
		watcher:  w,
		onEvent:  onEvent,
		debounce: f.debounce,
		logger:   f.logger.With("dir", dir),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	go s.run()

	s.logger.Debug("watching directory for changes")
	return s, nil
}

type subscription struct {
	watcher  *fsnotify.Watcher
	onEvent  func(string)
	debounce time.Duration
	logger   *slog.Logger

	mu     sync.Mutex // guards timers and closed
	timers map[string]*time.Timer
	closed bool

	deliver sync.Mutex     // serializes onEvent calls
	pending sync.WaitGroup // scheduled and running debounced deliveries

	done      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func (s *subscription) run() {
	defer close(s.loopDone)

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			// Only trigger on write or create events
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				s.logger.Debug("file changed", "file", event.Name, "op", event.Op.String())
				s.schedule(event.Name)
				continue
			}
			s.logger.Debug("ignoring file event", "file", event.Name, "op", event.Op.String())
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("watcher error", "error", err)
		case <-s.done:
			return
		}
	}
}

// schedule delivers path after the debounce window, restarting the window
// if a delivery for path is already pending.
func (s *subscription) schedule(path string) {
	if s.debounce <= 0 {
		s.fire(path)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if t, ok := s.timers[path]; ok && t.Stop() {
		t.Reset(s.debounce)
		return
	}

	s.pending.Add(1)
	var t *time.Timer
	t = time.AfterFunc(s.debounce, func() {
		defer s.pending.Done()

		s.mu.Lock()
		if s.timers[path] == t {
			delete(s.timers, path)
		}
		closed := s.closed
		s.mu.Unlock()

		if !closed {
			s.fire(path)
		}
	})
	s.timers[path] = t
}

func (s *subscription) fire(path string) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	if s.isClosed() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("watch callback panicked", "file", path, "panic", r)
		}
	}()
	s.onEvent(path)
}

func (s *subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops the subscription. Pending deliveries are dropped; a delivery
// already running is waited for.
func (s *subscription) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		for path, t := range s.timers {
			if t.Stop() {
				s.pending.Done()
			}
			delete(s.timers, path)
		}
		s.mu.Unlock()

		close(s.done)
		if err := s.watcher.Close(); err != nil {
			s.logger.Error("failed to close watcher", "error", err)
			s.closeErr = err
		}
		<-s.loopDone
		s.pending.Wait()

		s.logger.Debug("stopped watching directory")
	})
	return s.closeErr
}

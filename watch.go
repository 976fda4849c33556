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

package configdoctor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
)

// Watcher delivers file change notifications for a directory.
//
// Subscribe calls onEvent with the path of each changed file in dir, on a
// goroutine owned by the watcher. Closing the returned subscription stops
// delivery and blocks until a running onEvent call has returned; closing it
// more than once is safe.
type Watcher interface {
	Subscribe(dir string, onEvent func(path string)) (io.Closer, error)
}

// State is the watch state of a [Provider].
type State int32

const (
	// StateUnwatched means the provider was opened without watching.
	StateUnwatched State = iota
	// StateWatching means file events reload the provider.
	StateWatching
	// StateStopped means watching was stopped. It is terminal.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnwatched:
		return "unwatched"
	case StateWatching:
		return "watching"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// startWatching subscribes to the directory holding the bound file.
func (p *Provider) startWatching() error {
	w := p.watcher
	if w == nil {
		var err error
		if w, err = defaultWatcher(p.logger); err != nil {
			return NewError(ErrMissingCapability, p.Path(), "watch", err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	dir := filepath.Dir(p.Path())
	sub, err := w.Subscribe(dir, p.handleEvent)
	if err != nil {
		return NewError(ErrMissingCapability, p.Path(), "watch", err)
	}
	p.sub = sub
	p.state.Store(int32(StateWatching))
	p.logger.Debug("watching config file", "path", p.Path(), "dir", dir)
	return nil
}

// handleEvent is the subscription callback. Events for other files in the
// directory are ignored. It never lets a panic or error escape into the
// watcher goroutine.
func (p *Provider) handleEvent(path string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("config change callback panicked", "path", p.Path(), "panic", r)
		}
	}()

	if p.State() != StateWatching {
		return
	}
	if filepath.Clean(path) != p.Path() {
		p.metrics.watchEvent(watchIgnored)
		return
	}

	if !p.autoReload {
		p.stale.Store(true)
		p.metrics.watchEvent(watchStale)
		p.logger.Debug("config file changed, marked stale", "path", p.Path())
		return
	}

	if err := p.reload(context.Background(), "watch"); err != nil {
		p.metrics.watchEvent(watchFailed)
		if p.onError != nil {
			p.onError(p, err)
			return
		}
		p.logger.Error("config reload failed", "path", p.Path(), "error", err)
		return
	}

	p.metrics.watchEvent(watchReloaded)
	if p.onChange != nil {
		p.onChange(p)
	}
}

// StopWatching stops watching the file and waits until an in-flight reload
// and its callbacks have finished. It is safe to call more than once and on
// providers that never watched.
//
// StopWatching must not be called from an OnChange or OnError callback,
// since it waits for that callback to return.
func (p *Provider) StopWatching() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.State() != StateWatching {
		return nil
	}
	p.state.Store(int32(StateStopped))

	sub := p.sub
	p.sub = nil
	if err := sub.Close(); err != nil {
		return NewError(ErrUnreadable, p.Path(), "stop", err)
	}
	p.logger.Debug("stopped watching config file", "path", p.Path())
	return nil
}

// Close is [Provider.StopWatching]. It makes a Provider an [io.Closer].
func (p *Provider) Close() error {
	return p.StopWatching()
}

// State returns the current watch state.
func (p *Provider) State() State {
	return State(p.state.Load())
}

// Stale reports whether the file changed since the last load while
// auto-reload was disabled.
func (p *Provider) Stale() bool {
	return p.stale.Load()
}

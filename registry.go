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
	"log/slog"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"rivaas.dev/configdoctor/codec"
)

// DefaultRegistrySize is the number of providers a [Registry] keeps when
// no size is given.
const DefaultRegistrySize = 32

// Key identifies a cached provider in a [Registry].
//
// Callbacks and schemas are not part of the key: a second Get with the same
// key returns the first provider even if it passes different options.
// Callers that need distinct callbacks for the same file use distinct
// Variant labels.
type Key struct {
	Path    string
	Format  codec.Type
	Watch   bool
	Variant string
}

// Registry caches open providers, evicting the least recently used one when
// full. Evicted and removed providers stop watching.
// A Registry is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex // serializes opens
	cache    *lru.Cache
	defaults []Option
	logger   *slog.Logger
}

// RegistryOption configures a [Registry].
type RegistryOption func(r *Registry)

// WithDefaultOptions adds options applied to every provider the registry opens,
// before the options passed to [Registry.Get].
func WithDefaultOptions(opts ...Option) RegistryOption {
	return func(r *Registry) {
		r.defaults = append(r.defaults, opts...)
	}
}

// WithRegistryLogger sets the logger used for eviction events.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates a registry holding up to size providers.
// A size of zero or less means [DefaultRegistrySize].
func NewRegistry(size int, opts ...RegistryOption) (*Registry, error) {
	if size <= 0 {
		size = DefaultRegistrySize
	}
	r := &Registry{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(r)
	}

	cache, err := lru.NewWithEvict(size, r.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Get returns the provider cached under key, opening it first when absent.
// Key.Format and Key.Watch are turned into [WithFormat] and [WithWatch].
// Concurrent calls for the same key open at most one provider; a failed
// open is not cached. A cached provider whose watching was stopped is
// replaced by a freshly opened one.
func (r *Registry) Get(ctx context.Context, key Key, opts ...Option) (*Provider, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.cache.Get(key); ok {
		p := v.(*Provider)
		if p.State() != StateStopped {
			return p, nil
		}
		// A caller stopped the shared provider; it would never reload again.
		r.cache.Remove(key)
		r.logger.Debug("reopening stopped config provider", "path", key.Path)
	}

	all := make([]Option, 0, len(r.defaults)+len(opts)+2)
	all = append(all, r.defaults...)
	if key.Format != "" {
		all = append(all, WithFormat(key.Format))
	}
	if key.Watch {
		all = append(all, WithWatch())
	}
	all = append(all, opts...)

	p, err := Open(ctx, key.Path, all...)
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, p)
	return p, nil
}

// Remove drops the provider cached under key and stops it.
// It reports whether a provider was cached.
func (r *Registry) Remove(key Key) bool {
	key, err := normalizeKey(key)
	if err != nil {
		return false
	}
	return r.cache.Remove(key)
}

// Len returns the number of cached providers.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Purge stops and drops every cached provider.
func (r *Registry) Purge() {
	r.cache.Purge()
}

func (r *Registry) onEvict(key, value any) {
	p, ok := value.(*Provider)
	if !ok {
		return
	}
	if err := p.StopWatching(); err != nil {
		r.logger.Warn("failed to stop evicted config provider", "path", p.Path(), "error", err)
		return
	}
	r.logger.Debug("config provider evicted", "path", key.(Key).Path)
}

func normalizeKey(key Key) (Key, error) {
	abs, err := filepath.Abs(key.Path)
	if err != nil {
		return key, NewError(ErrUnreadable, key.Path, "open", err)
	}
	key.Path = abs
	return key, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(DefaultRegistrySize)
	if err != nil {
		panic(err)
	}
	return r
})

// OpenCached returns a provider from the process-wide registry, opening it on
// first use. See [Registry.Get] for how keys are matched.
func OpenCached(ctx context.Context, key Key, opts ...Option) (*Provider, error) {
	return defaultRegistry().Get(ctx, key, opts...)
}

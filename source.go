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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"rivaas.dev/configdoctor/codec"
	"rivaas.dev/configdoctor/source"
)

// Source binds one configuration file to one format and caches the most
// recently loaded document.
//
// Sources are created with [NewJSONSource], [NewYAMLSource], [NewTOMLSource]
// or a [Factory]. The path is checked once at construction; parsing is
// deferred to the first [Source.Load]. A Source is safe for concurrent use.
type Source struct {
	path     string
	format   codec.Type
	registry *codec.Registry

	mu  sync.Mutex // serializes loads
	doc atomic.Pointer[map[string]any]
}

// SourceOption configures a [Source].
type SourceOption func(*Source)

// WithSourceRegistry makes the source resolve its decoder from registry
// instead of [codec.Default].
func WithSourceRegistry(registry *codec.Registry) SourceOption {
	return func(s *Source) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// NewJSONSource creates a source for a JSON file.
func NewJSONSource(path string, opts ...SourceOption) (*Source, error) {
	return newSource(path, codec.TypeJSON, opts)
}

// NewYAMLSource creates a source for a YAML file.
func NewYAMLSource(path string, opts ...SourceOption) (*Source, error) {
	return newSource(path, codec.TypeYAML, opts)
}

// NewTOMLSource creates a source for a TOML file.
func NewTOMLSource(path string, opts ...SourceOption) (*Source, error) {
	return newSource(path, codec.TypeTOML, opts)
}

func newSource(path string, format codec.Type, opts []SourceOption) (*Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, NewError(ErrUnreadable, path, "open", err)
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, NewError(ErrNotFound, abs, "open", nil)
	case err != nil:
		return nil, NewError(ErrUnreadable, abs, "open", err)
	case !info.Mode().IsRegular():
		return nil, NewError(ErrNotAFile, abs, "open", nil)
	}

	s := &Source{
		path:     abs,
		format:   format,
		registry: codec.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the absolute, cleaned path of the bound file.
func (s *Source) Path() string {
	return s.path
}

// Format returns the format the file is decoded as.
func (s *Source) Format() codec.Type {
	return s.format
}

// Load returns the cached document, loading it first if nothing is cached.
// Concurrent callers on an empty cache trigger exactly one load.
//
// Errors:
//   - [ErrNotFound] if the file disappeared since construction
//   - [ErrUnreadable] if the file cannot be read
//   - [ErrMissingCapability] if no decoder is registered for the format
//   - [ErrParse] if the content is not a valid document
func (s *Source) Load(ctx context.Context) (map[string]any, error) {
	if doc := s.doc.Load(); doc != nil {
		return *doc, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if doc := s.doc.Load(); doc != nil {
		return *doc, nil
	}

	doc, err := s.fetch(ctx, "load")
	if err != nil {
		return nil, err
	}
	s.store(doc)
	return doc, nil
}

// Reload discards the cached document and loads it again. When loading
// fails the previously cached document is kept and the error is returned.
func (s *Source) Reload(ctx context.Context) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.fetch(ctx, "reload")
	if err != nil {
		return nil, err
	}
	s.store(doc)
	return doc, nil
}

// Get returns the top-level value for key, or def when the key is absent.
// Keys are not split on dots; see [Provider.Get] for nested lookup.
func (s *Source) Get(ctx context.Context, key string, def any) (any, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if v, ok := doc[key]; ok {
		return v, nil
	}
	return def, nil
}

// cached returns the cached document, or nil when nothing was loaded yet.
func (s *Source) cached() map[string]any {
	if doc := s.doc.Load(); doc != nil {
		return *doc
	}
	return nil
}

// fetch reads and decodes the file without touching the cache.
func (s *Source) fetch(ctx context.Context, operation string) (map[string]any, error) {
	decoder, err := s.registry.GetDecoder(s.format)
	if err != nil {
		return nil, NewError(ErrMissingCapability, s.path, operation, err)
	}

	doc, err := source.NewFile(s.path, decoder).Load(ctx)
	if err == nil {
		return doc, nil
	}

	var decodeErr *source.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		line := LocateLine(decoder, decodeErr.Err, decodeErr.Data)
		return nil, newParseError(s.path, operation, line, fmt.Errorf("invalid %s: %w", formatName(s.format), decodeErr.Err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case errors.Is(err, fs.ErrNotExist):
		return nil, NewError(ErrNotFound, s.path, operation, nil)
	default:
		return nil, NewError(ErrUnreadable, s.path, operation, err)
	}
}

// store atomically replaces the cached document.
func (s *Source) store(doc map[string]any) {
	s.doc.Store(&doc)
}

// formatName returns the display name used in parse error messages.
func formatName(format codec.Type) string {
	switch format {
	case codec.TypeJSON:
		return "JSON"
	case codec.TypeYAML:
		return "YAML"
	case codec.TypeTOML:
		return "TOML"
	default:
		return string(format)
	}
}

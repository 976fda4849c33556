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
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mohae/deepcopy"

	"rivaas.dev/configdoctor/codec"
)

// Provider gives read access to one configuration file.
//
// A Provider is created by [Open], which loads and validates the file
// eagerly. With [WithWatch] it reloads the document when the file changes.
// Readers always see a complete document: reloads are parsed and validated
// first and then swapped in atomically. A failed reload keeps the previous
// document.
//
// Provider is safe for concurrent use by multiple goroutines.
type Provider struct {
	source     *Source
	format     codec.Type
	registry   *codec.Registry
	schemas    []Schema
	modelProto any
	model      *modelSchema
	tag        string

	watch      bool
	watcher    Watcher
	onChange   func(*Provider)
	onError    func(*Provider, error)
	autoReload bool
	logger     *slog.Logger
	metrics    *metrics

	mu    sync.Mutex // guards sub and state transitions
	sub   io.Closer
	state atomic.Int32
	stale atomic.Bool
}

var _ io.Closer = (*Provider)(nil)

// Open creates a provider for the file at path.
// The format is detected from the extension unless [WithFormat] is given.
// The document is loaded and validated before Open returns; a provider
// that fails either step is never returned.
//
// Errors:
//   - [ErrInvalidOption] if an option is rejected
//   - [ErrUnsupportedFormat] or [ErrMissingCapability] if the format cannot be decoded
//   - [ErrNotFound], [ErrNotAFile] or [ErrUnreadable] for path problems
//   - [ErrParse] if the content is not a valid document
//   - [ErrValidationFailed] if a schema rejects the document
//   - [ErrMissingCapability] if watching was requested but is unavailable
func Open(ctx context.Context, path string, opts ...Option) (*Provider, error) {
	if ctx == nil {
		return nil, NewError(ErrInvalidOption, path, "open", errors.New("context cannot be nil"))
	}

	p := &Provider{
		registry:   codec.Default(),
		tag:        defaultTag,
		autoReload: true,
		logger:     slog.New(slog.DiscardHandler),
	}

	var errs error
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(p); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		return nil, NewError(ErrInvalidOption, path, "open", errs)
	}

	if p.modelProto != nil {
		model, err := newModelSchema(p.modelProto, p.tag)
		if err != nil {
			return nil, NewError(ErrInvalidOption, path, "open", err)
		}
		p.model = model
	}

	factory := NewFactory(p.registry)
	var err error
	if p.format != "" {
		p.source, err = factory.CreateAs(path, p.format)
	} else {
		p.source, err = factory.Create(path)
	}
	if err != nil {
		return nil, err
	}

	doc, err := p.source.Load(ctx)
	if err != nil {
		p.metrics.reloaded(p.Path(), err)
		return nil, err
	}
	if err = p.validate(doc, "open"); err != nil {
		p.metrics.reloaded(p.Path(), err)
		return nil, err
	}
	p.metrics.reloaded(p.Path(), nil)

	if p.watch {
		if err = p.startWatching(); err != nil {
			return nil, err
		}
	}

	p.logger.Debug("config loaded", "path", p.Path(), "format", p.Format())
	return p, nil
}

// MustOpen is like [Open] but panics on error.
// Use this in main() or initialization code where panic is acceptable.
func MustOpen(ctx context.Context, path string, opts ...Option) *Provider {
	p, err := Open(ctx, path, opts...)
	if err != nil {
		panic(fmt.Sprintf("configdoctor: failed to open config: %v", err))
	}
	return p
}

// Use opens the file, calls fn with the provider and stops watching when fn
// returns, also when fn panics.
func Use(ctx context.Context, path string, fn func(p *Provider) error, opts ...Option) error {
	p, err := Open(ctx, path, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := p.StopWatching(); stopErr != nil {
			p.logger.Warn("failed to stop watching config", "path", p.Path(), "error", stopErr)
		}
	}()
	return fn(p)
}

// Path returns the absolute path of the bound file.
func (p *Provider) Path() string {
	return p.source.Path()
}

// Format returns the format the file is decoded as.
func (p *Provider) Format() codec.Type {
	return p.source.Format()
}

// Reload re-reads the file, validates it and swaps in the new document.
// On failure the current document is kept and the error is returned.
// A successful reload clears [Provider.Stale].
func (p *Provider) Reload(ctx context.Context) error {
	return p.reload(ctx, "reload")
}

func (p *Provider) reload(ctx context.Context, operation string) error {
	doc, err := p.source.fetch(ctx, operation)
	if err == nil {
		err = p.validate(doc, operation)
	}
	p.metrics.reloaded(p.Path(), err)
	if err != nil {
		return err
	}

	p.source.store(doc)
	p.stale.Store(false)
	p.logger.Info("config reloaded", "path", p.Path(), "op", operation)
	return nil
}

// validate runs every configured schema and reports all failures at once.
func (p *Provider) validate(doc map[string]any, operation string) error {
	var errs error
	for _, schema := range p.schemas {
		if err := runSchema(schema, doc); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if p.model != nil {
		if err := runSchema(p.model, doc); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		return NewError(ErrValidationFailed, p.Path(), operation, errs)
	}
	return nil
}

// runSchema calls schema.Validate, turning a panic into an error.
func runSchema(schema Schema, doc map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validator panic: %v", r)
		}
	}()
	return schema.Validate(doc)
}

// AsDict returns the current document. The returned map is shared and must
// not be modified; use [Provider.Snapshot] for a private copy.
func (p *Provider) AsDict() map[string]any {
	if doc := p.source.cached(); doc != nil {
		return doc
	}
	return map[string]any{}
}

// Snapshot returns a deep copy of the current document.
func (p *Provider) Snapshot() map[string]any {
	doc, ok := deepcopy.Copy(p.AsDict()).(map[string]any)
	if !ok || doc == nil {
		return map[string]any{}
	}
	return doc
}

// Get returns the value for key, or def when it is absent. A key containing
// dots is split and resolved as a nested path (see [Provider.GetNested]).
func (p *Provider) Get(key string, def any) any {
	if strings.Contains(key, ".") {
		return p.GetNested(def, strings.Split(key, ".")...)
	}
	if v, ok := p.AsDict()[key]; ok {
		return v
	}
	return def
}

// GetNested walks keys from the document root and returns the value found,
// or def as soon as a key is absent or an intermediate value is not a mapping.
//
// Example:
//
//	port := p.GetNested(8080, "server", "port")
func (p *Provider) GetNested(def any, keys ...string) any {
	if v, ok := p.Lookup(keys...); ok {
		return v
	}
	return def
}

// Lookup is like [Provider.GetNested] but reports whether the path exists.
// A present key whose value is nil is found.
func (p *Provider) Lookup(keys ...string) (any, bool) {
	return lookup(p.AsDict(), keys)
}

func lookup(doc map[string]any, keys []string) (any, bool) {
	var current any = doc
	for _, key := range keys {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[key]; !ok {
			return nil, false
		}
	}
	return current, true
}

// Validate checks that every dotted key path in required is present.
// All missing paths are reported together, in the order given. Values such
// as 0, "", false or null count as present.
func (p *Provider) Validate(required ...string) error {
	doc := p.AsDict()
	var missing []string
	for _, path := range required {
		if _, ok := lookup(doc, strings.Split(path, ".")); !ok {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return &Error{
			Kind:      ErrMissingRequiredKeys,
			Path:      p.Path(),
			Operation: "validate",
			Missing:   missing,
		}
	}
	return nil
}

// Model decodes the current document into a new instance of the type given
// to [WithModel] and returns a pointer to it.
func (p *Provider) Model() (any, error) {
	if p.model == nil {
		return nil, NewError(ErrNoSchemaProvided, p.Path(), "model", nil)
	}
	v, err := p.model.New(p.AsDict())
	if err != nil {
		return nil, NewError(ErrValidationFailed, p.Path(), "model", err)
	}
	return v, nil
}

// Decode decodes the current document into target, which must be a
// non-nil pointer. Struct targets are validated like models.
func (p *Provider) Decode(target any) error {
	if !isNonNilPointer(target) {
		return NewError(ErrInvalidOption, p.Path(), "decode", errors.New("target must be a non-nil pointer"))
	}
	if err := decodeInto(p.AsDict(), target, p.tag, newTagValidator(p.tag)); err != nil {
		return NewError(ErrValidationFailed, p.Path(), "decode", err)
	}
	return nil
}

// AsModel decodes the current document into a new T.
//
// Example:
//
//	settings, err := configdoctor.AsModel[Settings](p)
func AsModel[T any](p *Provider) (*T, error) {
	target := new(T)
	if err := p.Decode(target); err != nil {
		return nil, err
	}
	return target, nil
}

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
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"rivaas.dev/configdoctor/codec"
)

// defaultTag is the struct tag read when decoding into models.
const defaultTag = "config"

// Option is a functional option that configures a [Provider] during [Open].
type Option func(p *Provider) error

// WithFormat decodes the file as format regardless of its extension.
//
// Example:
//
//	p, err := configdoctor.Open(ctx, "app.conf", configdoctor.WithFormat(codec.TypeTOML))
func WithFormat(format codec.Type) Option {
	return func(p *Provider) error {
		if format == "" {
			return errors.New("format cannot be empty")
		}
		p.format = format
		return nil
	}
}

// WithSchema adds a schema the document must satisfy on open and on every reload.
func WithSchema(schema Schema) Option {
	return func(p *Provider) error {
		if schema == nil {
			return errors.New("schema cannot be nil")
		}
		p.schemas = append(p.schemas, schema)
		return nil
	}
}

// WithJSONSchema adds a JSON Schema for validation.
func WithJSONSchema(schema []byte) Option {
	return func(p *Provider) error {
		s, err := CompileJSONSchema(schema)
		if err != nil {
			return err
		}
		p.schemas = append(p.schemas, s)
		return nil
	}
}

// WithJSONSchemaFile adds a JSON Schema read from a file.
func WithJSONSchemaFile(path string) Option {
	return func(p *Provider) error {
		s, err := CompileJSONSchemaFile(path)
		if err != nil {
			return err
		}
		p.schemas = append(p.schemas, s)
		return nil
	}
}

// WithModel validates the document by decoding it into the struct type of
// model. Fields are matched by the "config" tag (see [WithTag]); "validate"
// tags are checked with go-playground/validator, "default" tags fill zero
// fields, and a model implementing [Validator] is validated last.
// [Provider.Model] returns a decoded instance.
//
// Example:
//
//	type Settings struct {
//	    Port int    `config:"port" validate:"required,min=1"`
//	    Host string `config:"host" default:"localhost"`
//	}
//
//	p, err := configdoctor.Open(ctx, "app.yaml", configdoctor.WithModel(Settings{}))
func WithModel(model any) Option {
	return func(p *Provider) error {
		if model == nil {
			return errors.New("model cannot be nil")
		}
		p.modelProto = model
		return nil
	}
}

// WithValidator adds a custom validation function.
func WithValidator(fn func(map[string]any) error) Option {
	return func(p *Provider) error {
		if fn == nil {
			return errors.New("validator cannot be nil")
		}
		p.schemas = append(p.schemas, SchemaFunc(fn))
		return nil
	}
}

// WithWatch watches the file with the default file-system watcher and
// reloads the document when it changes.
//
// The default watcher debounces events per file for
// [rivaas.dev/configdoctor/watcher.DefaultDebounce], so a burst of writes
// inside that window (an editor's truncate and write, or several quick saves)
// produces a single reload and a single OnChange call. For one reload per file-system event,
// pass a watcher without debouncing instead:
//
//	configdoctor.WithWatcher(watcher.New(watcher.WithDebounce(0)))
func WithWatch() Option {
	return func(p *Provider) error {
		p.watch = true
		return nil
	}
}

// WithWatcher watches the file with w instead of the default watcher.
func WithWatcher(w Watcher) Option {
	return func(p *Provider) error {
		if w == nil {
			return errors.New("watcher cannot be nil")
		}
		p.watch = true
		p.watcher = w
		return nil
	}
}

// WithOnChange sets a callback run after every successful watch-triggered reload.
func WithOnChange(fn func(p *Provider)) Option {
	return func(p *Provider) error {
		p.onChange = fn
		return nil
	}
}

// WithOnError sets a callback run when a watch-triggered reload fails.
// Without it such failures are logged and otherwise ignored.
func WithOnError(fn func(p *Provider, err error)) Option {
	return func(p *Provider) error {
		p.onError = fn
		return nil
	}
}

// WithAutoReload controls whether file events reload the document (the
// default). When disabled, an event only marks the provider stale; see
// [Provider.Stale].
func WithAutoReload(enabled bool) Option {
	return func(p *Provider) error {
		p.autoReload = enabled
		return nil
	}
}

// WithLogger sets the logger for reload and watch events.
// By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		p.logger = logger
		return nil
	}
}

// WithMetrics registers reload and watch metrics with reg.
// Providers sharing a registerer share the collectors.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *Provider) error {
		if reg == nil {
			return errors.New("metrics registerer cannot be nil")
		}
		m, err := newMetrics(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		p.metrics = m
		return nil
	}
}

// WithCodecRegistry resolves decoders from registry instead of [codec.Default].
func WithCodecRegistry(registry *codec.Registry) Option {
	return func(p *Provider) error {
		if registry == nil {
			return errors.New("codec registry cannot be nil")
		}
		p.registry = registry
		return nil
	}
}

// WithTag sets a custom struct tag name for model decoding (default: "config").
// This allows you to use a different tag name if "config" conflicts with other libraries.
func WithTag(tagName string) Option {
	return func(p *Provider) error {
		if tagName == "" {
			return errors.New("tag name cannot be empty")
		}
		p.tag = tagName
		return nil
	}
}

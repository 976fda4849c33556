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

	"rivaas.dev/configdoctor/codec"
)

// Factory creates sources for files, choosing the format from the file
// extension.
type Factory struct {
	registry *codec.Registry
}

// NewFactory returns a Factory resolving decoders from registry.
// A nil registry means [codec.Default].
func NewFactory(registry *codec.Registry) *Factory {
	if registry == nil {
		registry = codec.Default()
	}
	return &Factory{registry: registry}
}

// Create detects the format of path from its extension and returns a
// matching source. Detection happens before the path is checked, so an
// unsupported extension is reported even when the file does not exist.
func (f *Factory) Create(path string) (*Source, error) {
	format, err := NewDetector(f.registry).Detect(path)
	if err != nil {
		var cfgErr *Error
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
		}
		return nil, err
	}
	return f.CreateAs(path, format)
}

// CreateAs returns a source for path decoded as format, ignoring the file
// extension.
func (f *Factory) CreateAs(path string, format codec.Type) (*Source, error) {
	opt := WithSourceRegistry(f.registry)
	switch format {
	case codec.TypeJSON:
		return NewJSONSource(path, opt)
	case codec.TypeYAML:
		return NewYAMLSource(path, opt)
	case codec.TypeTOML:
		return NewTOMLSource(path, opt)
	default:
		return nil, NewError(ErrUnsupportedFormat, path, "open", fmt.Errorf("format %q", format))
	}
}

// NewSource creates a source for path using the default codec registry.
func NewSource(path string) (*Source, error) {
	return NewFactory(nil).Create(path)
}

// NewSourceAs creates a source for path decoded as format using the default
// codec registry.
func NewSourceAs(path string, format codec.Type) (*Source, error) {
	return NewFactory(nil).CreateAs(path, format)
}

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

package codec

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotRegistered is returned when no encoder or decoder is registered for a type.
var ErrNotRegistered = errors.New("codec not registered")

// Registry holds the registered encoders and decoders.
// A Registry is safe for concurrent use. The zero value is not usable; create
// one with [NewRegistry].
type Registry struct {
	mu       sync.RWMutex
	encoders map[Type]Encoder
	decoders map[Type]Decoder
}

var defaultRegistry = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		encoders: make(map[Type]Encoder),
		decoders: make(map[Type]Decoder),
	}
}

// NewBuiltinRegistry returns a registry preloaded with the JSON, YAML and TOML codecs.
// Tests use it to get an isolated registry they can unregister formats from.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	r.RegisterEncoder(TypeJSON, JSONCodec{})
	r.RegisterDecoder(TypeJSON, JSONCodec{})
	r.RegisterEncoder(TypeYAML, YAMLCodec{})
	r.RegisterDecoder(TypeYAML, YAMLCodec{})
	r.RegisterEncoder(TypeTOML, TOMLCodec{})
	r.RegisterDecoder(TypeTOML, TOMLCodec{})
	return r
}

// Default returns the process-wide registry that the built-in codecs register into.
func Default() *Registry {
	return defaultRegistry
}

// RegisterEncoder registers an encoder for the given type, replacing any previous one.
func (r *Registry) RegisterEncoder(name Type, encoder Encoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.encoders[name] = encoder
}

// RegisterDecoder registers a decoder for the given type, replacing any previous one.
func (r *Registry) RegisterDecoder(name Type, decoder Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[name] = decoder
}

// Unregister removes both the encoder and the decoder for the given type.
func (r *Registry) Unregister(name Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.encoders, name)
	delete(r.decoders, name)
}

// GetEncoder retrieves the registered encoder for the given type.
func (r *Registry) GetEncoder(name Type) (Encoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	encoder, exists := r.encoders[name]
	if !exists {
		return nil, fmt.Errorf("encoder not found for type: %s: %w", name, ErrNotRegistered)
	}

	return encoder, nil
}

// GetDecoder retrieves the registered decoder for the given type.
func (r *Registry) GetDecoder(name Type) (Decoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	decoder, exists := r.decoders[name]
	if !exists {
		return nil, fmt.Errorf("decoder not found for type: %s: %w", name, ErrNotRegistered)
	}

	return decoder, nil
}

// HasDecoder reports whether a decoder is registered for the given type.
func (r *Registry) HasDecoder(name Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.decoders[name]
	return ok
}

// Decoders returns the registered decoder types in sorted order.
func (r *Registry) Decoders() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]Type, 0, len(r.decoders))
	for t := range r.decoders {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// RegisterEncoder registers an encoder in the default registry.
func RegisterEncoder(name Type, encoder Encoder) {
	defaultRegistry.RegisterEncoder(name, encoder)
}

// RegisterDecoder registers a decoder in the default registry.
func RegisterDecoder(name Type, decoder Decoder) {
	defaultRegistry.RegisterDecoder(name, decoder)
}

// GetEncoder retrieves an encoder from the default registry.
func GetEncoder(name Type) (Encoder, error) {
	return defaultRegistry.GetEncoder(name)
}

// GetDecoder retrieves a decoder from the default registry.
func GetDecoder(name Type) (Decoder, error) {
	return defaultRegistry.GetDecoder(name)
}

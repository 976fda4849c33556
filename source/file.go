// Copyright 2025 The Rivaas Authors
// Copyright 2025 Company.info B.V.
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

package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"rivaas.dev/configdoctor/codec"
)

var (
	// ErrInvalidUTF8 is reported when the content is not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("content is not valid UTF-8")
	// ErrNotMapping is reported when the decoded document is not a mapping.
	ErrNotMapping = errors.New("document root must be a mapping")
)

// DecodeError reports content that could not be turned into a document.
// Data holds the exact bytes handed to the decoder so callers can map the
// error back to a line.
type DecodeError struct {
	Data []byte
	Err  error
}

// Error returns the decode failure message.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode file: %v", e.Err)
}

// Unwrap returns the decoder error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// File represents a configuration source that loads data from a file or byte content.
// It supports loading from file paths or directly from byte slices.
type File struct {
	path    string
	data    []byte
	decoder codec.Decoder
}

// NewFile creates a new File source that loads configuration from the specified file path.
// The decoder parameter determines how the file content is parsed.
func NewFile(path string, decoder codec.Decoder) *File {
	return &File{
		path:    path,
		decoder: decoder,
	}
}

// NewFileContent creates a new File source that loads configuration from the provided byte slice.
// This is useful for loading configuration from embedded content or dynamically generated data.
func NewFileContent(data []byte, decoder codec.Decoder) *File {
	return &File{
		data:    data,
		decoder: decoder,
	}
}

// Load reads the file and decodes its contents into a map[string]any.
// Every call reads the file again; caching is the caller's concern.
//
// Errors:
//   - Returns the context error if ctx is already done
//   - Returns a wrapped [os.ReadFile] error if the file cannot be read (NewFile only)
//   - Returns a [*DecodeError] if the content cannot be decoded
func (f *File) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := f.data
	if f.path != "" {
		var err error
		data, err = os.ReadFile(f.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
	}

	return Decode(data, f.decoder)
}

// Decode turns raw content into a document.
//
// Content must be valid UTF-8. Content that is empty after trimming
// whitespace, and content that decodes to null (for example a YAML file
// holding only comments), yields an empty document. The untrimmed bytes are
// decoded so that parser positions match the file.
func Decode(data []byte, decoder codec.Decoder) (map[string]any, error) {
	if !utf8.Valid(data) {
		return nil, &DecodeError{Data: data, Err: ErrInvalidUTF8}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var raw any
	if err := decoder.Decode(data, &raw); err != nil {
		return nil, &DecodeError{Data: data, Err: err}
	}

	switch doc := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return doc, nil
	default:
		return nil, &DecodeError{Data: data, Err: fmt.Errorf("%w, got %T", ErrNotMapping, raw)}
	}
}

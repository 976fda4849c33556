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

// Package codec provides functionality for encoding and decoding data.

package codec

import (
	"bytes"
	"encoding/json"
	"errors"
)

// TypeJSON is a constant representing the "json" encoding type.
const TypeJSON Type = "json"

// init registers the JSON encoding and decoding implementations with the codec package.
func init() {
	RegisterEncoder(TypeJSON, JSONCodec{})
	RegisterDecoder(TypeJSON, JSONCodec{})
}

// The JSONCodec struct implements the Encode and Decode methods to provide
// JSON serialization and deserialization functionality.
//
// Decoding is strict: trailing commas, single-quoted strings and trailing
// data after the top-level value are rejected. Numbers decoded into untyped
// values become int64 when they are integers that fit, float64 otherwise.
type JSONCodec struct{}

// Encode converts the provided value v into an indented JSON document.
func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Decode unmarshalls the provided JSON-encoded byte slice into the value pointed to by v.
func (JSONCodec) Decode(data []byte, v any) error {
	if !json.Valid(data) {
		// Unmarshal reports the syntax error with its byte offset.
		var discard any
		return json.Unmarshal(data, &discard)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}

	switch target := v.(type) {
	case *any:
		*target = normalizeNumbers(*target)
	case *map[string]any:
		normalizeNumbers(*target)
	case *[]any:
		normalizeNumbers(*target)
	}
	return nil
}

// normalizeNumbers replaces json.Number values in decoded untyped data.
// Maps and slices are updated in place.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
	}
	return v
}

// Locate maps syntax and type errors to the line holding the offending byte offset.
func (JSONCodec) Locate(err error, data []byte) (int, bool) {
	var offset int64

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return 0, false
	}

	if offset <= 0 {
		return 1, true
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	// Offset points just past the byte that failed.
	return bytes.Count(data[:offset-1], []byte{'\n'}) + 1, true
}

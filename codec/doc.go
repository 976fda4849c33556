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

// Package codec provides the document parsers used by configdoctor.
//
// The codec package defines [Encoder] and [Decoder] interfaces for converting
// configuration documents between their on-disk formats and Go values, and a
// [Registry] that maps a format [Type] to its implementation. The registry is
// how optional parser capabilities are modelled: a format with no registered
// decoder is reported by the caller as a missing capability at first use.
//
// # Built-in Codecs
//
//   - JSON: strict encoding/json decoding, indented encoding
//   - YAML: github.com/goccy/go-yaml
//   - TOML: github.com/BurntSushi/toml
//
// All three also implement [Locator], which maps a decode error back to the
// line of the input it refers to.
//
// # Custom Codecs
//
// Register custom codecs using [RegisterEncoder] and [RegisterDecoder]:
//
//	type MyCodec struct{}
//
//	func (c MyCodec) Encode(v any) ([]byte, error) {
//	    // Custom encoding logic
//	    return data, nil
//	}
//
//	func (c MyCodec) Decode(data []byte, v any) error {
//	    // Custom decoding logic
//	    return nil
//	}
//
//	codec.RegisterEncoder(codec.Type("myformat"), MyCodec{})
//	codec.RegisterDecoder(codec.Type("myformat"), MyCodec{})
//
// Tests that need to simulate an absent parser build an isolated registry:
//
//	reg := codec.NewBuiltinRegistry()
//	reg.Unregister(codec.TypeTOML)
package codec

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

// Package source reads configuration documents from files.
//
// A [File] reads its file on every Load and decodes it with a
// [codec.Decoder]. It performs no caching; the parent configdoctor package
// layers caching, format detection and error classification on top.
//
// # Decoding rules
//
//   - Content must be valid UTF-8
//   - Whitespace-only content and null documents decode to an empty map
//   - The document root must be a mapping
//
// Decode failures are reported as [*DecodeError], which keeps the raw bytes
// so that callers can locate the failing line.
//
// # Example
//
//	decoder, _ := codec.GetDecoder(codec.TypeYAML)
//	doc, err := source.NewFile("config.yaml", decoder).Load(ctx)
package source

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
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"rivaas.dev/configdoctor/codec"
)

// extensionFormats maps file extensions to codec types for automatic format detection.
var extensionFormats = map[string]codec.Type{
	".yaml": codec.TypeYAML,
	".yml":  codec.TypeYAML,
	".json": codec.TypeJSON,
	".toml": codec.TypeTOML,
}

// Detector maps file extensions to formats and checks that the codec
// registry can decode the detected format.
type Detector struct {
	registry *codec.Registry
}

// NewDetector returns a Detector backed by registry.
// A nil registry means [codec.Default].
func NewDetector(registry *codec.Registry) *Detector {
	if registry == nil {
		registry = codec.Default()
	}
	return &Detector{registry: registry}
}

// Detect returns the format for an extension. The extension is matched
// case-insensitively and may be given with or without the leading dot, or as
// a full file path.
//
// It fails with [ErrUnsupportedFormat] for unknown extensions and with
// [ErrMissingCapability] when no decoder is registered for the format.
func (d *Detector) Detect(extension string) (codec.Type, error) {
	ext := normalizeExtension(extension)
	format, ok := extensionFormats[ext]
	if !ok {
		return "", &Error{
			Kind:      ErrUnsupportedFormat,
			Operation: "detect",
			Err:       fmt.Errorf("extension %q", extension),
		}
	}
	if !d.registry.HasDecoder(format) {
		return "", &Error{
			Kind:      ErrMissingCapability,
			Operation: "detect",
			Err:       fmt.Errorf("no %s decoder registered", format),
		}
	}
	return format, nil
}

// DetectFormat detects the format of an extension using the default codec registry.
//
// Example:
//
//	format, err := configdoctor.DetectFormat(".yml") // codec.TypeYAML
func DetectFormat(extension string) (codec.Type, error) {
	return NewDetector(nil).Detect(extension)
}

func normalizeExtension(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(s); ext != "" {
		return ext
	}
	if s == "" {
		return ""
	}
	return "." + s
}

// Extensions returns the sorted file extensions detected as format.
func Extensions(format codec.Type) []string {
	var exts []string
	for ext, f := range extensionFormats {
		if f == format {
			exts = append(exts, ext)
		}
	}
	slices.Sort(exts)
	return exts
}

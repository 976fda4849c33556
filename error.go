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

package configdoctor

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package wraps exactly one of
// them, so callers can branch with [errors.Is].
var (
	// ErrNotFound is returned when the configuration file does not exist.
	ErrNotFound = errors.New("config file not found")
	// ErrNotAFile is returned when the path exists but is not a regular file.
	ErrNotAFile = errors.New("config path is not a file")
	// ErrUnreadable is returned when the path cannot be inspected or read.
	ErrUnreadable = errors.New("config file unreadable")
	// ErrUnsupportedFormat is returned for file extensions with no known format.
	ErrUnsupportedFormat = errors.New("unsupported config file extension")
	// ErrMissingCapability is returned when an optional capability such as a
	// format decoder or the file watcher is not available in this build.
	ErrMissingCapability = errors.New("capability not available")
	// ErrParse is returned when file content cannot be decoded.
	ErrParse = errors.New("invalid config content")
	// ErrValidationFailed is returned when a document does not satisfy a schema.
	ErrValidationFailed = errors.New("config validation failed")
	// ErrMissingRequiredKeys is returned by [Provider.Validate].
	ErrMissingRequiredKeys = errors.New("missing required keys")
	// ErrNoSchemaProvided is returned by [Provider.Model] without [WithModel].
	ErrNoSchemaProvided = errors.New("no schema provided")
	// ErrInvalidOption is returned by [Open] when an option is rejected.
	ErrInvalidOption = errors.New("invalid option")
)

var errorCodes = map[error]string{
	ErrNotFound:            "not_found",
	ErrNotAFile:            "not_a_file",
	ErrUnreadable:          "unreadable",
	ErrUnsupportedFormat:   "unsupported_format",
	ErrMissingCapability:   "missing_capability",
	ErrParse:               "parse_error",
	ErrValidationFailed:    "validation_failed",
	ErrMissingRequiredKeys: "missing_required_keys",
	ErrNoSchemaProvided:    "no_schema_provided",
	ErrInvalidOption:       "invalid_option",
}

// Error represents a configuration error with detailed context.
// It records which file was involved, what operation was being performed,
// the error kind and, for parse errors, the offending line when known.
type Error struct {
	Kind      error    // One of the Err* sentinels
	Path      string   // The config file path (optional)
	Operation string   // The operation being performed (e.g., "open", "load", "reload", "validate")
	Line      int      // 1-based line of a parse error, 0 when unknown
	Missing   []string // Dotted key paths reported by Validate
	Err       error    // The underlying error (optional)
}

// Error returns a formatted error message with context information.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("config error")
	if e.Path != "" {
		fmt.Fprintf(&b, " in %s", e.Path)
	}
	if e.Operation != "" {
		fmt.Fprintf(&b, " during %s", e.Operation)
	}
	if e.Kind != nil {
		fmt.Fprintf(&b, ": %v", e.Kind)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	return b.String()
}

// Unwrap returns the kind and the underlying error, so that both
// errors.Is(err, ErrParse) and errors.As on the cause work.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Code returns a stable snake_case identifier of the error kind,
// suitable for logs and machine-readable CLI output.
func (e *Error) Code() string {
	if code, ok := errorCodes[e.Kind]; ok {
		return code
	}
	return "unknown"
}

// NewError creates a new Error of the given kind.
func NewError(kind error, path, operation string, err error) *Error {
	return &Error{
		Kind:      kind,
		Path:      path,
		Operation: operation,
		Err:       err,
	}
}

// newParseError creates a parse error pointing at line (0 when unknown).
func newParseError(path, operation string, line int, err error) *Error {
	return &Error{
		Kind:      ErrParse,
		Path:      path,
		Operation: operation,
		Line:      line,
		Err:       err,
	}
}

// ErrorCode returns the [Error.Code] of the first *Error in err's chain, or
// "unknown" when there is none.
func ErrorCode(err error) string {
	var cfgErr *Error
	if errors.As(err, &cfgErr) {
		return cfgErr.Code()
	}
	return "unknown"
}

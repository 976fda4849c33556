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

package dumper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rivaas.dev/configdoctor/codec"
)

// File writes a configuration document to a file.
// The write goes to a temporary file in the target directory which is then
// renamed over the target, so readers and file watchers never observe a
// partially written document.
type File struct {
	path        string
	encoder     codec.Encoder
	permissions os.FileMode
}

const (
	// DefaultFilePermissions represents the default file permissions for dumped configuration files.
	// Files are created with read/write permissions for the owner and read permissions for group and others (0644).
	DefaultFilePermissions = 0o644
)

// NewFile creates a new File dumper that writes configuration to the specified file path.
// It uses default file permissions of 0644.
// The encoder parameter determines how the configuration data is formatted.
func NewFile(path string, encoder codec.Encoder) *File {
	return &File{
		path:        path,
		encoder:     encoder,
		permissions: DefaultFilePermissions,
	}
}

// NewFileWithPermissions creates a new File dumper with custom file permissions.
// Use this when you need more restrictive permissions (e.g., 0600 for sensitive configuration).
func NewFileWithPermissions(path string, encoder codec.Encoder, permissions os.FileMode) *File {
	return &File{
		path:        path,
		encoder:     encoder,
		permissions: permissions,
	}
}

// NewFileAs creates a File dumper using the encoder registered for format
// in the default codec registry.
func NewFileAs(path string, format codec.Type) (*File, error) {
	encoder, err := codec.GetEncoder(format)
	if err != nil {
		return nil, err
	}
	return NewFile(path, encoder), nil
}

// Path returns the destination path.
func (f *File) Path() string {
	return f.path
}

// Dump encodes doc and atomically replaces the file with the result.
//
// Errors:
//   - Returns the context error if ctx is already done
//   - Returns error if encoding fails
//   - Returns error if writing to the file fails
func (f *File) Dump(ctx context.Context, doc map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.encoder == nil {
		return errors.New("dumper has no encoder")
	}
	if doc == nil {
		doc = map[string]any{}
	}

	data, err := f.encoder.Encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode values: %w", err)
	}

	if err = writeAtomic(f.path, data, f.permissions); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func writeAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

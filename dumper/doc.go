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

// Package dumper writes configuration documents back to disk.
//
// # Available Dumpers
//
//   - File: encode a document with any codec and atomically replace a file
//
// # Example
//
// Converting a loaded document to TOML:
//
//	fileDumper, err := dumper.NewFileAs("config.toml", codec.TypeTOML)
//	if err != nil {
//	    return err
//	}
//	err = fileDumper.Dump(ctx, provider.Snapshot())
//
// Creating a file dumper with custom permissions:
//
//	encoder, _ := codec.GetEncoder(codec.TypeYAML)
//	fileDumper := dumper.NewFileWithPermissions("output.yaml", encoder, 0o600)
package dumper

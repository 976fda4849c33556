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

// Package configdoctor loads a single JSON, YAML, or TOML configuration file,
// validates it, and serves typed, dot-notation lookups over the decoded document.
//
// A [Provider] owns one configuration file. Its format is detected from the
// file extension unless [WithFormat] overrides it. The decoded document is a
// map[string]any whose nested mappings are also map[string]any. Reads are
// served from an immutable snapshot, so lookups are safe from any goroutine
// while a reload swaps in a new document.
//
// # Quick Start
//
//	p, err := configdoctor.Open(ctx, "config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	port := p.Int("server.port")
//	host := p.StringOr("server.host", "localhost")
//	name := p.GetNested("app", "service", "name")
//
// # Validation
//
// Schemas run at load time and again on every reload. All schema failures are
// reported together as [ErrValidationFailed]:
//
//	p, err := configdoctor.Open(ctx, "config.json",
//	    configdoctor.WithJSONSchemaFile("config.schema.json"),
//	    configdoctor.WithValidator(func(doc map[string]any) error {
//	        if _, ok := doc["server"]; !ok {
//	            return errors.New("server section is required")
//	        }
//	        return nil
//	    }),
//	)
//
// A struct model decodes the document with the "config" tag, applies
// "default" tags, and enforces "validate" tags:
//
//	type Server struct {
//	    Host string `config:"host" default:"0.0.0.0"`
//	    Port int    `config:"port" validate:"required,min=1,max=65535"`
//	}
//
//	p, _ := configdoctor.Open(ctx, "server.toml", configdoctor.WithModel(Server{}))
//	server, err := configdoctor.AsModel[Server](p)
//
// Required keys are checked on demand and every missing key is reported:
//
//	err := p.Validate("server.port", "database.url")
//
// # Watching
//
// [WithWatch] subscribes to the file's directory and reloads on change.
// A reload that fails to parse or validate keeps the previous document and is
// routed to the [WithOnError] callback, or logged when none is set:
//
//	p, err := configdoctor.Open(ctx, "config.yaml",
//	    configdoctor.WithWatch(),
//	    configdoctor.WithOnChange(func(p *configdoctor.Provider) {
//	        slog.Info("config reloaded", "path", p.Path())
//	    }),
//	)
//	defer p.StopWatching()
//
// # Errors
//
// Every failure is an [*Error] that matches one of the sentinel kinds with
// [errors.Is] and exposes a stable [Error.Code]. Parse errors carry the line
// number when it can be determined:
//
//	var cfgErr *configdoctor.Error
//	if errors.As(err, &cfgErr) && cfgErr.Line > 0 {
//	    fmt.Print(configdoctor.LineContext(data, cfgErr.Line, 2))
//	}
//
// # Sharing
//
// [Registry] caches providers by path, format, and watch flag. [OpenCached]
// uses a process-wide registry.
package configdoctor

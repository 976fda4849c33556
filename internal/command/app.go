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

// Package command provides the command definitions for the configdoctor CLI.
//
// It uses urfave/cli/v2 for command parsing. Every command writes its
// results to the app's Writer and its logs to the app's ErrWriter, so tests
// can run the whole app against buffers.
package command

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v2"

	"rivaas.dev/configdoctor"
	"rivaas.dev/configdoctor/codec"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

const loggerKey = "logger"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:     "configdoctor",
		Usage:    "Inspect, validate, and convert configuration files",
		Version:  fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:    globalFlags(),
		Metadata: map[string]any{},
		Commands: []*cli.Command{
			CheckCommand(),
			GetCommand(),
			DumpCommand(),
			ConvertCommand(),
			WatchCommand(),
			FormatsCommand(),
		},
		Before: func(c *cli.Context) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
				return cli.Exit(fmt.Sprintf("invalid --log-level %q", c.String("log-level")), ExitUsage)
			}
			c.App.Metadata[loggerKey] = slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
			return nil
		},
		// main reports errors and picks the exit code.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// ExitCode returns the process exit code for an error returned by the app.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitFailure
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level: debug, info, warn, error",
			EnvVars: []string{"CONFIGDOCTOR_LOG_LEVEL"},
			Value:   "warn",
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Input format (json, yaml, toml); detected from the extension when empty",
	}
}

// logger returns the logger configured by the global flags.
func logger(c *cli.Context) *slog.Logger {
	if l, ok := c.App.Metadata[loggerKey].(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// openOptions builds provider options shared by all commands that open a file.
func openOptions(c *cli.Context) []configdoctor.Option {
	opts := []configdoctor.Option{configdoctor.WithLogger(logger(c))}
	if format := c.String("format"); format != "" {
		opts = append(opts, configdoctor.WithFormat(codec.Type(strings.ToLower(format))))
	}
	return opts
}

// encoder resolves an output format name.
func encoder(name string) (codec.Encoder, error) {
	enc, err := codec.GetEncoder(codec.Type(strings.ToLower(name)))
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("unknown output format %q", name), ExitUsage)
	}
	return enc, nil
}

// usageError reports missing or extra positional arguments.
func usageError(c *cli.Context, want string) error {
	return cli.Exit(fmt.Sprintf("usage: %s %s %s", c.App.Name, c.Command.Name, want), ExitUsage)
}

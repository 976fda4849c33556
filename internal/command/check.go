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

package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"rivaas.dev/configdoctor"
)

// CheckCommand returns the check command.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Load and validate configuration files",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.StringFlag{
				Name:    "schema",
				Aliases: []string{"s"},
				Usage:   "JSON Schema file every document must satisfy",
			},
			&cli.StringSliceFlag{
				Name:    "require",
				Aliases: []string{"r"},
				Usage:   "Dotted key that must be present (repeatable)",
			},
			&cli.IntFlag{
				Name:  "context",
				Usage: "Lines of context shown around a parse error",
				Value: 2,
			},
		},
		Action: runCheck,
	}
}

func runCheck(c *cli.Context) error {
	if c.NArg() == 0 {
		return usageError(c, "FILE...")
	}

	opts := openOptions(c)
	if schemaPath := c.String("schema"); schemaPath != "" {
		schema, err := configdoctor.CompileJSONSchemaFile(schemaPath)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid --schema: %v", err), ExitUsage)
		}
		opts = append(opts, configdoctor.WithSchema(schema))
	}

	failed := 0
	for _, path := range c.Args().Slice() {
		if err := checkFile(c, path, opts); err != nil {
			failed++
			renderError(c.App.Writer, path, err, c.Int("context"))
			continue
		}
		fmt.Fprintf(c.App.Writer, "ok   %s\n", path)
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d files failed", failed, c.NArg()), ExitFailure)
	}
	return nil
}

func checkFile(c *cli.Context, path string, opts []configdoctor.Option) error {
	p, err := configdoctor.Open(c.Context, path, opts...)
	if err != nil {
		return err
	}
	logger(c).Debug("configuration loaded", "path", p.Path(), "format", p.Format())

	if required := c.StringSlice("require"); len(required) > 0 {
		return p.Validate(required...)
	}
	return nil
}

// renderError prints a failed check with its stable code and, for parse
// errors with a known line, the surrounding source lines.
func renderError(w io.Writer, path string, err error, radius int) {
	fmt.Fprintf(w, "FAIL %s [%s]\n", path, configdoctor.ErrorCode(err))
	fmt.Fprintf(w, "     %v\n", err)

	var cfgErr *configdoctor.Error
	if !errors.As(err, &cfgErr) || cfgErr.Line <= 0 {
		return
	}
	source := cfgErr.Path
	if source == "" {
		source = path
	}
	data, readErr := os.ReadFile(source)
	if readErr != nil {
		return
	}
	for _, line := range strings.SplitAfter(configdoctor.LineContext(data, cfgErr.Line, radius), "\n") {
		if line != "" {
			fmt.Fprintf(w, "     %s", line)
		}
	}
}

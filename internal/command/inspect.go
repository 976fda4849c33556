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
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"rivaas.dev/configdoctor"
	"rivaas.dev/configdoctor/codec"
)

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print the value at a dotted key",
		ArgsUsage: "FILE KEY",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format for the value: text, json, yaml",
				Value:   "text",
			},
		},
		Action: runGet,
	}
}

func runGet(c *cli.Context) error {
	if c.NArg() != 2 {
		return usageError(c, "FILE KEY")
	}
	path, key := c.Args().Get(0), c.Args().Get(1)

	p, err := configdoctor.Open(c.Context, path, openOptions(c)...)
	if err != nil {
		return cli.Exit(err.Error(), ExitFailure)
	}

	value, ok := p.Lookup(strings.Split(key, ".")...)
	if !ok {
		return cli.Exit(fmt.Sprintf("key %q not found in %s", key, path), ExitFailure)
	}

	output := c.String("output")
	if output == "text" {
		switch value.(type) {
		case map[string]any, []any:
			output = codec.TypeYAML.String()
		default:
			fmt.Fprintln(c.App.Writer, value)
			return nil
		}
	}

	return encodeTo(c, output, value)
}

// DumpCommand returns the dump command.
func DumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "Print the decoded document, optionally re-encoded",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format: json, yaml, toml; defaults to the input format",
			},
		},
		Action: runDump,
	}
}

func runDump(c *cli.Context) error {
	if c.NArg() != 1 {
		return usageError(c, "FILE")
	}

	p, err := configdoctor.Open(c.Context, c.Args().First(), openOptions(c)...)
	if err != nil {
		return cli.Exit(err.Error(), ExitFailure)
	}

	output := c.String("output")
	if output == "" {
		output = p.Format().String()
	}
	return encodeTo(c, output, p.Snapshot())
}

func encodeTo(c *cli.Context, output string, value any) error {
	enc, err := encoder(output)
	if err != nil {
		return err
	}
	data, err := enc.Encode(value)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to encode as %s: %v", output, err), ExitFailure)
	}
	if _, err = c.App.Writer.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err = fmt.Fprintln(c.App.Writer)
	}
	return err
}

// FormatsCommand returns the formats command.
func FormatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "formats",
		Usage: "List the formats that can be read",
		Action: func(c *cli.Context) error {
			for _, format := range codec.Default().Decoders() {
				exts := configdoctor.Extensions(format)
				if len(exts) == 0 {
					exts = []string{"-"}
				}
				fmt.Fprintf(c.App.Writer, "%-5s %s\n", format, strings.Join(exts, " "))
			}
			return nil
		},
	}
}

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
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"rivaas.dev/configdoctor"
	"rivaas.dev/configdoctor/codec"
	"rivaas.dev/configdoctor/dumper"
)

// ConvertCommand returns the convert command.
func ConvertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Rewrite a configuration file in another format",
		ArgsUsage: "IN OUT",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.StringFlag{
				Name:    "to",
				Aliases: []string{"t"},
				Usage:   "Output format; detected from OUT's extension when empty",
			},
		},
		Action: runConvert,
	}
}

func runConvert(c *cli.Context) error {
	if c.NArg() != 2 {
		return usageError(c, "IN OUT")
	}
	in, out := c.Args().Get(0), c.Args().Get(1)

	var to codec.Type
	if name := c.String("to"); name != "" {
		to = codec.Type(strings.ToLower(name))
	} else {
		detected, err := configdoctor.DetectFormat(filepath.Ext(out))
		if err != nil {
			return cli.Exit(fmt.Sprintf("cannot detect output format of %s; use --to", out), ExitUsage)
		}
		to = detected
	}

	fileDumper, err := dumper.NewFileAs(out, to)
	if err != nil {
		return cli.Exit(fmt.Sprintf("unknown output format %q", to), ExitUsage)
	}

	p, err := configdoctor.Open(c.Context, in, openOptions(c)...)
	if err != nil {
		return cli.Exit(err.Error(), ExitFailure)
	}

	if err = fileDumper.Dump(c.Context, p.Snapshot()); err != nil {
		return cli.Exit(err.Error(), ExitFailure)
	}

	logger(c).Info("configuration converted", "from", p.Path(), "to", fileDumper.Path(), "format", to)
	fmt.Fprintf(c.App.Writer, "%s (%s) -> %s (%s)\n", in, p.Format(), out, to)
	return nil
}

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
	"sync"

	"github.com/urfave/cli/v2"

	"rivaas.dev/configdoctor"
)

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Reload a configuration file on every change until interrupted",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.StringSliceFlag{
				Name:    "require",
				Aliases: []string{"r"},
				Usage:   "Dotted key that must be present after every reload (repeatable)",
			},
		},
		Action: runWatch,
	}
}

func runWatch(c *cli.Context) error {
	if c.NArg() != 1 {
		return usageError(c, "FILE")
	}
	path := c.Args().First()
	required := c.StringSlice("require")

	// Callbacks run on the watcher goroutine.
	var mu sync.Mutex
	printf := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(c.App.Writer, format, args...)
	}

	opts := append(openOptions(c),
		configdoctor.WithWatch(),
		configdoctor.WithOnChange(func(p *configdoctor.Provider) {
			if err := p.Validate(required...); err != nil {
				printf("invalid  %s [%s] %v\n", p.Path(), configdoctor.ErrorCode(err), err)
				return
			}
			printf("reloaded %s\n", p.Path())
		}),
		configdoctor.WithOnError(func(p *configdoctor.Provider, err error) {
			printf("failed   %s [%s] %v\n", p.Path(), configdoctor.ErrorCode(err), err)
		}),
	)

	p, err := configdoctor.Open(c.Context, path, opts...)
	if err != nil {
		return cli.Exit(err.Error(), ExitFailure)
	}
	defer func() { _ = p.StopWatching() }()

	printf("watching %s (%s)\n", p.Path(), p.Format())
	<-c.Context.Done()
	return nil
}

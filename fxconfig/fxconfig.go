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

package fxconfig

import (
	"context"
	"errors"
	"log/slog"

	"go.uber.org/fx"

	"rivaas.dev/configdoctor"
)

// ErrEmptyPath is returned by [Module] when no configuration path is given.
var ErrEmptyPath = errors.New("configuration path cannot be empty")

// Params are the optional dependencies [Module] draws from the container.
type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *slog.Logger `optional:"true"`
}

// Module creates an Fx module that provides a [*configdoctor.Provider] for path.
// The provider is opened when first requested and stops watching when the
// application stops. A *slog.Logger in the container is used unless opts
// set one.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func Module(path string, opts ...configdoctor.Option) fx.Option {
	if path == "" {
		return fx.Error(ErrEmptyPath)
	}

	return fx.Module("configdoctor",
		fx.Provide(func(params Params) (*configdoctor.Provider, error) {
			all := opts
			if params.Logger != nil {
				all = append([]configdoctor.Option{configdoctor.WithLogger(params.Logger)}, opts...)
			}

			p, err := configdoctor.Open(context.Background(), path, all...)
			if err != nil {
				return nil, err
			}

			params.Lifecycle.Append(fx.Hook{
				OnStop: func(context.Context) error {
					return p.StopWatching()
				},
			})

			return p, nil
		}),
	)
}

// Model provides *T decoded from the provider's current document with the
// same defaults and tag validation as [configdoctor.WithModel].
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func Model[T any]() fx.Option {
	return fx.Provide(configdoctor.AsModel[T])
}

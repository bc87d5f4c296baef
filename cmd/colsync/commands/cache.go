// Copyright 2025 walteh LLC
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

package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/walteh/colsync/cmd/colsync/opts"
	"github.com/walteh/colsync/pkg/cache"
	"github.com/walteh/colsync/pkg/config"
	"github.com/walteh/colsync/pkg/log"
	"github.com/walteh/colsync/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// localOnly keeps the cache commands usable without remote credentials
func localOnly(cfg *config.Config) {
	cfg.Sync.Enabled = false
}

// NewCacheCmd creates the commands inspecting the sync cache
func NewCacheCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the sync cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show cached remote identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := o.Resolve(ctx, localOnly)
			if err != nil {
				return err
			}

			c := cache.Load(ctx, o.Fs, cfg.Sync.CacheFile)
			settings := make([]log.Setting, 0, len(c.Keys()))
			for _, key := range c.Keys() {
				r, _ := c.Get(key)
				data, err := json.Marshal(r)
				if err != nil {
					return errors.Errorf("encoding cache record %q: %w", key, err)
				}
				settings = append(settings, log.Setting{Key: key, Value: string(data)})
			}

			if len(settings) == 0 {
				o.UserLogger.LogStateChange("Sync cache " + c.Path() + " is empty")
				return nil
			}
			o.UserLogger.LogSettings("Sync cache "+c.Path(), settings)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the sync cache so the next sync resolves collections by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := o.Resolve(ctx, localOnly)
			if err != nil {
				return err
			}

			op := operation.NewCleanOperation(operation.Options{
				Config:  cfg,
				Fs:      o.Fs,
				Cache:   cache.Load(ctx, o.Fs, cfg.Sync.CacheFile),
				Console: o.Console,
			})
			return operation.NewRunner(nil).Run(ctx, &operation.Run{}, op)
		},
	})

	return cmd
}

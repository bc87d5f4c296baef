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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/colsync/cmd/colsync/opts"
	"github.com/walteh/colsync/pkg/config"
	"github.com/walteh/colsync/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

type runFlags struct {
	source     string
	output     string
	groupName  string
	postmanUID string
	workspace  string
	noSync     bool
	newman     bool
	newmanURL  string
}

func (f *runFlags) apply(cfg *config.Config) {
	if f.source != "" {
		cfg.Source = f.source
	}
	if f.output != "" {
		cfg.Output = f.output
	}
	if f.groupName != "" {
		cfg.GroupName = f.groupName
	}
	if f.postmanUID != "" {
		cfg.Sync.PostmanUID = f.postmanUID
	}
	if f.workspace != "" {
		cfg.Sync.WorkspaceName = f.workspace
	}
	if f.noSync {
		cfg.Sync.Enabled = false
	}
	if f.newman {
		cfg.Newman.Enabled = true
	}
	if f.newmanURL != "" {
		cfg.Newman.BaseURL = f.newmanURL
	}
}

// NewRunCmd creates the command running the whole pipeline
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Bundle contract tests, write the collection and sync it",
		Long: `Run loads the source collection and:
1. Moves the configured contract tests into their own group
2. Applies text replacements
3. Writes the collection to the output file
4. Runs the written collection with newman when enabled
5. Creates or updates the remote collection when sync is enabled`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "run").Logger().WithContext(cmd.Context())

			cfg, err := o.Resolve(ctx, flags.apply)
			if err != nil {
				return err
			}
			o.UserLogger.LogSettings("Run settings", opts.Settings(cfg))

			popts, err := o.OperationOptions(ctx, cfg)
			if err != nil {
				return err
			}

			ops, err := operation.Pipeline(popts)
			if err != nil {
				return errors.Errorf("building pipeline: %w", err)
			}

			o.Console.Header("bundling " + cfg.Source)
			if err := operation.NewRunner(zerolog.Ctx(ctx)).Run(ctx, &operation.Run{}, ops...); err != nil {
				return err
			}

			o.Console.Success("collection ready")
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.source, "source", "s", "", "source collection location (path, http(s):// or github://owner/repo/path@ref)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output collection file (.json)")
	cmd.Flags().StringVar(&flags.groupName, "group-name", "", "name of the contract tests group")
	cmd.Flags().StringVar(&flags.postmanUID, "postman-uid", "", "update this remote collection instead of resolving by name")
	cmd.Flags().StringVar(&flags.workspace, "workspace", "", "remote workspace name")
	cmd.Flags().BoolVar(&flags.noSync, "no-sync", false, "skip syncing to the remote store")
	cmd.Flags().BoolVar(&flags.newman, "newman", false, "run the written collection with newman before syncing")
	cmd.Flags().StringVar(&flags.newmanURL, "newman-base-url", "", "baseUrl passed to newman")

	return cmd
}

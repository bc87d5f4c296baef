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

// NewUploadCmd creates the command syncing an already written collection
func NewUploadCmd(o *opts.RootOpts) *cobra.Command {
	var (
		postmanUID string
		workspace  string
	)

	cmd := &cobra.Command{
		Use:   "upload <collection.json>",
		Short: "Sync an existing collection file without transforming it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "upload").Logger().WithContext(cmd.Context())

			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return errors.Errorf("%w: upload needs the path of a collection file", config.ErrInvalid)
			}

			cfg, err := o.Resolve(ctx, func(cfg *config.Config) {
				cfg.Sync.Enabled = true
				if postmanUID != "" {
					cfg.Sync.PostmanUID = postmanUID
				}
				if workspace != "" {
					cfg.Sync.WorkspaceName = workspace
				}
			})
			if err != nil {
				return err
			}

			popts, err := o.OperationOptions(ctx, cfg)
			if err != nil {
				return err
			}

			ops, err := operation.UploadPipeline(popts)
			if err != nil {
				return errors.Errorf("building pipeline: %w", err)
			}

			o.Console.Header("uploading " + path)
			if err := operation.NewRunner(zerolog.Ctx(ctx)).Run(ctx, &operation.Run{Location: path}, ops...); err != nil {
				return err
			}

			o.Console.Success("collection uploaded")
			return nil
		},
	}

	cmd.Flags().StringVar(&postmanUID, "postman-uid", "", "update this remote collection instead of resolving by name")
	cmd.Flags().StringVar(&workspace, "workspace", "", "remote workspace name")

	return cmd
}

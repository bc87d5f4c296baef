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

package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/colsync/cmd/colsync/commands"
	"github.com/walteh/colsync/cmd/colsync/opts"
	"github.com/walteh/colsync/pkg/log"
)

// newRootCmd wires every subcommand to the shared options
func newRootCmd(o *opts.RootOpts) *cobra.Command {
	root := &cobra.Command{
		Use:   "colsync",
		Short: "Bundle contract tests in a Postman collection and keep it in sync",
		Long: `colsync moves the contract tests of a Postman collection into a dedicated
group, writes the result to disk and creates or updates the matching remote
collection, remembering remote ids in a local cache.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(o)
		},
	}

	addRootFlags(root, o)

	root.AddCommand(
		commands.NewRunCmd(o),
		commands.NewUploadCmd(o),
		commands.NewCacheCmd(o),
		newVersionCmd(),
	)

	return root
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "config file path (default: first of .colsync.{yaml,yml,hcl,json})")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringSliceVar(&o.EnvFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
}

// setupLogging configures zerolog based on flags
func setupLogging(o *opts.RootOpts) {
	level := zerolog.InfoLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if o.Console == nil {
		mirror := zerolog.Disabled
		if o.Debug {
			mirror = zerolog.DebugLevel
		}
		o.Console = log.New(os.Stdout, mirror)
	}
}

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
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/colsync/cmd/colsync/opts"
	"github.com/walteh/colsync/pkg/log"

	_ "github.com/walteh/colsync/pkg/provider/github"
	_ "github.com/walteh/colsync/pkg/remote/postman"
)

func main() {
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	o := &opts.RootOpts{
		Fs:         afero.NewOsFs(),
		UserLogger: log.NewUserLogger(ctx, os.Stdout),
	}

	os.Exit(execute(ctx, o, os.Args[1:]))
}

// execute runs the command line and returns the process exit code
func execute(ctx context.Context, o *opts.RootOpts, args []string) int {
	root := newRootCmd(o)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		o.UserLogger.LogFatal(err)
		return 1
	}
	return 0
}

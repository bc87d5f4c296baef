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

package operation

import (
	"context"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// CommandRunner runs an external program and returns its combined output
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecCommand runs name through os/exec
func ExecCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// 🧪 NewNewmanOperation runs the written collection with newman. A failing
// run stops the pipeline before anything is published.
func NewNewmanOperation(opts Options) Operation {
	return &newmanOperation{BaseOperation: NewBaseOperation(opts)}
}

type newmanOperation struct {
	BaseOperation
}

func (op *newmanOperation) Name() string { return "newman" }

func (op *newmanOperation) Execute(ctx context.Context, run *Run) error {
	logger := zerolog.Ctx(ctx)

	if run.File == nil {
		return errors.New("newman needs the collection written to a file first")
	}

	cfg := op.Config.Newman
	command := cfg.Command
	if command == "" {
		command = "newman"
	}
	args := newmanArgs(run.File.Path, cfg.BaseURL, cfg.IterationData, cfg.Args)

	if op.Console != nil {
		target := cfg.BaseURL
		if target == "" {
			target = "collection defaults"
		}
		op.Console.Infof("Run Newman against: %s", target)
	}
	logger.Debug().Str("command", command).Strs("args", args).Msg("running newman")

	runner := op.Commands
	if runner == nil {
		runner = ExecCommand
	}

	out, err := runner(ctx, command, args...)
	if err != nil {
		if op.Console != nil {
			op.Console.Error("Newman run failed")
		}
		if detail := strings.TrimSpace(string(out)); detail != "" {
			return errors.Errorf("newman run failed: %w\n%s", err, detail)
		}
		return errors.Errorf("newman run failed: %w", err)
	}

	logger.Info().Str("path", run.File.Path).Msg("newman run passed")
	return nil
}

func newmanArgs(path, baseURL, iterationData string, extra []string) []string {
	args := []string{"run", path}
	if baseURL != "" {
		args = append(args, "--env-var", "baseUrl="+baseURL)
	}
	if iterationData != "" {
		args = append(args, "--iteration-data", iterationData)
	}
	return append(args, extra...)
}

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

	"github.com/walteh/colsync/pkg/log"
	"github.com/walteh/colsync/pkg/status"
)

// 💾 NewWriteOperation writes the collection to the configured output file
func NewWriteOperation(opts Options) Operation {
	return &writeOperation{
		BaseOperation: NewBaseOperation(opts),
		statusMgr:     status.New(opts.Fs),
	}
}

type writeOperation struct {
	BaseOperation
	statusMgr *status.Manager
}

func (op *writeOperation) Name() string { return "write" }

func (op *writeOperation) Execute(ctx context.Context, run *Run) error {
	out, err := run.output()
	if err != nil {
		return err
	}

	info, err := op.statusMgr.WriteOutput(ctx, op.Config.Output, out)
	if err != nil {
		return err
	}
	run.File = info

	if op.Console != nil {
		op.Console.LogFileOperation(ctx, log.FileOperation{
			Info:         info,
			Type:         "collection",
			Replacements: run.Replacements,
		})
	}
	return nil
}

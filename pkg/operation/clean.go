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

	"gitlab.com/tozd/go/errors"
)

// 🧹 NewCleanOperation removes the sync cache so the next run resolves every collection again
func NewCleanOperation(opts Options) Operation {
	return &cleanOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

type cleanOperation struct {
	BaseOperation
}

func (op *cleanOperation) Name() string { return "clean" }

// 🏃 Execute runs the clean operation
func (op *cleanOperation) Execute(ctx context.Context, run *Run) error {
	if op.Cache == nil {
		return errors.New("sync cache is required")
	}

	if err := op.Cache.Clear(ctx); err != nil {
		return errors.Errorf("clearing sync cache: %w", err)
	}

	if op.Console != nil {
		op.Console.Successf("Removed sync cache %s", op.Cache.Path())
	}
	return nil
}

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
	"bytes"
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/colsync/pkg/classify"
	"github.com/walteh/colsync/pkg/collection"
	"github.com/walteh/colsync/pkg/provider"
	"github.com/walteh/colsync/pkg/regroup"
	"github.com/walteh/colsync/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 📥 NewLoadOperation fetches and decodes the source collection
func NewLoadOperation(opts Options) Operation {
	return &loadOperation{BaseOperation: NewBaseOperation(opts)}
}

type loadOperation struct {
	BaseOperation
}

func (op *loadOperation) Name() string { return "load" }

func (op *loadOperation) Execute(ctx context.Context, run *Run) error {
	location := run.Location
	if location == "" {
		location = op.Config.Source
	}
	if location == "" {
		return errors.New("no source collection configured")
	}

	popts := op.Provider
	if popts.Fs == nil {
		popts.Fs = op.Fs
	}

	data, err := provider.Fetch(ctx, location, popts)
	if err != nil {
		return err
	}

	tree, err := collection.Decode(data)
	if err != nil {
		return errors.Errorf("decoding %s: %w", location, err)
	}

	run.Location = location
	run.Document = data
	run.Tree = tree
	run.Output = nil

	zerolog.Ctx(ctx).Debug().
		Str("collection", tree.Name()).
		Int("leaves", len(tree.Leaves())).
		Msg("loaded collection")
	return nil
}

// 🏷️ NewTagOperation marks the configured contract tests
func NewTagOperation(opts Options) Operation {
	return &tagOperation{BaseOperation: NewBaseOperation(opts)}
}

type tagOperation struct {
	BaseOperation
}

func (op *tagOperation) Name() string { return "tag" }

func (op *tagOperation) Execute(ctx context.Context, run *Run) error {
	tagged, err := classify.Tag(ctx, run.Tree, classify.ContractTag, op.Config.ContractTests)
	if err != nil {
		return err
	}
	run.Tree = tagged
	run.Output = nil
	return nil
}

// 📁 NewRegroupOperation moves contract tests into their own group
func NewRegroupOperation(opts Options) Operation {
	return &regroupOperation{BaseOperation: NewBaseOperation(opts)}
}

type regroupOperation struct {
	BaseOperation
}

func (op *regroupOperation) Name() string { return "regroup" }

func (op *regroupOperation) Execute(ctx context.Context, run *Run) error {
	grouped, err := regroup.Regroup(ctx, run.Tree, classify.HasClassification(classify.ContractTag), op.Config.GroupName)
	if err != nil {
		return err
	}
	run.Tree = grouped
	run.Output = nil
	return nil
}

// 🔄 NewReplaceOperation applies raw text replacements to the encoded collection
func NewReplaceOperation(opts Options) Operation {
	return &replaceOperation{
		BaseOperation: NewBaseOperation(opts),
		replacer:      text.NewSimpleTextReplacer(),
	}
}

type replaceOperation struct {
	BaseOperation
	replacer text.TextReplacer
}

func (op *replaceOperation) Name() string { return "replace" }

func (op *replaceOperation) Execute(ctx context.Context, run *Run) error {
	encoded, err := run.Tree.Encode()
	if err != nil {
		return errors.Errorf("encoding collection: %w", err)
	}

	res, err := op.replacer.ReplaceText(ctx, bytes.NewReader(encoded), op.Config.Replacements)
	if err != nil {
		return errors.Errorf("applying replacements: %w", err)
	}

	run.Replacements = res.ReplacementCount
	if !res.WasModified {
		run.Output = encoded
		return nil
	}

	// later stages must see the replaced content
	tree, err := collection.Decode(res.ModifiedContent)
	if err != nil {
		return errors.Errorf("decoding replaced collection: %w", err)
	}
	out, err := tree.Encode()
	if err != nil {
		return errors.Errorf("encoding replaced collection: %w", err)
	}

	run.Tree = tree
	run.Output = out
	return nil
}

// output returns the encoded collection, encoding the tree when no stage did yet
func (run *Run) output() ([]byte, error) {
	if run.Output != nil {
		return run.Output, nil
	}
	if run.Tree == nil {
		return nil, errors.New("no collection loaded")
	}
	out, err := run.Tree.Encode()
	if err != nil {
		return nil, errors.Errorf("encoding collection: %w", err)
	}
	run.Output = out
	return out, nil
}

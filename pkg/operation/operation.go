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

	"github.com/spf13/afero"
	"github.com/walteh/colsync/pkg/cache"
	"github.com/walteh/colsync/pkg/collection"
	"github.com/walteh/colsync/pkg/config"
	"github.com/walteh/colsync/pkg/log"
	"github.com/walteh/colsync/pkg/provider"
	"github.com/walteh/colsync/pkg/remote"
	"github.com/walteh/colsync/pkg/status"
	"github.com/walteh/colsync/pkg/syncer"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operation is one stage of a run
type Operation interface {
	// Name identifies the stage in logs and errors
	Name() string
	// Execute advances the run
	Execute(ctx context.Context, run *Run) error
}

// 📦 Run is the state threaded through the stages. Each stage replaces Tree
// instead of mutating it.
type Run struct {
	// Location is where the source document is fetched from
	Location string
	// Document is the raw source document
	Document []byte
	// Tree is the current collection
	Tree *collection.Collection
	// Output is the encoded collection that gets written and published
	Output []byte
	// Replacements counts raw text replacements applied to Output
	Replacements int
	// File describes the written output file
	File *status.FileInfo
	// Result is the published remote identity
	Result *syncer.Result
}

// 🔧 Options contains the dependencies shared by every stage
type Options struct {
	// Config is the resolved configuration
	Config *config.Config
	// Fs backs the output file
	Fs afero.Fs
	// Provider configures source fetching
	Provider provider.Options
	// Store is the remote store, required when sync is enabled
	Store remote.Store
	// Cache maps local names to remote ids, required when sync is enabled
	Cache *cache.Cache
	// Console receives user facing progress lines, may be nil
	Console *log.Logger
	// Commands runs external programs, defaults to ExecCommand
	Commands CommandRunner
}

// 🧱 BaseOperation holds the options every stage needs
type BaseOperation struct {
	Options
}

// 🏭 NewBaseOperation creates a new base operation
func NewBaseOperation(opts Options) BaseOperation {
	return BaseOperation{Options: opts}
}

// Validate checks the options a pipeline needs
func (o Options) Validate() error {
	if o.Config == nil {
		return errors.New("config is required")
	}
	if o.Fs == nil {
		return errors.New("filesystem is required")
	}
	if o.Config.Newman.Enabled && o.Config.Output == "" {
		return errors.Errorf("%w: newman needs an output file to run", config.ErrInvalid)
	}
	if o.Config.Sync.Enabled {
		if o.Store == nil {
			return errors.New("remote store is required when sync is enabled")
		}
		if o.Cache == nil {
			return errors.New("sync cache is required when sync is enabled")
		}
	}
	return nil
}

// 🚀 Pipeline returns the stages of a full run: load, tag, regroup, replace, write, newman and sync
func Pipeline(opts Options) ([]Operation, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ops := []Operation{NewLoadOperation(opts)}
	if len(opts.Config.ContractTests) > 0 {
		ops = append(ops, NewTagOperation(opts), NewRegroupOperation(opts))
	}
	if len(opts.Config.Replacements) > 0 {
		ops = append(ops, NewReplaceOperation(opts))
	}
	if opts.Config.Output != "" {
		ops = append(ops, NewWriteOperation(opts))
		if opts.Config.Newman.Enabled {
			ops = append(ops, NewNewmanOperation(opts))
		}
	}
	if opts.Config.Sync.Enabled {
		ops = append(ops, NewSyncOperation(opts))
	}
	return ops, nil
}

// 📤 UploadPipeline returns the stages that publish an already written collection file
func UploadPipeline(opts Options) ([]Operation, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if !opts.Config.Sync.Enabled {
		return nil, errors.Errorf("%w: upload requires sync to be enabled", config.ErrInvalid)
	}
	return []Operation{NewLoadOperation(opts), NewSyncOperation(opts)}, nil
}

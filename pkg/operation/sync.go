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

	"github.com/rs/zerolog"
	"github.com/walteh/colsync/pkg/log"
	"github.com/walteh/colsync/pkg/syncer"
	"gitlab.com/tozd/go/errors"
)

// 🚀 NewSyncOperation publishes the collection to the remote store
func NewSyncOperation(opts Options) Operation {
	return &syncOperation{BaseOperation: NewBaseOperation(opts)}
}

type syncOperation struct {
	BaseOperation
}

func (op *syncOperation) Name() string { return "sync" }

func (op *syncOperation) Execute(ctx context.Context, run *Run) error {
	logger := zerolog.Ctx(ctx)

	if op.Store == nil || op.Cache == nil {
		return errors.New("sync requires a remote store and a cache")
	}

	if run.Tree == nil {
		return errors.New("no collection loaded")
	}

	out, err := run.output()
	if err != nil {
		return err
	}

	name := run.Tree.Name()
	if op.Console != nil {
		op.Console.StartSyncOperation(ctx, log.SyncOperation{
			Name:      name,
			Store:     op.Config.Sync.Store,
			Workspace: op.Config.Sync.WorkspaceName,
			Override:  op.Config.Sync.PostmanUID,
		})
	}

	s := syncer.New(op.Store, op.Cache, syncer.Options{
		CollectionUID: op.Config.Sync.PostmanUID,
		WorkspaceName: op.Config.Sync.WorkspaceName,
	})

	res, err := s.SyncDocument(ctx, name, out)
	if err != nil {
		return err
	}
	run.Result = res

	logger.Info().
		Str("collection", res.Name).
		Str("uid", res.UID).
		Bool("created", res.Created).
		Int("attempts", res.Attempts).
		Msg("collection synced")

	if op.Console != nil {
		op.Console.EndSyncOperation(ctx, log.SyncResult{
			Name:    res.Name,
			UID:     res.UID,
			Created: res.Created,
		})
	}
	return nil
}

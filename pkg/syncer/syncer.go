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

// Package syncer publishes a collection to a remote store, creating it on
// first sync and updating it afterward.
package syncer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/colsync/pkg/cache"
	"github.com/walteh/colsync/pkg/collection"
	"github.com/walteh/colsync/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// maxRetries bounds how often a rejected update re-resolves the collection
const maxRetries = 1

// Options are the read-only inputs of a sync
type Options struct {
	// CollectionUID targets a fixed remote collection, skipping name resolution
	CollectionUID string
	// WorkspaceName scopes lookups and creation to a workspace
	WorkspaceName string
}

// ✅ Result describes the published collection
type Result struct {
	Name        string
	UID         string
	WorkspaceID string
	Created     bool
	Attempts    int
}

// ❌ FatalError is a push the remote store refused for good
type FatalError struct {
	Reason    string
	Solution  string
	LocalName string
	RemoteUID string
	APIError  *remote.APIError
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("syncing %q (uid %q): %s", e.LocalName, e.RemoteUID, e.Reason)
}

type state int

const (
	stateResolveWorkspace state = iota
	stateResolveCollection
	statePush
	stateInterpret
	stateRetry
	stateDone
)

func (s state) String() string {
	switch s {
	case stateResolveWorkspace:
		return "resolve_workspace"
	case stateResolveCollection:
		return "resolve_collection"
	case statePush:
		return "push"
	case stateInterpret:
		return "interpret"
	case stateRetry:
		return "retry"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

type mode int

const (
	modeCreate mode = iota
	modeUpdate
	modeOverride
)

// 🔄 Syncer runs the sync protocol against one store and cache
type Syncer struct {
	store remote.Store
	cache *cache.Cache
	opts  Options
}

// 🏭 New creates a syncer
func New(store remote.Store, c *cache.Cache, opts Options) *Syncer {
	return &Syncer{
		store: store,
		cache: c,
		opts:  opts,
	}
}

// run holds the progress of one sync
type run struct {
	name        string
	doc         []byte
	workspaceID string
	uid         string
	mode        mode
	resp        *remote.PushResponse
	retries     int
	attempts    int
	result      *Result
}

// 🚀 Sync publishes tree and records its remote identity in the cache
func (s *Syncer) Sync(ctx context.Context, tree *collection.Collection) (*Result, error) {
	if tree == nil {
		return nil, errors.New("sync: collection is required")
	}
	doc, err := tree.Encode()
	if err != nil {
		return nil, errors.Errorf("sync: encoding collection: %w", err)
	}
	return s.SyncDocument(ctx, tree.Name(), doc)
}

// SyncDocument publishes an already encoded document under its local name
func (s *Syncer) SyncDocument(ctx context.Context, name string, doc []byte) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	if name == "" {
		return nil, errors.New("sync: collection name is required")
	}

	r := &run{name: name, doc: doc}

	st := stateResolveWorkspace
	for st != stateDone {
		logger.Debug().Str("state", st.String()).Str("collection", name).Msg("sync state")

		var err error
		switch st {
		case stateResolveWorkspace:
			st, err = s.resolveWorkspace(ctx, r)
		case stateResolveCollection:
			st, err = s.resolveCollection(ctx, r)
		case statePush:
			st, err = s.push(ctx, r)
		case stateInterpret:
			st, err = s.interpret(ctx, r)
		case stateRetry:
			r.retries++
			logger.Info().Str("collection", name).Msg("🔁 remote collection rejected the update, resolving again")
			st = stateResolveCollection
		default:
			err = errors.Errorf("sync: unexpected state %d", st)
		}
		if err != nil {
			return nil, err
		}
	}

	return r.result, nil
}

func (s *Syncer) resolveWorkspace(ctx context.Context, r *run) (state, error) {
	logger := zerolog.Ctx(ctx)

	if s.opts.WorkspaceName == "" {
		s.cache.Invalidate(cache.WorkspaceKey)
		return stateResolveCollection, nil
	}

	if ws := s.cache.Workspace(); ws != nil && ws.ID != "" && ws.Name == s.opts.WorkspaceName {
		r.workspaceID = ws.ID
		logger.Debug().Str("workspace_id", ws.ID).Msg("using cached workspace")
		return stateResolveCollection, nil
	}

	found, err := s.store.FindWorkspaceByName(ctx, s.opts.WorkspaceName)
	if err != nil {
		return stateDone, errors.Errorf("sync: finding workspace %q: %w", s.opts.WorkspaceName, err)
	}
	if found == nil || found.ID == "" {
		s.cache.Invalidate(cache.WorkspaceKey)
		logger.Warn().Str("workspace", s.opts.WorkspaceName).Msg("workspace not found, using the default workspace")
		return stateResolveCollection, nil
	}

	r.workspaceID = found.ID
	s.cache.PutWorkspace(cache.Workspace{ID: found.ID, Name: found.Name, Type: found.Type})
	return stateResolveCollection, nil
}

func (s *Syncer) resolveCollection(ctx context.Context, r *run) (state, error) {
	logger := zerolog.Ctx(ctx)

	if s.opts.CollectionUID != "" {
		r.uid = s.opts.CollectionUID
		r.mode = modeOverride
		return statePush, nil
	}

	if cached := s.cache.Collection(r.name); cached != nil && cached.UID != "" {
		r.uid = cached.UID
		r.mode = modeUpdate
		logger.Debug().Str("uid", cached.UID).Msg("using cached collection")
		return statePush, nil
	}

	var (
		found *remote.CollectionHandle
		err   error
	)
	if r.workspaceID != "" {
		found, err = s.store.FindWorkspaceCollectionByName(ctx, r.workspaceID, r.name)
	} else {
		found, err = s.store.FindCollectionByName(ctx, r.name)
	}
	if err != nil {
		return stateDone, errors.Errorf("sync: finding collection %q: %w", r.name, err)
	}

	if found != nil && found.UID != "" {
		r.uid = found.UID
		r.mode = modeUpdate
		return statePush, nil
	}

	r.uid = ""
	r.mode = modeCreate
	return statePush, nil
}

func (s *Syncer) push(ctx context.Context, r *run) (state, error) {
	r.attempts++

	var (
		resp *remote.PushResponse
		err  error
	)
	if r.mode == modeCreate {
		resp, err = s.store.CreateCollection(ctx, r.doc, r.workspaceID)
	} else {
		resp, err = s.store.UpdateCollection(ctx, r.doc, r.uid, r.workspaceID)
	}
	if err != nil {
		return stateDone, errors.Errorf("sync: pushing collection %q: %w", r.name, err)
	}
	if resp == nil {
		return stateDone, errors.Errorf("sync: pushing collection %q: empty response", r.name)
	}

	r.resp = resp
	return stateInterpret, nil
}

func (s *Syncer) interpret(ctx context.Context, r *run) (state, error) {
	if r.resp.OK() {
		return s.done(ctx, r)
	}

	switch r.mode {
	case modeOverride:
		return stateDone, overrideFailure(r)
	case modeUpdate:
		s.cache.Invalidate(r.name)
		_ = s.cache.Save(ctx)
		if r.retries < maxRetries {
			return stateRetry, nil
		}
		return stateDone, &FatalError{
			Reason:    reason(r.resp.Error, "The remote collection rejected the update."),
			LocalName: r.name,
			RemoteUID: r.uid,
			APIError:  r.resp.Error,
		}
	default:
		return stateDone, &FatalError{
			Reason:    reason(r.resp.Error, "The remote store rejected the new collection."),
			LocalName: r.name,
			APIError:  r.resp.Error,
		}
	}
}

func (s *Syncer) done(ctx context.Context, r *run) (state, error) {
	uid, name := r.uid, r.name
	if col := r.resp.Collection; col != nil {
		if col.UID != "" {
			uid = col.UID
		}
		if col.Name != "" {
			name = col.Name
		}
	}

	s.cache.PutCollection(r.name, cache.Collection{Name: r.name, UID: uid})
	_ = s.cache.Save(ctx)

	r.result = &Result{
		Name:        name,
		UID:         uid,
		WorkspaceID: r.workspaceID,
		Created:     r.mode == modeCreate,
		Attempts:    r.attempts,
	}

	zerolog.Ctx(ctx).Debug().
		Str("name", name).
		Str("uid", uid).
		Bool("created", r.result.Created).
		Int("attempts", r.attempts).
		Msg("synced collection")

	return stateDone, nil
}

func overrideFailure(r *run) *FatalError {
	missing := fmt.Sprintf("Targeted Postman collection ID %s does not exist.", r.uid)

	msg := missing
	if apiErr := r.resp.Error; apiErr != nil && apiErr.Message != "" {
		msg = apiErr.Message
		if apiErr.Name == remote.InstanceNotFound {
			msg += " " + missing
		}
	}

	return &FatalError{
		Reason:    msg,
		Solution:  "Review the collection ID defined for the 'postman_uid' setting.",
		LocalName: r.name,
		RemoteUID: r.uid,
		APIError:  r.resp.Error,
	}
}

func reason(apiErr *remote.APIError, fallback string) string {
	if apiErr != nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

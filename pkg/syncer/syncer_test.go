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

package syncer

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/walteh/colsync/pkg/cache"
	"github.com/walteh/colsync/pkg/collection"
	"github.com/walteh/colsync/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

const cachePath = "tmp/.colsync.cache"

// 🔧 MockStore is a mock implementation of remote.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) FindWorkspaceByName(ctx context.Context, name string) (*remote.Workspace, error) {
	args := m.Called(ctx, name)
	ws, _ := args.Get(0).(*remote.Workspace)
	return ws, args.Error(1)
}

func (m *MockStore) FindCollectionByName(ctx context.Context, name string) (*remote.CollectionHandle, error) {
	args := m.Called(ctx, name)
	col, _ := args.Get(0).(*remote.CollectionHandle)
	return col, args.Error(1)
}

func (m *MockStore) FindWorkspaceCollectionByName(ctx context.Context, workspaceID, name string) (*remote.CollectionHandle, error) {
	args := m.Called(ctx, workspaceID, name)
	col, _ := args.Get(0).(*remote.CollectionHandle)
	return col, args.Error(1)
}

func (m *MockStore) CreateCollection(ctx context.Context, doc []byte, workspaceID string) (*remote.PushResponse, error) {
	args := m.Called(ctx, doc, workspaceID)
	resp, _ := args.Get(0).(*remote.PushResponse)
	return resp, args.Error(1)
}

func (m *MockStore) UpdateCollection(ctx context.Context, doc []byte, uid, workspaceID string) (*remote.PushResponse, error) {
	args := m.Called(ctx, doc, uid, workspaceID)
	resp, _ := args.Get(0).(*remote.PushResponse)
	return resp, args.Error(1)
}

func success(uid, name string) *remote.PushResponse {
	return &remote.PushResponse{
		Status:     remote.StatusSuccess,
		Collection: &remote.CollectionHandle{UID: uid, Name: name},
	}
}

func fail(name, message string) *remote.PushResponse {
	return &remote.PushResponse{
		Status: remote.StatusFail,
		Error:  &remote.APIError{Name: name, Message: message},
	}
}

func ordersTree() *collection.Collection {
	c := collection.New("Orders API")
	c.Root.Add(collection.NewLeaf("op-1", "List orders"))
	return c
}

func loadCache(t *testing.T, fs afero.Fs) *cache.Cache {
	t.Helper()
	return cache.Load(context.Background(), fs, cachePath)
}

func TestCreateOnEmptyCache(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := &MockStore{}

	store.On("FindCollectionByName", mock.Anything, "Orders API").Return(nil, nil).Once()
	store.On("CreateCollection", mock.Anything, mock.Anything, "").Return(success("abc123", "Orders API"), nil).Once()

	res, err := New(store, loadCache(t, fs), Options{}).Sync(ctx, ordersTree())
	require.NoError(t, err, "sync should succeed")

	assert.Equal(t, "abc123", res.UID)
	assert.Equal(t, "Orders API", res.Name)
	assert.True(t, res.Created, "collection should be created")
	assert.Equal(t, 1, res.Attempts)

	data, err := afero.ReadFile(fs, cachePath)
	require.NoError(t, err, "cache should be persisted")
	assert.JSONEq(t, `{"Orders API": {"name": "Orders API", "uid": "abc123"}}`, string(data))

	store.AssertExpectations(t)
}

func TestStaleCacheEntryIsReplaced(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, cachePath, []byte(`{"Orders API": {"name": "Orders API", "uid": "old1"}}`), 0o644))
	store := &MockStore{}

	store.On("UpdateCollection", mock.Anything, mock.Anything, "old1", "").
		Return(fail(remote.InstanceNotFound, "not found"), nil).Once()
	store.On("FindCollectionByName", mock.Anything, "Orders API").Return(nil, nil).Once()
	store.On("CreateCollection", mock.Anything, mock.Anything, "").Return(success("new1", "Orders API"), nil).Once()

	c := loadCache(t, fs)
	res, err := New(store, c, Options{}).Sync(ctx, ordersTree())
	require.NoError(t, err, "sync should recover from the stale entry")

	assert.Equal(t, "new1", res.UID)
	assert.True(t, res.Created)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, "new1", c.Collection("Orders API").UID, "cache should hold the new uid")

	onDisk := cache.Load(ctx, fs, cachePath)
	assert.Equal(t, "new1", onDisk.Collection("Orders API").UID, "persisted cache should hold the new uid")

	store.AssertExpectations(t)
}

func TestWarmCacheIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := &MockStore{}

	store.On("FindWorkspaceByName", mock.Anything, "Team").
		Return(&remote.Workspace{ID: "ws-1", Name: "Team", Type: "team"}, nil).Once()
	store.On("FindWorkspaceCollectionByName", mock.Anything, "ws-1", "Orders API").Return(nil, nil).Once()
	store.On("CreateCollection", mock.Anything, mock.Anything, "ws-1").Return(success("abc123", "Orders API"), nil).Once()

	opts := Options{WorkspaceName: "Team"}
	first, err := New(store, loadCache(t, fs), opts).Sync(ctx, ordersTree())
	require.NoError(t, err)
	assert.Equal(t, "ws-1", first.WorkspaceID)
	store.AssertExpectations(t)

	second := &MockStore{}
	second.On("UpdateCollection", mock.Anything, mock.Anything, "abc123", "ws-1").Return(success("abc123", "Orders API"), nil).Once()

	before, err := afero.ReadFile(fs, cachePath)
	require.NoError(t, err)

	res, err := New(second, loadCache(t, fs), opts).Sync(ctx, ordersTree())
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.UID)
	assert.False(t, res.Created)

	second.AssertExpectations(t)
	assert.Len(t, second.Calls, 1, "a warm cache should need exactly one remote call")

	after, err := afero.ReadFile(fs, cachePath)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after), "cache should be unchanged")
}

func TestRetryOnce(t *testing.T) {
	t.Run("fail_then_success", func(t *testing.T) {
		ctx := context.Background()
		fs := afero.NewMemMapFs()
		c := loadCache(t, fs)
		c.PutCollection("Orders API", cache.Collection{Name: "Orders API", UID: "old1"})
		store := &MockStore{}

		store.On("UpdateCollection", mock.Anything, mock.Anything, "old1", "").Return(fail("", "rejected"), nil).Once()
		store.On("FindCollectionByName", mock.Anything, "Orders API").
			Return(&remote.CollectionHandle{UID: "new1", Name: "Orders API"}, nil).Once()
		store.On("UpdateCollection", mock.Anything, mock.Anything, "new1", "").Return(success("new1", "Orders API"), nil).Once()

		res, err := New(store, c, Options{}).Sync(ctx, ordersTree())
		require.NoError(t, err, "retry should succeed")
		assert.Equal(t, "new1", res.UID)
		assert.Equal(t, 2, res.Attempts)
		assert.Equal(t, "new1", c.Collection("Orders API").UID, "cache should be repopulated")
		store.AssertExpectations(t)
	})

	t.Run("fail_twice_is_fatal", func(t *testing.T) {
		ctx := context.Background()
		c := loadCache(t, afero.NewMemMapFs())
		c.PutCollection("Orders API", cache.Collection{Name: "Orders API", UID: "old1"})
		store := &MockStore{}

		store.On("UpdateCollection", mock.Anything, mock.Anything, "old1", "").Return(fail("", "rejected"), nil).Once()
		store.On("FindCollectionByName", mock.Anything, "Orders API").
			Return(&remote.CollectionHandle{UID: "old2", Name: "Orders API"}, nil).Once()
		store.On("UpdateCollection", mock.Anything, mock.Anything, "old2", "").Return(fail("", "still rejected"), nil).Once()

		_, err := New(store, c, Options{}).Sync(ctx, ordersTree())
		require.Error(t, err, "second failure should be fatal")

		var fatal *FatalError
		require.True(t, errors.As(err, &fatal), "error should be a FatalError")
		assert.Equal(t, "still rejected", fatal.Reason)
		assert.Equal(t, "Orders API", fatal.LocalName)
		assert.Equal(t, "old2", fatal.RemoteUID)
		assert.Nil(t, c.Collection("Orders API"), "failed entry should be invalidated")

		store.AssertExpectations(t)
		store.AssertNumberOfCalls(t, "UpdateCollection", 2)
	})
}

func TestCreateFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := &MockStore{}

	store.On("FindCollectionByName", mock.Anything, "Orders API").Return(nil, nil).Once()
	store.On("CreateCollection", mock.Anything, mock.Anything, "").Return(fail("paramMissingError", "name missing"), nil).Once()

	_, err := New(store, loadCache(t, fs), Options{}).Sync(ctx, ordersTree())
	require.Error(t, err)

	var fatal *FatalError
	require.True(t, errors.As(err, &fatal))
	assert.Equal(t, "name missing", fatal.Reason)
	assert.Empty(t, fatal.RemoteUID)

	exists, _ := afero.Exists(fs, cachePath)
	assert.False(t, exists, "nothing should be written before a confirmed push")
	store.AssertNumberOfCalls(t, "CreateCollection", 1)
}

func TestOverride(t *testing.T) {
	tests := []struct {
		name       string
		resp       *remote.PushResponse
		wantReason string
	}{
		{
			name:       "instance_not_found",
			resp:       fail(remote.InstanceNotFound, "We could not find the collection you are looking for"),
			wantReason: "We could not find the collection you are looking for Targeted Postman collection ID fixed-1 does not exist.",
		},
		{
			name:       "other_error",
			resp:       fail("forbiddenError", "You are not permitted"),
			wantReason: "You are not permitted",
		},
		{
			name:       "no_message",
			resp:       &remote.PushResponse{Status: remote.StatusFail},
			wantReason: "Targeted Postman collection ID fixed-1 does not exist.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockStore{}
			store.On("UpdateCollection", mock.Anything, mock.Anything, "fixed-1", "").Return(tt.resp, nil).Once()

			_, err := New(store, loadCache(t, afero.NewMemMapFs()), Options{CollectionUID: "fixed-1"}).Sync(context.Background(), ordersTree())
			require.Error(t, err)

			var fatal *FatalError
			require.True(t, errors.As(err, &fatal))
			assert.Equal(t, tt.wantReason, fatal.Reason)
			assert.Equal(t, "Review the collection ID defined for the 'postman_uid' setting.", fatal.Solution)
			assert.Equal(t, "fixed-1", fatal.RemoteUID)

			store.AssertNumberOfCalls(t, "UpdateCollection", 1)
		})
	}

	t.Run("success_is_cached", func(t *testing.T) {
		store := &MockStore{}
		store.On("UpdateCollection", mock.Anything, mock.Anything, "fixed-1", "").Return(success("fixed-1", "Orders API"), nil).Once()

		c := loadCache(t, afero.NewMemMapFs())
		res, err := New(store, c, Options{CollectionUID: "fixed-1"}).Sync(context.Background(), ordersTree())
		require.NoError(t, err)
		assert.Equal(t, "fixed-1", res.UID)
		assert.Equal(t, "fixed-1", c.Collection("Orders API").UID)
		store.AssertExpectations(t)
	})
}

func TestWorkspaceResolution(t *testing.T) {
	t.Run("cached_workspace_with_other_name_is_refreshed", func(t *testing.T) {
		c := loadCache(t, afero.NewMemMapFs())
		c.PutWorkspace(cache.Workspace{ID: "ws-old", Name: "Old"})
		store := &MockStore{}

		store.On("FindWorkspaceByName", mock.Anything, "Team").Return(&remote.Workspace{ID: "ws-1", Name: "Team", Type: "team"}, nil).Once()
		store.On("FindWorkspaceCollectionByName", mock.Anything, "ws-1", "Orders API").Return(nil, nil).Once()
		store.On("CreateCollection", mock.Anything, mock.Anything, "ws-1").Return(success("abc123", "Orders API"), nil).Once()

		_, err := New(store, c, Options{WorkspaceName: "Team"}).Sync(context.Background(), ordersTree())
		require.NoError(t, err)
		assert.Equal(t, &cache.Workspace{ID: "ws-1", Name: "Team", Type: "team"}, c.Workspace())
		store.AssertExpectations(t)
	})

	t.Run("unknown_workspace_falls_back_to_default", func(t *testing.T) {
		c := loadCache(t, afero.NewMemMapFs())
		store := &MockStore{}

		store.On("FindWorkspaceByName", mock.Anything, "Nope").Return(nil, nil).Once()
		store.On("FindCollectionByName", mock.Anything, "Orders API").Return(nil, nil).Once()
		store.On("CreateCollection", mock.Anything, mock.Anything, "").Return(success("abc123", "Orders API"), nil).Once()

		res, err := New(store, c, Options{WorkspaceName: "Nope"}).Sync(context.Background(), ordersTree())
		require.NoError(t, err)
		assert.Empty(t, res.WorkspaceID)
		assert.Nil(t, c.Workspace())
		store.AssertExpectations(t)
	})

	t.Run("no_workspace_drops_cached_entry", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		c := loadCache(t, fs)
		c.PutWorkspace(cache.Workspace{ID: "ws-1", Name: "Team"})
		c.PutCollection("Orders API", cache.Collection{Name: "Orders API", UID: "abc123"})
		store := &MockStore{}

		store.On("UpdateCollection", mock.Anything, mock.Anything, "abc123", "").Return(success("abc123", "Orders API"), nil).Once()

		_, err := New(store, c, Options{}).Sync(context.Background(), ordersTree())
		require.NoError(t, err)
		assert.Nil(t, c.Workspace(), "workspace entry should be dropped")

		data, err := afero.ReadFile(fs, cachePath)
		require.NoError(t, err)
		assert.False(t, gjson.GetBytes(data, cache.WorkspaceKey).Exists(), "persisted cache should not hold the workspace")
		store.AssertExpectations(t)
	})

	t.Run("lookup_error_is_returned", func(t *testing.T) {
		store := &MockStore{}
		store.On("FindWorkspaceByName", mock.Anything, "Team").Return(nil, errors.New("boom")).Once()

		_, err := New(store, loadCache(t, afero.NewMemMapFs()), Options{WorkspaceName: "Team"}).Sync(context.Background(), ordersTree())
		require.Error(t, err)
		var fatal *FatalError
		assert.False(t, errors.As(err, &fatal), "transport errors are not remote rejections")
	})
}

func TestCacheWriteFailureStillSucceeds(t *testing.T) {
	store := &MockStore{}
	store.On("FindCollectionByName", mock.Anything, "Orders API").Return(nil, nil).Once()
	store.On("CreateCollection", mock.Anything, mock.Anything, "").Return(success("abc123", "Orders API"), nil).Once()

	c := cache.Load(context.Background(), afero.NewReadOnlyFs(afero.NewMemMapFs()), cachePath)
	res, err := New(store, c, Options{}).Sync(context.Background(), ordersTree())
	require.NoError(t, err, "remote state is authoritative even when the cache cannot be written")
	assert.Equal(t, "abc123", res.UID)
	assert.Equal(t, "abc123", c.Collection("Orders API").UID)
}

func TestPushedDocument(t *testing.T) {
	store := &MockStore{}
	store.On("FindCollectionByName", mock.Anything, "Orders API").Return(nil, nil).Once()
	store.On("CreateCollection", mock.Anything, mock.MatchedBy(func(doc []byte) bool {
		return gjson.GetBytes(doc, "info.name").String() == "Orders API" &&
			gjson.GetBytes(doc, "item.0.id").String() == "op-1"
	}), "").Return(success("abc123", "Orders API"), nil).Once()

	_, err := New(store, loadCache(t, afero.NewMemMapFs()), Options{}).Sync(context.Background(), ordersTree())
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSyncErrors(t *testing.T) {
	s := New(&MockStore{}, loadCache(t, afero.NewMemMapFs()), Options{})

	_, err := s.Sync(context.Background(), nil)
	assert.Error(t, err)

	_, err = s.SyncDocument(context.Background(), "", []byte(`{}`))
	assert.Error(t, err)
}

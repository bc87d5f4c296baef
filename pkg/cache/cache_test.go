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

package cache

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const cachePath = "tmp/.colsync.cache"

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		check   func(t *testing.T, c *Cache)
	}{
		{
			name:    "missing_file",
			content: nil,
			check: func(t *testing.T, c *Cache) {
				assert.Empty(t, c.Keys(), "missing file should give empty cache")
			},
		},
		{
			name:    "corrupt_file",
			content: ptr("{not json"),
			check: func(t *testing.T, c *Cache) {
				assert.Empty(t, c.Keys(), "corrupt file should give empty cache")
			},
		},
		{
			name:    "wrong_shape",
			content: ptr(`{"Orders API": "abc"}`),
			check: func(t *testing.T, c *Cache) {
				assert.Empty(t, c.Keys(), "record of the wrong shape should give empty cache")
			},
		},
		{
			name: "both_record_shapes",
			content: ptr(`{
				"postman-workspace": {"id": "ws-1", "name": "Team", "type": "team"},
				"Orders API": {"name": "Orders API", "uid": "abc123"}
			}`),
			check: func(t *testing.T, c *Cache) {
				assert.Equal(t, []string{"Orders API", WorkspaceKey}, c.Keys())

				ws := c.Workspace()
				require.NotNil(t, ws, "workspace should be decoded")
				assert.Equal(t, Workspace{ID: "ws-1", Name: "Team", Type: "team"}, *ws)

				col := c.Collection("Orders API")
				require.NotNil(t, col, "collection should be decoded")
				assert.Equal(t, "abc123", col.UID)

				assert.Nil(t, c.Collection(WorkspaceKey), "workspace key is never a collection")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tt.content != nil {
				require.NoError(t, afero.WriteFile(fs, cachePath, []byte(*tt.content), 0o644))
			}
			tt.check(t, Load(context.Background(), fs, cachePath))
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	c := Load(ctx, fs, cachePath)
	c.PutWorkspace(Workspace{ID: "ws-1", Name: "Team"})
	c.PutCollection("Orders API", Collection{Name: "Orders API", UID: "abc123"})
	require.NoError(t, c.Save(ctx), "Save should succeed")

	data, err := afero.ReadFile(fs, cachePath)
	require.NoError(t, err)
	assert.Equal(t, "ws-1", gjson.GetBytes(data, WorkspaceKey+".id").String(), "workspace should be stored under the fixed key")
	assert.Equal(t, "abc123", gjson.GetBytes(data, "Orders API.uid").String(), "collection should be stored under its local name")

	again := Load(ctx, fs, cachePath)
	assert.Equal(t, c.Keys(), again.Keys())
	assert.Equal(t, "abc123", again.Collection("Orders API").UID)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	c := Load(ctx, afero.NewMemMapFs(), cachePath)

	c.PutCollection("Orders API", Collection{Name: "Orders API", UID: "old1"})
	c.Invalidate("Orders API")
	assert.Nil(t, c.Collection("Orders API"), "invalidated entry should be gone")

	c.Invalidate("never-there")
	assert.Empty(t, c.Keys())
}

func TestSaveFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	c := Load(ctx, afero.NewReadOnlyFs(afero.NewMemMapFs()), cachePath)

	c.PutCollection("Orders API", Collection{Name: "Orders API", UID: "abc123"})
	err := c.Save(ctx)
	assert.Error(t, err, "Save should report the write failure")

	col := c.Collection("Orders API")
	require.NotNil(t, col, "in-memory cache should remain authoritative")
	assert.Equal(t, "abc123", col.UID)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	c := Load(ctx, fs, cachePath)
	c.PutCollection("x", Collection{Name: "x", UID: "1"})
	require.NoError(t, c.Save(ctx))

	require.NoError(t, c.Clear(ctx))
	assert.Empty(t, c.Keys())

	exists, err := afero.Exists(fs, cachePath)
	require.NoError(t, err)
	assert.False(t, exists, "cache file should be removed")

	require.NoError(t, c.Clear(ctx), "clearing twice should be fine")
}

func TestDefaultPath(t *testing.T) {
	c := Load(context.Background(), afero.NewMemMapFs(), "")
	assert.Equal(t, DefaultPath, c.Path())
}

func ptr(s string) *string {
	return &s
}

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

package collection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gitlab.com/tozd/go/errors"
)

const ordersDoc = `{
  "info": {"_postman_id": "c-1", "name": "Orders API", "schema": "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"},
  "item": [
    {"id": "f-1", "name": "Orders", "item": [
      {"id": "op-1", "name": "List orders", "request": {"method": "get", "url": {"raw": "{{baseUrl}}/orders", "path": ["orders"]}}},
      {"id": "op-2", "name": "Get order", "request": {"method": "GET", "url": "{{baseUrl}}/orders/:orderId?expand=true"}}
    ]},
    {"id": "op-3", "name": "Health", "request": "https://api.example.com/health", "event": [{"listen": "test"}]}
  ],
  "variable": [{"key": "baseUrl", "value": "http://localhost"}]
}`

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
		check   func(t *testing.T, c *Collection)
	}{
		{
			name: "groups_and_leaves",
			doc:  ordersDoc,
			check: func(t *testing.T, c *Collection) {
				assert.Equal(t, "Orders API", c.Name(), "collection name should come from info.name")
				require.Len(t, c.Root.Items, 2, "root should have two children")

				orders := c.Root.Items[0]
				assert.True(t, orders.IsGroup(), "folder should decode as group")
				assert.Same(t, c.Root, orders.Parent(), "top level group should be owned by root")
				require.Len(t, orders.Items, 2, "folder should keep both leaves")
				assert.Same(t, orders, orders.Items[1].Parent(), "leaf should point back to its folder")

				health := c.Root.Items[1]
				assert.False(t, health.IsGroup(), "request item should decode as leaf")
				assert.JSONEq(t, `[{"listen": "test"}]`, string(health.Raw("event")), "unknown fields should be preserved")
			},
		},
		{
			name: "missing_leaf_id_gets_generated",
			doc:  `{"info": {"name": "x"}, "item": [{"name": "a", "request": {}}]}`,
			check: func(t *testing.T, c *Collection) {
				require.Len(t, c.Leaves(), 1)
				assert.NotEmpty(t, c.Leaves()[0].ID, "leaf without id should get one")
			},
		},
		{
			name:    "duplicate_leaf_ids",
			doc:     `{"info": {"name": "x"}, "item": [{"id": "a", "name": "a"}, {"id": "a", "name": "b"}]}`,
			wantErr: ErrDuplicateID,
		},
		{
			name:    "missing_name",
			doc:     `{"info": {}, "item": []}`,
			wantErr: ErrInvalid,
		},
		{
			name:    "malformed_json",
			doc:     `{"info": `,
			wantErr: ErrInvalid,
		},
		{
			name:    "numeric_leaf_id",
			doc:     `{"info": {"name": "x"}, "item": [{"id": 42, "name": "a", "request": {}}]}`,
			wantErr: ErrInvalid,
		},
		{
			name:    "nested_numeric_leaf_id",
			doc:     `{"info": {"name": "x"}, "item": [{"name": "g", "item": [{"id": {"v": 1}, "name": "a"}]}]}`,
			wantErr: ErrInvalid,
		},
		{
			name:    "non_string_item_name",
			doc:     `{"info": {"name": "x"}, "item": [{"id": "a", "name": ["a"]}]}`,
			wantErr: ErrInvalid,
		},
		{
			name:    "item_not_array",
			doc:     `{"info": {"name": "x"}, "item": {}}`,
			wantErr: ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Decode([]byte(tt.doc))
			if tt.wantErr != nil {
				require.Error(t, err, "Decode should fail")
				assert.True(t, errors.Is(err, tt.wantErr), "error should wrap %v, got %v", tt.wantErr, err)
				return
			}
			require.NoError(t, err, "Decode should succeed")
			tt.check(t, c)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	c, err := Decode([]byte(ordersDoc))
	require.NoError(t, err)

	out, err := c.Encode()
	require.NoError(t, err, "Encode should succeed")

	assert.Equal(t, "Orders API", gjson.GetBytes(out, "info.name").String())
	assert.Equal(t, "c-1", gjson.GetBytes(out, "info._postman_id").String())
	assert.Equal(t, "op-2", gjson.GetBytes(out, "item.0.item.1.id").String())
	assert.Equal(t, "baseUrl", gjson.GetBytes(out, "variable.0.key").String(), "top level fields should survive")

	again, err := Decode(out)
	require.NoError(t, err, "encoded output should decode again")
	out2, err := again.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, string(out), string(out2), "encode should be stable")
}

func TestEncodeEmptyGroup(t *testing.T) {
	c := New("empty")
	c.Root.Add(NewGroup("Contract Tests"))

	out, err := c.Encode()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "Contract Tests", gjson.GetBytes(out, "item.0.name").String())
	assert.True(t, gjson.GetBytes(out, "item.0.item").IsArray(), "empty group should still encode an item array")
}

func TestClone(t *testing.T) {
	c, err := Decode([]byte(ordersDoc))
	require.NoError(t, err)
	c.Find("op-1").AddTag("contract")

	cp := c.Clone()
	require.NoError(t, cp.Validate(), "clone should keep parent links consistent")

	cp.Root.Items[0].Name = "changed"
	cp.Find("op-1").AddTag("other")
	_, removed := cp.Root.Items[0].Remove("op-2")
	require.True(t, removed)

	assert.Equal(t, "Orders", c.Root.Items[0].Name, "original should not see renames")
	assert.Len(t, c.Root.Items[0].Items, 2, "original should not see removals")
	assert.Equal(t, []string{"contract"}, c.Find("op-1").Tags, "tags should be copied, not shared")
	assert.NotSame(t, c.Find("op-1"), cp.Find("op-1"))
}

func TestLeavesAndFind(t *testing.T) {
	c, err := Decode([]byte(ordersDoc))
	require.NoError(t, err)

	var ids []string
	for _, l := range c.Leaves() {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"op-1", "op-2", "op-3"}, ids, "leaves should be in document order")
	assert.Nil(t, c.Find("f-1"), "Find should only return leaves")
	assert.Equal(t, "Get order", c.Find("op-2").Name)
}

func TestRequestAccessors(t *testing.T) {
	c, err := Decode([]byte(ordersDoc))
	require.NoError(t, err)

	tests := []struct {
		id   string
		want string
	}{
		{"op-1", "GET::/orders"},
		{"op-2", "GET::/orders/{orderId}"},
		{"op-3", "GET::/health"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Find(tt.id).OperationKey())
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{{baseUrl}}/pets/:petId", "/pets/{petId}"},
		{"https://host.example.com/v1/pets?limit=10", "/v1/pets"},
		{"{{baseUrl}}", "/"},
		{"pets", "/pets"},
		{"/a/:b/c#frag", "/a/{b}/c"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.in))
		})
	}
}

func TestValidateInconsistentParent(t *testing.T) {
	c := New("x")
	g := NewGroup("g")
	c.Root.Add(g)
	leaf := NewLeaf("l-1", "leaf")
	g.Items = append(g.Items, leaf) // bypasses Add, no back reference

	err := c.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
}

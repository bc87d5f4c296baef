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

// Package cache persists the mapping from local collection names to remote
// identifiers between runs.
package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/colsync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultPath is where the cache lives relative to the working directory
	DefaultPath = "./tmp/.colsync.cache"

	// WorkspaceKey holds the resolved workspace record
	WorkspaceKey = "postman-workspace"
)

// 🗂️ Workspace is the cached remote workspace
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// 📚 Collection is the cached remote collection for a local name
type Collection struct {
	Name string `json:"name"`
	UID  string `json:"uid"`
}

// Record is one cache entry. Exactly one of the fields is set.
type Record struct {
	Workspace  *Workspace
	Collection *Collection
}

func (r Record) MarshalJSON() ([]byte, error) {
	switch {
	case r.Workspace != nil:
		return json.Marshal(r.Workspace)
	case r.Collection != nil:
		return json.Marshal(r.Collection)
	default:
		return []byte("{}"), nil
	}
}

// 💾 Cache is the in-memory view of the cache file. It stays authoritative
// for the run even when the file cannot be written.
type Cache struct {
	fs      afero.Fs
	path    string
	entries map[string]Record
}

// 🏭 Load reads the cache file. A missing or unreadable file yields an empty cache.
func Load(ctx context.Context, fs afero.Fs, path string) *Cache {
	logger := zerolog.Ctx(ctx)
	if path == "" {
		path = DefaultPath
	}

	c := &Cache{
		fs:      fs,
		path:    path,
		entries: map[string]Record{},
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", path).Msg("unable to read sync cache, starting empty")
		}
		return c
	}

	entries, err := decode(data)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("sync cache is corrupt, starting empty")
		return c
	}
	c.entries = entries

	logger.Debug().Str("path", path).Int("entries", len(entries)).Msg("loaded sync cache")
	return c
}

func decode(data []byte) (map[string]Record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Errorf("decoding cache: %w", err)
	}

	out := make(map[string]Record, len(raw))
	for key, value := range raw {
		if key == WorkspaceKey {
			var ws Workspace
			if err := json.Unmarshal(value, &ws); err != nil {
				return nil, errors.Errorf("decoding workspace record: %w", err)
			}
			out[key] = Record{Workspace: &ws}
			continue
		}
		var col Collection
		if err := json.Unmarshal(value, &col); err != nil {
			return nil, errors.Errorf("decoding record %q: %w", key, err)
		}
		out[key] = Record{Collection: &col}
	}
	return out, nil
}

// Path returns the cache file location
func (c *Cache) Path() string {
	return c.path
}

func (c *Cache) Get(key string) (Record, bool) {
	r, ok := c.entries[key]
	return r, ok
}

func (c *Cache) Put(key string, r Record) {
	c.entries[key] = r
}

// Invalidate drops an entry the remote store no longer recognizes
func (c *Cache) Invalidate(key string) {
	delete(c.entries, key)
}

// Keys returns the cached keys in sorted order
func (c *Cache) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Workspace returns the cached workspace record, if any
func (c *Cache) Workspace() *Workspace {
	r, ok := c.entries[WorkspaceKey]
	if !ok {
		return nil
	}
	return r.Workspace
}

func (c *Cache) PutWorkspace(ws Workspace) {
	c.entries[WorkspaceKey] = Record{Workspace: &ws}
}

// Collection returns the cached collection record for a local name, if any
func (c *Cache) Collection(name string) *Collection {
	if name == WorkspaceKey {
		return nil
	}
	r, ok := c.entries[name]
	if !ok {
		return nil
	}
	return r.Collection
}

// PutCollection merges the remote identity into the entry for the local name
func (c *Cache) PutCollection(name string, col Collection) {
	c.entries[name] = Record{Collection: &col}
}

// 💾 Save writes the cache file. Failures are logged and returned so callers
// may ignore them; the in-memory view is unaffected.
func (c *Cache) Save(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		logger.Warn().Err(err).Msg("unable to encode sync cache")
		return errors.Errorf("encoding cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := c.fs.MkdirAll(dir, 0o755); err != nil {
			logger.Warn().Err(err).Str("path", c.path).Msg("unable to create sync cache directory")
			return errors.Errorf("creating cache directory: %w", err)
		}
	}

	if err := status.WriteFileAtomic(c.fs, c.path, data, 0o644); err != nil {
		logger.Warn().Err(err).Str("path", c.path).Msg("unable to write sync cache")
		return errors.Errorf("writing cache: %w", err)
	}

	logger.Debug().Str("path", c.path).Int("entries", len(c.entries)).Msg("saved sync cache")
	return nil
}

// Clear removes every entry and deletes the cache file
func (c *Cache) Clear(ctx context.Context) error {
	c.entries = map[string]Record{}
	if err := c.fs.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return errors.Errorf("removing cache file: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", c.path).Msg("cleared sync cache")
	return nil
}

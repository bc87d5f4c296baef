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

package remote

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🗺️ registry maps store names to factories
var registry = map[string]Factory{}

// Factory builds a store from connection options
type Factory func(ctx context.Context, opts Options) (Store, error)

// Options configures a remote store connection
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// RegisterStore makes a store available by name
func RegisterStore(name string, factory Factory) {
	registry[name] = factory
}

// Stores lists the registered store names in sorted order
func Stores() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// NewStore builds the store registered under name
func NewStore(ctx context.Context, name string, opts Options) (Store, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("store %s not found, options: %s", name, strings.Join(Stores(), ", "))
	}
	return factory(ctx, opts)
}

// Store is the remote home of published collections. Lookups return nil
// without an error when nothing matches.
type Store interface {
	// FindWorkspaceByName returns the first workspace with exactly this name
	FindWorkspaceByName(ctx context.Context, name string) (*Workspace, error)
	// FindCollectionByName searches every accessible collection
	FindCollectionByName(ctx context.Context, name string) (*CollectionHandle, error)
	// FindWorkspaceCollectionByName searches the collections of one workspace
	FindWorkspaceCollectionByName(ctx context.Context, workspaceID, name string) (*CollectionHandle, error)
	// CreateCollection publishes doc as a new collection, scoped to workspaceID when set
	CreateCollection(ctx context.Context, doc []byte, workspaceID string) (*PushResponse, error)
	// UpdateCollection replaces the collection uid with doc
	UpdateCollection(ctx context.Context, doc []byte, uid, workspaceID string) (*PushResponse, error)
}

// Status is the outcome of a push
type Status string

const (
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
)

// InstanceNotFound is the error name the store reports for unknown ids
const InstanceNotFound = "instanceNotFoundError"

type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type CollectionHandle struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// APIError is the error body the store returns with a failed push
type APIError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Name == "" {
		return e.Message
	}
	return e.Name + ": " + e.Message
}

// PushResponse is the structured result of create and update
type PushResponse struct {
	Status     Status
	Collection *CollectionHandle
	Error      *APIError
}

func (r *PushResponse) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

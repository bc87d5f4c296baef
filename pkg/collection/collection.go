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

// Package collection models a test collection document as a tree of groups
// (folders) and leaf items (requests with their tests).
package collection

import (
	"encoding/json"
	"slices"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrDuplicateID is returned when two leaf items share an identifier
	ErrDuplicateID = errors.Base("duplicate leaf id")
	// ErrInvalid is returned for documents that are not a collection
	ErrInvalid = errors.Base("invalid collection document")
)

// 🌳 Node is either a group of child nodes or a leaf item
type Node struct {
	ID    string
	Name  string
	Tags  []string
	Items []*Node

	group  bool
	parent *Node
	raw    map[string]json.RawMessage
}

// 📁 NewGroup creates an empty group with a fresh identifier
func NewGroup(name string) *Node {
	return &Node{
		ID:    uuid.NewString(),
		Name:  name,
		group: true,
		raw:   map[string]json.RawMessage{},
	}
}

// 📄 NewLeaf creates a leaf item. An empty id is replaced by a fresh one.
func NewLeaf(id, name string) *Node {
	if id == "" {
		id = uuid.NewString()
	}
	return &Node{
		ID:   id,
		Name: name,
		raw:  map[string]json.RawMessage{},
	}
}

func (n *Node) IsGroup() bool {
	return n.group
}

// Parent returns the owning group. Top-level nodes are owned by the collection root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Add appends a child and takes ownership of it
func (n *Node) Add(child *Node) {
	child.parent = n
	n.Items = append(n.Items, child)
}

// Remove detaches the direct child with the given id
func (n *Node) Remove(id string) (*Node, bool) {
	for i, child := range n.Items {
		if child.ID == id {
			n.Items = slices.Delete(n.Items, i, i+1)
			child.parent = nil
			return child, true
		}
	}
	return nil, false
}

// RemoveChild detaches the given child node
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.Items {
		if c == child {
			n.Items = slices.Delete(n.Items, i, i+1)
			child.parent = nil
			return true
		}
	}
	return false
}

// ChildGroup returns the first direct child group with the given name
func (n *Node) ChildGroup(name string) *Node {
	for _, c := range n.Items {
		if c.group && c.Name == name {
			return c
		}
	}
	return nil
}

func (n *Node) HasTag(tag string) bool {
	return slices.Contains(n.Tags, tag)
}

// AddTag adds tag once
func (n *Node) AddTag(tag string) {
	if !n.HasTag(tag) {
		n.Tags = append(n.Tags, tag)
	}
}

// Raw returns a preserved document field such as "request" or "event"
func (n *Node) Raw(key string) json.RawMessage {
	return n.raw[key]
}

func (n *Node) SetRaw(key string, value json.RawMessage) {
	if n.raw == nil {
		n.raw = map[string]json.RawMessage{}
	}
	n.raw[key] = value
}

func (n *Node) clone(parent *Node) *Node {
	cp := &Node{
		ID:     n.ID,
		Name:   n.Name,
		Tags:   slices.Clone(n.Tags),
		group:  n.group,
		parent: parent,
		raw:    make(map[string]json.RawMessage, len(n.raw)),
	}
	for k, v := range n.raw {
		cp.raw[k] = slices.Clone(v)
	}
	if n.Items != nil {
		cp.Items = make([]*Node, 0, len(n.Items))
		for _, c := range n.Items {
			cp.Items = append(cp.Items, c.clone(cp))
		}
	}
	return cp
}

// 📚 Collection is the document root
type Collection struct {
	Root *Node

	info map[string]json.RawMessage
}

// 🏭 New creates an empty collection
func New(name string) *Collection {
	root := NewGroup(name)
	root.ID = ""
	return &Collection{
		Root: root,
		info: map[string]json.RawMessage{},
	}
}

func (c *Collection) Name() string {
	return c.Root.Name
}

// IsRoot reports whether n is the collection root
func (c *Collection) IsRoot(n *Node) bool {
	return n == c.Root
}

// Walk visits every node depth-first in document order. Returning false skips the subtree.
func (c *Collection) Walk(fn func(n *Node) bool) {
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if fn(n) && n.group {
				walk(n.Items)
			}
		}
	}
	walk(c.Root.Items)
}

// Leaves returns all leaf items in discovery order
func (c *Collection) Leaves() []*Node {
	var out []*Node
	c.Walk(func(n *Node) bool {
		if !n.group {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Find returns the leaf with the given id
func (c *Collection) Find(id string) *Node {
	var found *Node
	c.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if !n.group && n.ID == id {
			found = n
		}
		return true
	})
	return found
}

// 🧬 Clone returns a deep copy that shares nothing with c
func (c *Collection) Clone() *Collection {
	cp := &Collection{
		Root: c.Root.clone(nil),
		info: make(map[string]json.RawMessage, len(c.info)),
	}
	for k, v := range c.info {
		cp.info[k] = slices.Clone(v)
	}
	return cp
}

// 🔍 Validate checks the structural invariants of the tree
func (c *Collection) Validate() error {
	if c == nil || c.Root == nil {
		return errors.Errorf("%w: missing root", ErrInvalid)
	}
	if c.Root.Name == "" {
		return errors.Errorf("%w: collection has no name", ErrInvalid)
	}

	seen := map[string]struct{}{}
	var err error
	var check func(parent *Node)
	check = func(parent *Node) {
		for _, n := range parent.Items {
			if err != nil {
				return
			}
			if n.parent != parent {
				err = errors.Errorf("%w: node %q has inconsistent parent", ErrInvalid, n.Name)
				return
			}
			if n.group {
				check(n)
				continue
			}
			if n.ID == "" {
				err = errors.Errorf("%w: leaf %q has no id", ErrInvalid, n.Name)
				return
			}
			if _, ok := seen[n.ID]; ok {
				err = errors.Errorf("%w: %s", ErrDuplicateID, n.ID)
				return
			}
			seen[n.ID] = struct{}{}
		}
	}
	check(c.Root)
	return err
}

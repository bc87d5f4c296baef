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

// Package regroup moves selected leaf items of a collection into a single
// top-level group, mirroring the folders they came from.
package regroup

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/colsync/pkg/collection"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Predicate selects the leaves that belong in the new group
type Predicate func(leaf *collection.Node) bool

// 🔀 Regroup returns a copy of tree where every leaf matching pred lives
// under the top-level group groupName. Leaves owned by the root go directly
// into that group; others go into a child group named after their original
// folder. Folders emptied by a move are removed from their parent, one level
// only. The group is attached even when nothing matches.
func Regroup(ctx context.Context, tree *collection.Collection, pred Predicate, groupName string) (*collection.Collection, error) {
	if tree == nil || tree.Root == nil {
		return nil, errors.New("regrouping: collection is required")
	}
	if groupName == "" {
		return nil, errors.New("regrouping: group name is required")
	}
	if pred == nil {
		return nil, errors.New("regrouping: predicate is required")
	}

	out := tree.Clone()

	target := out.Root.ChildGroup(groupName)
	reused := target != nil
	if !reused {
		target = collection.NewGroup(groupName)
	}

	selected := collect(out, target, pred)

	for _, leaf := range selected {
		owner := leaf.Parent()
		if owner == nil || !owner.RemoveChild(leaf) {
			return nil, errors.Errorf("regrouping: leaf %s is detached from the tree", leaf.ID)
		}

		dest := target
		if !out.IsRoot(owner) {
			dest = target.ChildGroup(owner.Name)
			if dest == nil {
				dest = collection.NewGroup(owner.Name)
				target.Add(dest)
			}

			if len(owner.Items) == 0 {
				if p := owner.Parent(); p != nil {
					p.RemoveChild(owner)
				}
			}
		}

		dest.Add(leaf)
	}

	if !reused {
		out.Root.Add(target)
	}

	zerolog.Ctx(ctx).Debug().
		Str("group", groupName).
		Int("moved", len(selected)).
		Bool("reused_group", reused).
		Msg("regrouped collection items")

	return out, nil
}

// collect returns matching leaves in discovery order, deduplicated by id,
// skipping anything already inside the target group
func collect(tree *collection.Collection, target *collection.Node, pred Predicate) []*collection.Node {
	var out []*collection.Node
	seen := map[string]struct{}{}
	tree.Walk(func(n *collection.Node) bool {
		if n == target {
			return false
		}
		if n.IsGroup() || !pred(n) {
			return true
		}
		if _, ok := seen[n.ID]; ok {
			return true
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
		return true
	})
	return out
}

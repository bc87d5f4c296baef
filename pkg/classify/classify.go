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

// Package classify tags leaf items with a test classification based on
// operation and name globs.
package classify

import (
	"context"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/colsync/pkg/collection"
	"github.com/walteh/colsync/pkg/regroup"
	"gitlab.com/tozd/go/errors"
)

// ContractTag marks leaves generated as contract tests
const ContractTag = "contract"

// 📋 Target selects leaves by operation key (METHOD::/path) and/or by name.
// Both fields are doublestar globs. In the operation pattern a brace group
// without a comma is a path parameter, so GET::/orders/{id} matches literally.
type Target struct {
	Operation string `json:"operation,omitempty" yaml:"operation,omitempty" hcl:"operation,optional"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty" hcl:"name,optional"`
}

// Validate checks that the target selects something and both globs parse
func (t Target) Validate() error {
	if t.Operation == "" && t.Name == "" {
		return errors.New("target needs an operation or a name pattern")
	}
	if t.Operation != "" && !doublestar.ValidatePattern(operationPattern(t.Operation)) {
		return errors.Errorf("invalid operation pattern %q", t.Operation)
	}
	if t.Name != "" && !doublestar.ValidatePattern(t.Name) {
		return errors.Errorf("invalid name pattern %q", t.Name)
	}
	return nil
}

// Matches reports whether leaf satisfies every pattern set on the target
func (t Target) Matches(leaf *collection.Node) bool {
	if leaf == nil || leaf.IsGroup() {
		return false
	}
	if t.Operation != "" {
		ok, err := doublestar.Match(operationPattern(t.Operation), leaf.OperationKey())
		if err != nil || !ok {
			return false
		}
	}
	if t.Name != "" {
		ok, err := doublestar.Match(t.Name, leaf.Name)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// operationPattern escapes {name} path parameters so doublestar does not read
// them as alternations. Groups holding a comma stay alternations.
func operationPattern(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if ch == '\\' && i+1 < len(pattern) {
			b.WriteByte(ch)
			b.WriteByte(pattern[i+1])
			i++
			continue
		}
		if ch != '{' {
			b.WriteByte(ch)
			continue
		}
		end := strings.IndexByte(pattern[i+1:], '}')
		if end < 0 {
			b.WriteString(pattern[i:])
			break
		}
		inner := pattern[i+1 : i+1+end]
		if strings.ContainsAny(inner, ",{\\") {
			b.WriteByte(ch)
			continue
		}
		b.WriteString(`\{` + inner + `\}`)
		i += end + 1
	}
	return b.String()
}

// 🏷️ Tag returns a copy of tree where every leaf matching any target carries tag
func Tag(ctx context.Context, tree *collection.Collection, tag string, targets []Target) (*collection.Collection, error) {
	if tree == nil {
		return nil, errors.New("tagging: collection is required")
	}
	if tag == "" {
		return nil, errors.New("tagging: tag is required")
	}
	for i, t := range targets {
		if err := t.Validate(); err != nil {
			return nil, errors.Errorf("tagging: target %d: %w", i, err)
		}
	}

	out := tree.Clone()
	tagged := 0
	for _, leaf := range out.Leaves() {
		for _, t := range targets {
			if t.Matches(leaf) {
				leaf.AddTag(tag)
				tagged++
				break
			}
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("tag", tag).
		Int("targets", len(targets)).
		Int("tagged", tagged).
		Msg("classified collection items")

	return out, nil
}

// HasClassification selects leaves carrying tag
func HasClassification(tag string) regroup.Predicate {
	return func(leaf *collection.Node) bool {
		return leaf.HasTag(tag)
	}
}

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
	"bytes"
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"gitlab.com/tozd/go/errors"
)

const (
	keyInfo = "info"
	keyItem = "item"
	keyID   = "id"
	keyName = "name"
)

// 📥 Decode parses a Postman v2.1 collection document. Fields the tree does
// not model are preserved and written back by Encode.
func Decode(data []byte) (*Collection, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.Errorf("%w: malformed json", ErrInvalid)
	}
	name := gjson.GetBytes(data, "info.name")
	if !name.Exists() || name.String() == "" {
		return nil, errors.Errorf("%w: info.name is required", ErrInvalid)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, errors.Errorf("%w: %s", ErrInvalid, err.Error())
	}

	c := New(name.String())

	if err := json.Unmarshal(top[keyInfo], &c.info); err != nil {
		return nil, errors.Errorf("%w: decoding info: %s", ErrInvalid, err.Error())
	}
	delete(c.info, keyName)

	items, err := decodeItems(top[keyItem])
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		c.Root.Add(it)
	}

	for k, v := range top {
		if k == keyInfo || k == keyItem {
			continue
		}
		c.Root.raw[k] = v
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func decodeItems(data json.RawMessage) ([]*Node, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, errors.Errorf("%w: item must be an array: %s", ErrInvalid, err.Error())
	}
	out := make([]*Node, 0, len(raws))
	for _, r := range raws {
		n, err := decodeNode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeNode(data json.RawMessage) (*Node, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Errorf("%w: item must be an object: %s", ErrInvalid, err.Error())
	}

	n := &Node{raw: map[string]json.RawMessage{}}
	if v, ok := fields[keyID]; ok {
		if err := json.Unmarshal(v, &n.ID); err != nil {
			return nil, errors.Errorf("%w: item id must be a string, got %s", ErrInvalid, string(v))
		}
	}
	if v, ok := fields[keyName]; ok {
		if err := json.Unmarshal(v, &n.Name); err != nil {
			return nil, errors.Errorf("%w: item name must be a string, got %s", ErrInvalid, string(v))
		}
	}

	if children, ok := fields[keyItem]; ok {
		n.group = true
		n.Items = []*Node{}
		items, err := decodeItems(children)
		if err != nil {
			return nil, errors.Errorf("decoding group %q: %w", n.Name, err)
		}
		for _, it := range items {
			n.Add(it)
		}
	} else if n.ID == "" {
		n.ID = uuid.NewString()
	}

	for k, v := range fields {
		if k == keyID || k == keyName || k == keyItem {
			continue
		}
		n.raw[k] = v
	}

	return n, nil
}

// 📤 Encode renders the collection as indented JSON
func (c *Collection) Encode() ([]byte, error) {
	var buf bytes.Buffer

	info := make(map[string]json.RawMessage, len(c.info)+1)
	for k, v := range c.info {
		info[k] = v
	}
	nameJSON, err := json.Marshal(c.Root.Name)
	if err != nil {
		return nil, errors.Errorf("encoding name: %w", err)
	}
	info[keyName] = nameJSON

	buf.WriteByte('{')
	if err := writeObject(&buf, keyInfo, info, []string{"_postman_id", keyName}); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeItems(&buf, c.Root.Items); err != nil {
		return nil, err
	}
	if err := writeFields(&buf, c.Root.raw, true); err != nil {
		return nil, err
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, errors.Errorf("indenting collection: %w", err)
	}
	return out.Bytes(), nil
}

func writeItems(buf *bytes.Buffer, items []*Node) error {
	buf.WriteString(`"item":[`)
	for i, n := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeNode(buf, n); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeNode(buf *bytes.Buffer, n *Node) error {
	buf.WriteByte('{')
	if n.ID != "" {
		if err := writeKV(buf, keyID, n.ID); err != nil {
			return err
		}
		buf.WriteByte(',')
	}
	if err := writeKV(buf, keyName, n.Name); err != nil {
		return err
	}
	if n.group {
		buf.WriteByte(',')
		if err := writeItems(buf, n.Items); err != nil {
			return err
		}
	}
	if err := writeFields(buf, n.raw, true); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func writeKV(buf *bytes.Buffer, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return errors.Errorf("encoding %s: %w", key, err)
	}
	k, _ := json.Marshal(key)
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(b)
	return nil
}

// writeFields writes preserved fields in sorted key order
func writeFields(buf *bytes.Buffer, fields map[string]json.RawMessage, leadingComma bool) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if leadingComma || i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKV(buf, k, fields[k]); err != nil {
			return err
		}
	}
	return nil
}

func writeObject(buf *bytes.Buffer, key string, fields map[string]json.RawMessage, first []string) error {
	k, _ := json.Marshal(key)
	buf.Write(k)
	buf.WriteString(":{")
	rest := make(map[string]json.RawMessage, len(fields))
	for fk, fv := range fields {
		rest[fk] = fv
	}
	wrote := 0
	for _, fk := range first {
		v, ok := rest[fk]
		if !ok {
			continue
		}
		if wrote > 0 {
			buf.WriteByte(',')
		}
		if err := writeKV(buf, fk, v); err != nil {
			return err
		}
		delete(rest, fk)
		wrote++
	}
	if err := writeFields(buf, rest, wrote > 0); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

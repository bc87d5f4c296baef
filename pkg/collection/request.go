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
	"strings"

	"github.com/tidwall/gjson"
)

// Method returns the upper-cased HTTP method of a leaf request, GET when unset
func (n *Node) Method() string {
	req := n.raw["request"]
	if len(req) == 0 {
		return ""
	}
	m := gjson.GetBytes(req, "method").String()
	if m == "" {
		return "GET"
	}
	return strings.ToUpper(m)
}

// Path returns the URL path of a leaf request with :var segments written as {var}
func (n *Node) Path() string {
	req := n.raw["request"]
	if len(req) == 0 {
		return ""
	}

	parsed := gjson.ParseBytes(req)
	if parsed.Type == gjson.String {
		return normalizePath(parsed.String())
	}

	u := parsed.Get("url")
	switch {
	case u.Type == gjson.String:
		return normalizePath(u.String())
	case u.Get("path").IsArray():
		var segs []string
		for _, s := range u.Get("path").Array() {
			if s.Type == gjson.String {
				segs = append(segs, s.String())
			} else {
				segs = append(segs, s.Get("value").String())
			}
		}
		return normalizePath("/" + strings.Join(segs, "/"))
	default:
		return normalizePath(u.Get("raw").String())
	}
}

// OperationKey is METHOD::/path, the form classification targets match against
func (n *Node) OperationKey() string {
	return n.Method() + "::" + n.Path()
}

func normalizePath(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.Index(raw, "://"); i >= 0 {
		raw = raw[i+3:]
		if j := strings.Index(raw, "/"); j >= 0 {
			raw = raw[j:]
		} else {
			raw = ""
		}
	}
	// drop a leading {{baseUrl}} style host variable
	if strings.HasPrefix(raw, "{{") {
		if j := strings.Index(raw, "}}"); j >= 0 {
			raw = raw[j+2:]
		}
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}

	segs := strings.Split(raw, "/")
	for i, s := range segs {
		if strings.HasPrefix(s, ":") && len(s) > 1 {
			segs[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segs, "/")
}

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

package provider

import (
	"context"
	"net/http"
)

func init() {
	Register("http", NewHTTP)
	Register("https", NewHTTP)
}

// 🌐 HTTP downloads documents from plain URLs
type HTTP struct {
	client *http.Client
}

func NewHTTP(ctx context.Context, opts Options) (Provider, error) {
	return &HTTP{client: opts.HTTPClient}, nil
}

func (h *HTTP) Fetch(ctx context.Context, location string) ([]byte, error) {
	body, err := DownloadFile(ctx, h.client, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return ReadDocument(body)
}

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

// Package postman implements remote.Store against the Postman API.
package postman

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/walteh/colsync/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultBaseURL is the public Postman API
	DefaultBaseURL = "https://api.getpostman.com"

	defaultMaxRetries = 3
	defaultBaseDelay  = 250 * time.Millisecond
	defaultMaxDelay   = 5 * time.Second
)

var _ remote.Store = (*Client)(nil)

func init() {
	remote.RegisterStore("postman", func(ctx context.Context, opts remote.Options) (remote.Store, error) {
		return NewClient(opts)
	})
}

// HTTPError is a non-2xx response that was not retried further
type HTTPError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Name != "" || e.Message != "" {
		return fmt.Sprintf("postman api returned %d: %s: %s", e.StatusCode, e.Name, e.Message)
	}
	return fmt.Sprintf("postman api returned %d", e.StatusCode)
}

// 📮 Client talks to the Postman API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// 🏭 NewClient creates a Postman API client
func NewClient(opts remote.Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("postman api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		httpClient: httpClient,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
	}, nil
}

func (c *Client) FindWorkspaceByName(ctx context.Context, name string) (*remote.Workspace, error) {
	payload, err := c.doJSON(ctx, http.MethodGet, "/workspaces", nil)
	if err != nil {
		return nil, errors.Errorf("listing workspaces: %w", err)
	}

	var out *remote.Workspace
	gjson.GetBytes(payload, "workspaces").ForEach(func(_, ws gjson.Result) bool {
		if ws.Get("name").String() != name {
			return true
		}
		out = &remote.Workspace{
			ID:   ws.Get("id").String(),
			Name: ws.Get("name").String(),
			Type: ws.Get("type").String(),
		}
		return false
	})

	zerolog.Ctx(ctx).Debug().Str("workspace", name).Bool("found", out != nil).Msg("looked up workspace")
	return out, nil
}

func (c *Client) FindCollectionByName(ctx context.Context, name string) (*remote.CollectionHandle, error) {
	payload, err := c.doJSON(ctx, http.MethodGet, "/collections", nil)
	if err != nil {
		return nil, errors.Errorf("listing collections: %w", err)
	}
	out := findCollection(gjson.GetBytes(payload, "collections"), name)

	zerolog.Ctx(ctx).Debug().Str("collection", name).Bool("found", out != nil).Msg("looked up collection")
	return out, nil
}

func (c *Client) FindWorkspaceCollectionByName(ctx context.Context, workspaceID, name string) (*remote.CollectionHandle, error) {
	payload, err := c.doJSON(ctx, http.MethodGet, "/workspaces/"+url.PathEscape(workspaceID), nil)
	if err != nil {
		return nil, errors.Errorf("reading workspace %s: %w", workspaceID, err)
	}
	out := findCollection(gjson.GetBytes(payload, "workspace.collections"), name)

	zerolog.Ctx(ctx).Debug().
		Str("workspace_id", workspaceID).
		Str("collection", name).
		Bool("found", out != nil).
		Msg("looked up workspace collection")
	return out, nil
}

func findCollection(list gjson.Result, name string) *remote.CollectionHandle {
	var out *remote.CollectionHandle
	list.ForEach(func(_, col gjson.Result) bool {
		if col.Get("name").String() != name {
			return true
		}
		out = &remote.CollectionHandle{
			UID:  col.Get("uid").String(),
			Name: col.Get("name").String(),
		}
		return false
	})
	return out
}

func (c *Client) CreateCollection(ctx context.Context, doc []byte, workspaceID string) (*remote.PushResponse, error) {
	path := "/collections"
	if workspaceID != "" {
		q := url.Values{}
		q.Set("workspace", workspaceID)
		path += "?" + q.Encode()
	}
	return c.push(ctx, http.MethodPost, path, doc)
}

func (c *Client) UpdateCollection(ctx context.Context, doc []byte, uid, workspaceID string) (*remote.PushResponse, error) {
	// the update endpoint is addressed by uid alone
	zerolog.Ctx(ctx).Debug().Str("uid", uid).Str("workspace_id", workspaceID).Msg("updating collection")
	return c.push(ctx, http.MethodPut, "/collections/"+url.PathEscape(uid), doc)
}

func (c *Client) push(ctx context.Context, method, path string, doc []byte) (*remote.PushResponse, error) {
	if !json.Valid(doc) {
		return nil, errors.New("collection document is not valid json")
	}
	body := map[string]json.RawMessage{"collection": doc}

	payload, err := c.doJSON(ctx, method, path, body)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			return &remote.PushResponse{
				Status: remote.StatusFail,
				Error:  &remote.APIError{Name: httpErr.Name, Message: httpErr.Message},
			}, nil
		}
		return nil, err
	}

	col := gjson.GetBytes(payload, "collection")
	return &remote.PushResponse{
		Status: remote.StatusSuccess,
		Collection: &remote.CollectionHandle{
			UID:  col.Get("uid").String(),
			Name: col.Get("name").String(),
		},
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method, requestPath string, body any) ([]byte, error) {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, errors.Errorf("encoding request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, bodyReader)
		if err != nil {
			return nil, errors.Errorf("creating request: %w", err)
		}
		req.Header.Set("X-Api-Key", c.apiKey)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				if waitErr := waitWithContext(ctx, c.retryDelay(attempt+1, "")); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, errors.Errorf("calling postman api: %w", err)
		}
		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, errors.Errorf("reading response: %w", readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return payload, nil
		}

		if (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500) && attempt < c.maxRetries {
			zerolog.Ctx(ctx).Debug().
				Int("status", resp.StatusCode).
				Int("attempt", attempt+1).
				Str("path", requestPath).
				Msg("retrying postman api call")
			if waitErr := waitWithContext(ctx, c.retryDelay(attempt+1, resp.Header.Get("Retry-After"))); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Name:       gjson.GetBytes(payload, "error.name").String(),
			Message:    gjson.GetBytes(payload, "error.message").String(),
		}
	}
}

func (c *Client) retryDelay(attempt int, retryAfterHeader string) time.Duration {
	maxDelay := c.maxDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}
	if retryAfter := parseRetryAfter(retryAfterHeader); retryAfter > 0 {
		return min(retryAfter, maxDelay)
	}
	delay := c.baseDelay
	if delay <= 0 {
		delay = defaultBaseDelay
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	return min(delay, maxDelay)
}

func parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if ts, err := http.ParseTime(header); err == nil {
		if delta := time.Until(ts); delta > 0 {
			return delta
		}
	}
	return 0
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

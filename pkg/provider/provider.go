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
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// maxDocumentSize caps what a source may return
const maxDocumentSize = 64 << 20

// 🔌 Provider fetches a collection document from one kind of location
type Provider interface {
	// 📄 Fetch returns the raw document stored at location
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Options are shared by every provider factory
type Options struct {
	Fs          afero.Fs
	HTTPClient  *http.Client
	GitHubToken string
	// GitHubBaseURL points the github provider at another API host
	GitHubBaseURL string
}

// 🏭 Factory creates a new provider
type Factory func(ctx context.Context, opts Options) (Provider, error)

var (
	// 🗺️ providers is a map of location schemes to factories
	providers = make(map[string]Factory)
)

// 📝 Register registers a provider factory for a location scheme
func Register(scheme string, factory Factory) {
	providers[scheme] = factory
}

// 🎯 Get returns a provider factory by scheme
func Get(scheme string) Factory {
	return providers[scheme]
}

// Schemes lists the registered location schemes in sorted order
func Schemes() []string {
	known := make([]string, 0, len(providers))
	for k := range providers {
		known = append(known, k)
	}
	sort.Strings(known)
	return known
}

// Scheme returns the scheme of location. Plain paths are "file".
func Scheme(location string) string {
	scheme, _, ok := strings.Cut(location, "://")
	if !ok || scheme == "" || strings.ContainsAny(scheme, "/\\.") {
		return "file"
	}
	return strings.ToLower(scheme)
}

// 📥 Fetch loads the document at location with the provider registered for its scheme
func Fetch(ctx context.Context, location string, opts Options) ([]byte, error) {
	if location == "" {
		return nil, errors.New("source location is required")
	}

	scheme := Scheme(location)
	factory := Get(scheme)
	if factory == nil {
		return nil, errors.Errorf("no provider for scheme %q, options: %s", scheme, strings.Join(Schemes(), ", "))
	}

	p, err := factory(ctx, opts)
	if err != nil {
		return nil, errors.Errorf("creating %s provider: %w", scheme, err)
	}

	zerolog.Ctx(ctx).Debug().Str("scheme", scheme).Str("location", location).Msg("fetching collection source")

	data, err := p.Fetch(ctx, location)
	if err != nil {
		return nil, errors.Errorf("fetching %s: %w", location, err)
	}
	return data, nil
}

// 📥 DownloadFile downloads a file from a URL
func DownloadFile(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Errorf("making request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// ReadDocument reads a document body up to maxDocumentSize
func ReadDocument(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, errors.Errorf("reading document: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, errors.Errorf("document exceeds %d bytes", maxDocumentSize)
	}
	return data, nil
}

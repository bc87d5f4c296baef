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

package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"github.com/walteh/colsync/pkg/provider"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/oauth2"
)

func init() {
	provider.Register("github", New)
}

// 🎯 Provider reads collection documents from GitHub repository contents
type Provider struct {
	client     *github.Client
	httpClient *http.Client
}

// 🏭 New creates a new GitHub provider. Public repositories work without a token.
func New(ctx context.Context, opts provider.Options) (provider.Provider, error) {
	httpClient := opts.HTTPClient
	if opts.GitHubToken != "" {
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: opts.GitHubToken},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(httpClient)

	if opts.GitHubBaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.GitHubBaseURL, "/") + "/")
		if err != nil {
			return nil, errors.Errorf("parsing github base url: %w", err)
		}
		client.BaseURL = base
	}

	return &Provider{
		client:     client,
		httpClient: httpClient,
	}, nil
}

// Location is a parsed github://owner/repo/path[@ref] address
type Location struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// 🔍 ParseLocation parses a github:// location
func ParseLocation(location string) (*Location, error) {
	rest, ok := strings.CutPrefix(location, "github://")
	if !ok {
		return nil, errors.Errorf("invalid github location: %s", location)
	}

	loc := &Location{}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		loc.Ref = rest[i+1:]
		rest = rest[:i]
		if loc.Ref == "" {
			return nil, errors.Errorf("empty ref in github location: %s", location)
		}
	}

	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || strings.Trim(parts[2], "/") == "" {
		return nil, errors.Errorf("github location must be github://owner/repo/path[@ref]: %s", location)
	}

	loc.Owner = parts[0]
	loc.Repo = parts[1]
	loc.Path = strings.Trim(parts[2], "/")
	return loc, nil
}

// 📄 Fetch retrieves the file contents at location
func (p *Provider) Fetch(ctx context.Context, location string) ([]byte, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("owner", loc.Owner).
		Str("repo", loc.Repo).
		Str("path", loc.Path).
		Str("ref", loc.Ref).
		Msg("getting file from github")

	content, dir, _, err := p.client.Repositories.GetContents(ctx, loc.Owner, loc.Repo, loc.Path, &github.RepositoryContentGetOptions{
		Ref: loc.Ref,
	})
	if err != nil {
		return nil, errors.Errorf("getting file content: %w", err)
	}
	if content == nil {
		return nil, errors.Errorf("%s is a directory with %d entries, not a file", loc.Path, len(dir))
	}

	// files over 1MB come back without inline content
	if content.GetEncoding() == "none" && content.GetDownloadURL() != "" {
		body, err := provider.DownloadFile(ctx, p.httpClient, content.GetDownloadURL())
		if err != nil {
			return nil, errors.Errorf("downloading large file: %w", err)
		}
		defer body.Close()
		return provider.ReadDocument(body)
	}

	data, err := content.GetContent()
	if err != nil {
		return nil, errors.Errorf("decoding content: %w", err)
	}

	return []byte(data), nil
}

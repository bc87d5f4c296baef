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

package opts

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/colsync/pkg/cache"
	"github.com/walteh/colsync/pkg/config"
	"github.com/walteh/colsync/pkg/log"
	"github.com/walteh/colsync/pkg/operation"
	"github.com/walteh/colsync/pkg/provider"
	"github.com/walteh/colsync/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// DefaultConfigFiles are tried in order when no config file is given
var DefaultConfigFiles = []string{".colsync.yaml", ".colsync.yml", ".colsync.hcl", ".colsync.json"}

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	EnvFiles   []string
	Debug      bool

	Fs         afero.Fs
	UserLogger *log.UserLogger
	Console    *log.Logger
}

// ConfigPath returns the config file to load, or "" when none exists
func (o *RootOpts) ConfigPath() (string, error) {
	if o.ConfigFile != "" {
		return o.ConfigFile, nil
	}
	for _, candidate := range DefaultConfigFiles {
		ok, err := afero.Exists(o.Fs, candidate)
		if err != nil {
			return "", errors.Errorf("checking %s: %w", candidate, err)
		}
		if ok {
			return candidate, nil
		}
	}
	return "", nil
}

// Resolve loads the configuration with flag overrides applied
func (o *RootOpts) Resolve(ctx context.Context, override func(*config.Config)) (*config.Config, error) {
	path, err := o.ConfigPath()
	if err != nil {
		return nil, err
	}

	e, err := config.LoadEnv(ctx, o.EnvFiles...)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Resolve(ctx, o.Fs, path, e, override)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Str("config", cfg.String()).Msg("resolved configuration")
	return cfg, nil
}

// OperationOptions builds the dependencies of the pipeline for cfg
func (o *RootOpts) OperationOptions(ctx context.Context, cfg *config.Config) (operation.Options, error) {
	opts := operation.Options{
		Config:  cfg,
		Fs:      o.Fs,
		Console: o.Console,
		Provider: provider.Options{
			Fs:          o.Fs,
			GitHubToken: cfg.GitHubToken,
		},
	}

	if cfg.Sync.Enabled {
		store, err := remote.NewStore(ctx, cfg.Sync.Store, remote.Options{
			APIKey:  cfg.Sync.APIKey,
			BaseURL: cfg.Sync.BaseURL,
		})
		if err != nil {
			return opts, errors.Errorf("creating %s store: %w", cfg.Sync.Store, err)
		}
		opts.Store = store
		opts.Cache = cache.Load(ctx, o.Fs, cfg.Sync.CacheFile)
	}

	return opts, nil
}

// Settings summarizes cfg for the user
func Settings(cfg *config.Config) []log.Setting {
	sync := "disabled"
	if cfg.Sync.Enabled {
		sync = cfg.Sync.Store
	}
	newman := "disabled"
	if cfg.Newman.Enabled {
		newman = cfg.Newman.Command
		if cfg.Newman.BaseURL != "" {
			newman += " @ " + cfg.Newman.BaseURL
		}
	}
	return []log.Setting{
		{Key: "Source", Value: cfg.Source},
		{Key: "Output", Value: cfg.Output},
		{Key: "Group", Value: cfg.GroupName},
		{Key: "Newman", Value: newman},
		{Key: "Sync", Value: sync},
		{Key: "Workspace", Value: cfg.Sync.WorkspaceName},
		{Key: "Postman UID", Value: cfg.Sync.PostmanUID},
		{Key: "Cache", Value: cfg.Sync.CacheFile},
	}
}

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

package config

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/colsync/pkg/cache"
	"github.com/walteh/colsync/pkg/classify"
	"github.com/walteh/colsync/pkg/status"
	"github.com/walteh/colsync/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalid marks configuration errors
var ErrInvalid = errors.Base("invalid configuration")

const (
	// DefaultGroupName is the group contract tests are bundled into
	DefaultGroupName = "Contract Tests"
	// DefaultStore is the remote store used for sync
	DefaultStore = "postman"
	// DefaultNewmanCommand is the executable the newman stage runs
	DefaultNewmanCommand = "newman"
)

// Parser reads a configuration file format
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// Register adds a parser to the registry
func Register(p Parser) {
	parsers = append(parsers, p)
}

// GetParser returns the first parser that accepts filename
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// SyncConfig controls publishing to the remote store
type SyncConfig struct {
	Enabled       bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" hcl:"enabled,optional"`
	Store         string `json:"store,omitempty" yaml:"store,omitempty" hcl:"store,optional"`
	PostmanUID    string `json:"postman_uid,omitempty" yaml:"postman_uid,omitempty" hcl:"postman_uid,optional"`
	WorkspaceName string `json:"workspace_name,omitempty" yaml:"workspace_name,omitempty" hcl:"workspace_name,optional"`
	BaseURL       string `json:"base_url,omitempty" yaml:"base_url,omitempty" hcl:"base_url,optional"`
	CacheFile     string `json:"cache_file,omitempty" yaml:"cache_file,omitempty" hcl:"cache_file,optional"`

	// APIKey only comes from the environment
	APIKey string `json:"-" yaml:"-"`
}

// 🧪 NewmanConfig controls running the written collection with newman before sync
type NewmanConfig struct {
	Enabled       bool     `json:"enabled,omitempty" yaml:"enabled,omitempty" hcl:"enabled,optional"`
	Command       string   `json:"command,omitempty" yaml:"command,omitempty" hcl:"command,optional"`
	BaseURL       string   `json:"base_url,omitempty" yaml:"base_url,omitempty" hcl:"base_url,optional"`
	IterationData string   `json:"iteration_data,omitempty" yaml:"iteration_data,omitempty" hcl:"iteration_data,optional"`
	Args          []string `json:"args,omitempty" yaml:"args,omitempty" hcl:"args,optional"`
}

// 📋 Config is the full run configuration
type Config struct {
	Source        string                 `json:"source,omitempty" yaml:"source,omitempty"`
	Output        string                 `json:"output,omitempty" yaml:"output,omitempty"`
	GroupName     string                 `json:"group_name,omitempty" yaml:"group_name,omitempty"`
	ContractTests []classify.Target      `json:"contract_tests,omitempty" yaml:"contract_tests,omitempty"`
	Replacements  []text.ReplacementRule `json:"replacements,omitempty" yaml:"replacements,omitempty"`
	Newman        NewmanConfig           `json:"newman,omitempty" yaml:"newman,omitempty"`
	Sync          SyncConfig             `json:"sync,omitempty" yaml:"sync,omitempty"`

	// GitHubToken only comes from the environment
	GitHubToken string `json:"-" yaml:"-"`
}

// 📥 Load reads the config file at path. An empty path yields an empty config.
func Load(ctx context.Context, fs afero.Fs, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	if path == "" {
		return &Config{}, nil
	}
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%w: no parser found for file: %s", ErrInvalid, path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrInvalid, err.Error())
	}

	return cfg, nil
}

// ApplyEnv fills settings the file left empty from the environment
func (cfg *Config) ApplyEnv(e *Env) {
	if e == nil {
		return
	}
	if cfg.Sync.PostmanUID == "" {
		cfg.Sync.PostmanUID = e.PostmanCollectionUID
	}
	if cfg.Sync.WorkspaceName == "" {
		cfg.Sync.WorkspaceName = e.PostmanWorkspaceName
	}
	if cfg.Sync.BaseURL == "" {
		cfg.Sync.BaseURL = e.PostmanBaseURL
	}
	if cfg.Sync.CacheFile == "" {
		cfg.Sync.CacheFile = e.CacheFile
	}
	cfg.Sync.APIKey = e.PostmanAPIKey
	cfg.GitHubToken = e.GitHubToken
}

// ApplyDefaults sets defaults for anything still empty
func (cfg *Config) ApplyDefaults() {
	if cfg.GroupName == "" {
		cfg.GroupName = DefaultGroupName
	}
	if cfg.Sync.Store == "" {
		cfg.Sync.Store = DefaultStore
	}
	if cfg.Sync.CacheFile == "" {
		cfg.Sync.CacheFile = cache.DefaultPath
	}
	if cfg.Newman.Command == "" {
		cfg.Newman.Command = DefaultNewmanCommand
	}
}

// 🔍 Validate checks the configuration is usable
func (cfg *Config) Validate() error {
	if cfg.Output != "" {
		if err := status.ValidateOutputPath(cfg.Output); err != nil {
			return errors.Errorf("%w: output: %s", ErrInvalid, err.Error())
		}
	}
	for i, t := range cfg.ContractTests {
		if err := t.Validate(); err != nil {
			return errors.Errorf("%w: contract test %d: %s", ErrInvalid, i, err.Error())
		}
	}
	if err := text.NewSimpleTextReplacer().ValidateRules(cfg.Replacements); err != nil {
		return errors.Errorf("%w: replacements: %s", ErrInvalid, err.Error())
	}
	if cfg.Newman.Enabled && cfg.Output == "" {
		return errors.Errorf("%w: newman needs an output file to run", ErrInvalid)
	}
	if cfg.Sync.Enabled && cfg.Sync.APIKey == "" {
		return errors.Errorf("%w: POSTMAN_API_KEY is required when sync is enabled", ErrInvalid)
	}
	return nil
}

// Resolve loads path, lets override apply command line flags, then fills
// the rest from env and defaults before validating
func Resolve(ctx context.Context, fs afero.Fs, path string, e *Env, override func(*Config)) (*Config, error) {
	cfg, err := Load(ctx, fs, path)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	cfg.ApplyEnv(e)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) String() string {
	target := "local only"
	if cfg.Sync.Enabled {
		target = cfg.Sync.Store
		if cfg.Sync.WorkspaceName != "" {
			target += "/" + cfg.Sync.WorkspaceName
		}
	}
	return fmt.Sprintf("%s -> %s (%s)", cfg.Source, cfg.Output, target)
}

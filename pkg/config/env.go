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

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🌱 Env holds settings sourced from environment variables
type Env struct {
	PostmanAPIKey        string `env:"POSTMAN_API_KEY"`
	PostmanCollectionUID string `env:"POSTMAN_COLLECTION_UID"`
	PostmanWorkspaceName string `env:"POSTMAN_WORKSPACE_NAME"`
	PostmanBaseURL       string `env:"POSTMAN_BASE_URL"`
	GitHubToken          string `env:"GITHUB_TOKEN"`
	CacheFile            string `env:"COLSYNC_CACHE_FILE"`
}

// LoadEnv reads the given .env files when present, then parses the environment.
// Variables already set in the process win over .env values.
func LoadEnv(ctx context.Context, envFiles ...string) (*Env, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Strs("files", envFiles).Msg("no env file loaded")
		}
	}

	e := &Env{}
	if err := env.Parse(e); err != nil {
		return nil, errors.Errorf("parsing environment: %w", err)
	}
	return e, nil
}

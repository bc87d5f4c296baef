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
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register("file", NewLocal)
}

// 📂 Local reads documents from a filesystem
type Local struct {
	fs afero.Fs
}

// NewLocal creates a provider on opts.Fs, or the OS filesystem when unset
func NewLocal(ctx context.Context, opts Options) (Provider, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Local{fs: fs}, nil
}

func (l *Local) Fetch(ctx context.Context, location string) ([]byte, error) {
	path := strings.TrimPrefix(location, "file://")

	f, err := l.fs.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return ReadDocument(f)
}

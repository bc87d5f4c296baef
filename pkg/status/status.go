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

package status

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// ErrUnsupportedOutput is returned for output paths that are not .json files
var ErrUnsupportedOutput = errors.Base("output file must have a .json extension")

// 📊 FileStatus represents the outcome of writing a file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusNew                  // File didn't exist before
	StatusModified             // File existed with different content
	StatusUnchanged            // File existed with the same content
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// 📄 FileInfo describes a written output file
type FileInfo struct {
	Path     string     // Path the file was written to
	Status   FileStatus // Outcome of the write
	Size     int64      // File size in bytes
	Checksum string     // Content hash for change detection
	Inserted int        // Lines added compared to the previous content
	Deleted  int        // Lines removed compared to the previous content
}

// 🔧 Manager writes output files and reports what changed
type Manager struct {
	fs        afero.Fs
	formatter FileFormatter
}

// 🏭 New creates a new status manager on fs
func New(fs afero.Fs) *Manager {
	return &Manager{
		fs:        fs,
		formatter: NewDefaultFileFormatter(),
	}
}

// 🔍 calculateChecksum generates a SHA-256 hash of the content
func calculateChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// ValidateOutputPath rejects anything that is not a .json file path
func ValidateOutputPath(path string) error {
	if path == "" {
		return errors.Errorf("%w: empty path", ErrUnsupportedOutput)
	}
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return errors.Errorf("%w: %s", ErrUnsupportedOutput, path)
	}
	return nil
}

// 💾 WriteOutput writes content to path unless the file already holds it
func (m *Manager) WriteOutput(ctx context.Context, path string, content []byte) (*FileInfo, error) {
	logger := zerolog.Ctx(ctx)

	if err := ValidateOutputPath(path); err != nil {
		return nil, err
	}

	info := &FileInfo{
		Path:     path,
		Status:   StatusNew,
		Size:     int64(len(content)),
		Checksum: calculateChecksum(content),
	}

	previous, err := afero.ReadFile(m.fs, path)
	switch {
	case err == nil:
		if calculateChecksum(previous) == info.Checksum {
			info.Status = StatusUnchanged
			logger.Info().Str("path", path).Msg(m.formatter.FormatFileOperation(path, info.Status))
			return info, nil
		}
		info.Status = StatusModified
		info.Inserted, info.Deleted = DiffSummary(previous, content)
		logger.Debug().
			Str("path", path).
			Int("inserted", info.Inserted).
			Int("deleted", info.Deleted).
			Msg("output content changed")
	case !os.IsNotExist(err):
		return nil, errors.Errorf("reading previous output: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := m.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Errorf("creating parent directories: %w", err)
		}
	}

	if err := WriteFileAtomic(m.fs, path, content, 0o644); err != nil {
		return nil, errors.Errorf("writing output: %w", err)
	}

	logger.Info().Str("path", path).Msg(m.formatter.FormatFileOperation(path, info.Status))
	return info, nil
}

// ⚛️ WriteFileAtomic writes data to a temp file next to path and renames it into place
func WriteFileAtomic(fs afero.Fs, path string, data []byte, mode os.FileMode) error {
	tmp, err := afero.TempFile(fs, filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := fs.Chmod(tmpName, mode); err != nil {
		return errors.Errorf("setting file mode: %w", err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}
	committed = true
	return nil
}

// 📝 DiffSummary counts inserted and deleted lines between two versions
func DiffSummary(before, after []byte) (inserted, deleted int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		if !strings.HasSuffix(d.Text, "\n") {
			n++
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += n
		case diffmatchpatch.DiffDelete:
			deleted += n
		}
	}
	return inserted, deleted
}

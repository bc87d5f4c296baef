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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/colsync/pkg/status"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_file_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.LogFileOperation(context.Background(), FileOperation{
					Info:         &status.FileInfo{Path: "out/orders.json", Status: status.StatusNew},
					Type:         "collection",
					Replacements: 2,
				})
			},
			wantLogs: []string{
				"✓ out/orders.json                     collection      new",
			},
		},
		{
			name: "log_sync_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.StartSyncOperation(context.Background(), SyncOperation{
					Name:      "Orders API",
					Store:     "postman",
					Workspace: "Team",
				})
				logger.EndSyncOperation(context.Background(), SyncResult{Name: "Orders API", UID: "abc123", Created: true})
			},
			wantLogs: []string{
				"[syncing postman/Team]",
				"◆ Orders API • by name",
				"Postman Name: Orders API",
				"Postman UID:  abc123",
			},
		},
		{
			name: "log_override_sync",
			op: func(t *testing.T, logger *Logger) {
				logger.StartSyncOperation(context.Background(), SyncOperation{
					Name:     "Orders API",
					Store:    "postman",
					Override: "uid-1",
				})
			},
			wantLogs: []string{
				"[syncing postman]",
				"◆ Orders API • uid-1",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("bundling contract tests")
			},
			wantLogs: []string{
				"colsync • bundling contract tests",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Disabled)

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerFiles(t *testing.T) {
	logger := New(io.Discard, zerolog.Disabled)

	info := &status.FileInfo{Path: "a.json", Status: status.StatusModified, Inserted: 1}
	logger.LogFileOperation(context.Background(), FileOperation{Info: info, Type: "collection"})

	files := logger.Files()
	require.Len(t, files, 1, "one file operation expected")
	assert.Same(t, info, files[0].Info, "file info should be kept")
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.InfoLevel)

	ctx := NewContext(context.Background(), logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

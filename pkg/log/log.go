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
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/colsync/pkg/status"
)

// 🎯 FileOperation is a written output file for logging
type FileOperation struct {
	Info         *status.FileInfo // Outcome of the write
	Type         string           // File type shown in the listing
	Replacements int              // Number of replacements made
}

// 📦 SyncOperation is a publish to the remote store for logging
type SyncOperation struct {
	Name      string // Local collection name
	Store     string // Remote store name
	Workspace string // Target workspace, may be empty
	Override  string // Fixed remote collection uid, may be empty
}

// ✅ SyncResult is the identity the remote store reported back
type SyncResult struct {
	Name    string
	UID     string
	Created bool
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *SyncOperation
	files     []FileOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 LogFileOperation logs a written output file
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.files = append(l.files, op)

	fmt.Fprintln(l.console, status.FormatFileLine(op.Info, op.Type))

	l.zlog.Info().
		Str("file", op.Info.Path).
		Str("type", op.Type).
		Str("status", op.Info.Status.String()).
		Int("inserted", op.Info.Inserted).
		Int("deleted", op.Info.Deleted).
		Int("replacements", op.Replacements).
		Msg("file operation")
}

// 📝 StartSyncOperation prints the header of a publish
func (l *Logger) StartSyncOperation(ctx context.Context, op SyncOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op

	target := op.Store
	if op.Workspace != "" {
		target += "/" + op.Workspace
	}
	fmt.Fprintf(l.console, "[syncing %s]\n",
		color.New(color.FgCyan).Sprint(target))

	ref := "by name"
	if op.Override != "" {
		ref = op.Override
	}
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Name),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(ref))

	l.zlog.Info().
		Str("collection", op.Name).
		Str("store", op.Store).
		Str("workspace", op.Workspace).
		Str("override", op.Override).
		Msg("starting sync operation")
}

// 📝 EndSyncOperation prints the identity the remote store reported
func (l *Logger) EndSyncOperation(ctx context.Context, res SyncResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	action := "updated"
	if res.Created {
		action = "created"
	}

	fmt.Fprintf(l.console, "%s %s\n", color.New(color.Faint).Sprint("Postman Name:"), res.Name)
	fmt.Fprintf(l.console, "%s %s\n", color.New(color.Faint).Sprint("Postman UID: "), res.UID)

	ev := l.zlog.Info().
		Str("name", res.Name).
		Str("uid", res.UID).
		Str("action", action)
	if l.currentOp != nil {
		ev = ev.Str("collection", l.currentOp.Name)
	}
	ev.Msg("sync operation complete")

	l.currentOp = nil
}

// Files returns the file operations logged so far
func (l *Logger) Files() []FileOperation {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]FileOperation, len(l.files))
	copy(out, l.files)
	return out
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("colsync")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

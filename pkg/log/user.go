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
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/colsync/pkg/syncer"
	"gitlab.com/tozd/go/errors"
)

// 📢 UserLogger provides user-friendly feedback about a run
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
	out io.Writer
}

// Setting is one line of the run summary
type Setting struct {
	Key   string
	Value string
}

// 🎯 NewUserLogger creates a new user logger writing to out, or stdout when nil
func NewUserLogger(ctx context.Context, out io.Writer) *UserLogger {
	if out == nil {
		out = os.Stdout
	}
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
		out: out,
	}
}

// 📊 LogStateChange logs a change to the overall state
func (u *UserLogger) LogStateChange(description string) {
	pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"}).WithWriter(u.out).Println(description)
	u.log.Info().Msg(description)
}

// 🔍 LogValidation logs validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).WithWriter(u.out).Println(description)
		u.log.Info().Msg(description)
		return
	}
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).WithWriter(u.out).Println(description)
		pterm.Error.WithWriter(u.out).Println(err)
		u.log.Error().Err(err).Msg(description)
		return
	}
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).WithWriter(u.out).Println(description)
	u.log.Warn().Msg(description)
}

// ⚙️ LogSettings prints the resolved settings of a run
func (u *UserLogger) LogSettings(title string, settings []Setting) {
	data := pterm.TableData{}
	ev := u.log.Info()
	for _, s := range settings {
		value := s.Value
		if value == "" {
			value = "-"
		}
		data = append(data, []string{s.Key, value})
		ev = ev.Str(s.Key, s.Value)
	}

	pterm.DefaultSection.WithWriter(u.out).Println(title)
	if err := pterm.DefaultTable.WithData(data).WithWriter(u.out).Render(); err != nil {
		u.log.Debug().Err(err).Msg("rendering settings table")
	}
	ev.Msg(title)
}

// 💥 LogFatal prints why a run stopped. Sync failures get their reason,
// solution and the collection identity.
func (u *UserLogger) LogFatal(err error) {
	var fatal *syncer.FatalError
	if !errors.As(err, &fatal) {
		u.LogValidation(false, "Command failed", err)
		return
	}

	pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).WithWriter(u.out).Println("Collection sync failed")
	lines := []Setting{
		{Key: "Reason", Value: fatal.Reason},
		{Key: "Solution", Value: fatal.Solution},
		{Key: "Local Name", Value: fatal.LocalName},
		{Key: "Postman UID", Value: fatal.RemoteUID},
	}
	for _, l := range lines {
		if l.Value == "" {
			continue
		}
		fmt.Fprintf(u.out, "  %-12s %s\n", l.Key+":", l.Value)
	}

	ev := u.log.Error().
		Str("reason", fatal.Reason).
		Str("solution", fatal.Solution).
		Str("collection", fatal.LocalName).
		Str("uid", fatal.RemoteUID)
	if fatal.APIError != nil {
		ev = ev.Str("api_error", fatal.APIError.Name)
	}
	ev.Msg("collection sync failed")
}

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
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 UserLogger gives user-friendly feedback about file list changes and
// settings validation
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
	out io.Writer
}

// 🎯 NewUserLogger creates a user logger writing to out. Nil means stdout.
func NewUserLogger(ctx context.Context, out io.Writer) *UserLogger {
	if out == nil {
		out = os.Stdout
	}
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
		out: out,
	}
}

func (u *UserLogger) printer(base pterm.PrefixPrinter, prefix string) *pterm.PrefixPrinter {
	return base.WithPrefix(pterm.Prefix{Text: prefix, Style: base.Prefix.Style}).WithWriter(u.out)
}

// 📝 LogFilesAdded reports the outcome of adding files from source
func (u *UserLogger) LogFilesAdded(count int, source string) {
	if count == 0 {
		msg := fmt.Sprintf("No new files found in %s", source)
		u.printer(pterm.Warning, "⚠️").Println(msg)
		u.log.Info().Str("source", source).Msg(msg)
		return
	}

	msg := fmt.Sprintf("Added %d files from %s", count, source)
	u.printer(pterm.Success, "✨").Println(msg)
	u.log.Info().Str("source", source).Int("count", count).Msg(msg)
}

// 📝 LogDirectoryNotFound reports a directory that could not be walked
func (u *UserLogger) LogDirectoryNotFound(dir string, err error) {
	msg := fmt.Sprintf("Folder not found: %s", dir)
	u.printer(pterm.Error, "❌").Println(msg)
	u.log.Error().Err(err).Str("dir", dir).Msg(msg)
}

// 🔍 LogValidation logs validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		u.printer(pterm.Success, "✅").Println(description)
		u.log.Info().Msg(description)
		return
	}

	if err != nil {
		u.printer(pterm.Error, "❌").Println(description + ": " + err.Error())
		u.log.Error().Err(err).Msg(description)
		return
	}

	u.printer(pterm.Warning, "⚠️").Println(description)
	u.log.Warn().Msg(description)
}

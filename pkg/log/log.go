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
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/nullpad/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent file entries
	nameWidth  = 35 // Base width for filename
	countWidth = 9  // Width for the [i/n] counter
)

// 🎯 FileResult is one processed file, as shown on the console
type FileResult struct {
	Index      int    // 1-based position in the batch
	Total      int    // batch size
	Name       string // display name, usually the base name
	OutputPath string // where the result was written
	OK         bool
	BytesAdded int64
	Reason     string // failure reason, empty on success
}

// 📦 BatchInfo describes a run about to start
type BatchInfo struct {
	RunID    string
	Total    int
	Describe string // human summary of the request
}

// 📊 SummaryInfo is the end-of-run tally
type SummaryInfo struct {
	Total      int
	Succeeded  int
	Failed     int
	BytesAdded int64
	Duration   time.Duration
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	batch   *BatchInfo
	results int
}

// 🏭 New creates a new logger. Console lines go to console, structured
// records to zlog.
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
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

// 📝 formatFileResult formats a file result for display
func (l *Logger) formatFileResult(r FileResult) string {
	symbol := color.New(color.FgGreen).Sprint("✓")
	detail := color.New(color.FgGreen).Sprint("+" + status.FormatSize(r.BytesAdded))
	if !r.OK {
		symbol = color.New(color.FgRed).Sprint("✗")
		detail = color.New(color.FgRed).Sprint(r.Reason)
	}

	counter := fmt.Sprintf("[%d/%d]", r.Index, r.Total)

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		symbol,
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", countWidth, counter)),
		fmt.Sprintf("%-*s", nameWidth, r.Name),
		detail)
}

// 📝 LogFileResult logs the outcome of one file
func (l *Logger) LogFileResult(ctx context.Context, r FileResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.results++

	fmt.Fprintln(l.console, l.formatFileResult(r))

	ev := l.zlog.Info()
	if !r.OK {
		ev = l.zlog.Warn().Str("reason", r.Reason)
	}
	ev.Str("file", r.Name).
		Str("output", r.OutputPath).
		Int("index", r.Index).
		Int("total", r.Total).
		Int64("bytes_added", r.BytesAdded).
		Msg("file processed")
}

// 📝 StartBatch prints the header of a run
func (l *Logger) StartBatch(ctx context.Context, b BatchInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.batch = &b
	l.results = 0

	fmt.Fprintf(l.console, "[expanding %s]\n",
		color.New(color.FgCyan).Sprintf("%d files", b.Total))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(b.Describe),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(shortID(b.RunID)))

	l.zlog.Info().
		Str("run_id", b.RunID).
		Int("total", b.Total).
		Str("request", b.Describe).
		Msg("starting batch")
}

// 📝 EndBatch prints the summary of a run
func (l *Logger) EndBatch(ctx context.Context, s SummaryInfo) {
	l.mu.Lock()
	if l.batch == nil {
		l.mu.Unlock()
		return
	}

	fmt.Fprintln(l.console)
	fmt.Fprintf(l.console, "%s %d\n", color.New(color.Faint).Sprint("Total files:"), s.Total)
	fmt.Fprintf(l.console, "%s %s\n", color.New(color.Faint).Sprint("Succeeded:  "), color.New(color.FgGreen).Sprint(s.Succeeded))
	fmt.Fprintf(l.console, "%s %s\n", color.New(color.Faint).Sprint("Failed:     "), color.New(color.FgRed).Sprint(s.Failed))
	fmt.Fprintf(l.console, "%s %s\n", color.New(color.Faint).Sprint("Total added:"), status.FormatSize(s.BytesAdded))

	l.zlog.Info().
		Str("run_id", l.batch.RunID).
		Int("total", s.Total).
		Int("succeeded", s.Succeeded).
		Int("failed", s.Failed).
		Int64("bytes_added", s.BytesAdded).
		Dur("duration", s.Duration).
		Int("results_logged", l.results).
		Msg("batch complete")

	l.batch = nil
	l.results = 0
	l.mu.Unlock()

	if s.Failed > 0 {
		l.Warningf("%d of %d files could not be expanded", s.Failed, s.Total)
		return
	}
	l.Successf("expanded %d files", s.Succeeded)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
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
	name := color.New(color.Bold, color.FgCyan).Sprint("nullpad")
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

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

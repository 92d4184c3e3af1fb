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

// Package status formats run progress, per-file results and sizes for people.
package status

import (
	"fmt"
)

const (
	kb = 1024
	mb = kb * 1024
	gb = mb * 1024
)

// 📏 FormatSize renders a byte count with the largest fitting unit.
//
//	512        -> "512 bytes"
//	1536       -> "1.50 KB"
//	5242880    -> "5.00 MB"
func FormatSize(bytes int64) string {
	size := float64(bytes)
	switch {
	case bytes < kb:
		return fmt.Sprintf("%.0f bytes", size)
	case bytes < mb:
		return fmt.Sprintf("%.2f KB", size/kb)
	case bytes < gb:
		return fmt.Sprintf("%.2f MB", size/mb)
	default:
		return fmt.Sprintf("%.2f GB", size/gb)
	}
}

// FileFormatter defines how run progress is rendered
type FileFormatter interface {
	// FormatProgress formats a progress message
	FormatProgress(current, total int) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// ⏱️ Throttle decides which progress events are worth showing.
//
// A zero or negative Every shows everything.
type Throttle struct {
	Every int
}

// Show reports whether progress at current of total should be rendered.
// The first and last files are always shown.
func (t Throttle) Show(current, total int) bool {
	if t.Every <= 1 || current <= 1 || current >= total {
		return true
	}
	return current%t.Every == 0
}

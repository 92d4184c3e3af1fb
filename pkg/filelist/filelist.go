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

// Package filelist holds the ordered, duplicate-free list of files a run will expand.
package filelist

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/nullpad/pkg/expand"
	"gitlab.com/tozd/go/errors"
)

// ErrDirectoryNotFound is returned by AddFromDirectory for a missing or non-directory path.
var ErrDirectoryNotFound = errors.Base("directory not found")

// 🔒 Guard reports whether a run is active. *expand.Engine satisfies it.
type Guard interface {
	Running() bool
}

// 🔧 Options contains configuration for a List
type Options struct {
	// Guard rejects mutations while it reports a run. Nil never rejects.
	Guard Guard
	// Ignore holds doublestar patterns, matched against slash-separated
	// paths relative to the directory passed to AddFromDirectory.
	Ignore []string
}

// 📁 List is an ordered set of absolute file paths
type List struct {
	guard  Guard
	ignore []string

	mu    sync.RWMutex
	paths []string
	index map[string]struct{}
}

// 🏭 New creates an empty list
func New(opts Options) (*List, error) {
	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	return &List{
		guard:  opts.Guard,
		ignore: slices.Clone(opts.Ignore),
		index:  make(map[string]struct{}),
	}, nil
}

func (l *List) checkGuard() error {
	if l.guard != nil && l.guard.Running() {
		return expand.ErrRunInProgress
	}
	return nil
}

// ➕ Add appends existing regular files. Duplicates and anything else are skipped.
func (l *List) Add(ctx context.Context, paths ...string) (int, error) {
	logger := zerolog.Ctx(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkGuard(); err != nil {
		return 0, err
	}

	added := 0
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			logger.Debug().Err(err).Str("path", p).Msg("skipping unresolvable path")
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.Mode().IsRegular() {
			logger.Debug().Str("path", abs).Msg("skipping, not a regular file")
			continue
		}
		if l.insert(abs) {
			added++
		}
	}
	return added, nil
}

// 📂 AddFromDirectory adds every file under dir, in lexical walk order.
//
// With recursive false only dir's direct children are considered.
func (l *List) AddFromDirectory(ctx context.Context, dir string, recursive bool) (int, error) {
	if err := l.checkGuard(); err != nil {
		return 0, err
	}
	logger := zerolog.Ctx(ctx)

	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, errors.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return 0, errors.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}

	var found []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Errorf("relativizing %s: %w", path, err)
		}
		if l.shouldIgnore(ctx, filepath.ToSlash(rel)) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		found = append(found, path)
		return nil
	})
	if err != nil {
		return 0, errors.Errorf("walking %s: %w", dir, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// a run may have started during the walk
	if err := l.checkGuard(); err != nil {
		return 0, err
	}

	added := 0
	for _, p := range found {
		if l.insert(p) {
			added++
		}
	}

	logger.Debug().Str("dir", root).Int("found", len(found)).Int("added", added).Msg("added directory")
	return added, nil
}

// 🗑️ Clear empties the list and returns how many entries were removed
func (l *List) Clear(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkGuard(); err != nil {
		return 0, err
	}

	removed := len(l.paths)
	l.paths = nil
	l.index = make(map[string]struct{})

	zerolog.Ctx(ctx).Debug().Int("removed", removed).Msg("cleared file list")
	return removed, nil
}

// Snapshot returns a copy of the paths in insertion order.
func (l *List) Snapshot() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.paths)
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.paths)
}

// Contains reports whether path, once made absolute, is in the list.
func (l *List) Contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.index[abs]
	return ok
}

// insert adds p if absent. Callers hold mu.
func (l *List) insert(p string) bool {
	if _, ok := l.index[p]; ok {
		return false
	}
	l.index[p] = struct{}{}
	l.paths = append(l.paths, p)
	return true
}

// 🔍 shouldIgnore checks if a relative path matches any ignore pattern
func (l *List) shouldIgnore(ctx context.Context, rel string) bool {
	for _, pattern := range l.ignore {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Str("pattern", pattern).Str("path", rel).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			zerolog.Ctx(ctx).Debug().Str("file", rel).Str("pattern", pattern).Msg("file ignored by pattern")
			return true
		}
	}
	return false
}

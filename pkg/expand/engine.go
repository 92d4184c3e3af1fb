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

package expand

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/nullpad/pkg/request"
)

// 🔧 Options contains configuration for the engine
type Options struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// NewRunID returns a unique id for each run. Defaults to uuid.NewString.
	NewRunID func() string
}

// 🎮 Engine runs one batch at a time on a background worker
type Engine struct {
	now      func() time.Time
	newRunID func() string

	running atomic.Bool

	mu   sync.Mutex
	done chan struct{} // closed when the current run has delivered its summary
}

// 🏭 New creates a new engine with the given options
func New(opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewRunID == nil {
		opts.NewRunID = uuid.NewString
	}
	return &Engine{
		now:      opts.Now,
		newRunID: opts.NewRunID,
	}
}

// Running reports whether a run is active. It stays true until OnComplete has returned.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// 🏃 StartRun snapshots files and processes them on a new worker goroutine.
//
// It returns ErrRunInProgress, without emitting any event, if a run is active.
func (e *Engine) StartRun(ctx context.Context, files []string, req request.Request, cb Callbacks) error {
	snapshot := slices.Clone(files)
	done := make(chan struct{})

	// running and done change together under mu
	e.mu.Lock()
	if !e.running.CompareAndSwap(false, true) {
		e.mu.Unlock()
		zerolog.Ctx(ctx).Debug().Int("files", len(files)).Msg("rejected run, another run is active")
		return ErrRunInProgress
	}
	e.done = done
	e.mu.Unlock()

	go func() {
		defer close(done)
		defer e.running.Store(false)
		e.run(ctx, snapshot, req, cb)
	}()

	return nil
}

// Wait blocks until the active run, if any, has delivered its summary.
func (e *Engine) Wait() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (e *Engine) run(ctx context.Context, files []string, req request.Request, cb Callbacks) {
	runID := e.newRunID()
	logger := zerolog.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	summary := Summary{
		RunID:   runID,
		Total:   len(files),
		Results: make([]Result, 0, len(files)),
		Started: e.now(),
	}

	logger.Debug().
		Int("files", len(files)).
		Str("request", req.Describe()).
		Msg("starting batch")

	for i, path := range files {
		res := processFile(ctx, i, path, req)

		summary.Results = append(summary.Results, res)
		summary.BytesAdded += res.BytesAdded
		if res.Succeeded() {
			summary.SuccessCount++
		} else {
			summary.FailureCount++
		}

		cb.fileResult(res)
		cb.progress(Progress{
			Index: i + 1,
			Total: len(files),
			Name:  filepath.Base(path),
		})
	}

	summary.Finished = e.now()

	logger.Debug().
		Int("succeeded", summary.SuccessCount).
		Int("failed", summary.FailureCount).
		Int64("bytes_added", summary.BytesAdded).
		Dur("took", summary.Duration()).
		Msg("batch complete")

	cb.complete(summary)
}

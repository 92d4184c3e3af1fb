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
	"time"

	"gitlab.com/tozd/go/errors"
)

// ErrRunInProgress is returned when a run or a mutation is attempted while a run is active.
var ErrRunInProgress = errors.Base("run in progress")

// 🎯 Outcome of processing one file
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
)

func (o Outcome) String() string {
	if o == OutcomeFailure {
		return "failure"
	}
	return "success"
}

// ❌ Reason classifies a per-file failure
type Reason int

const (
	ReasonNone Reason = iota
	ReasonCopyFailed
	ReasonWriteFailed
	ReasonPathNotFound
	ReasonPermissionDenied
)

func (r Reason) String() string {
	switch r {
	case ReasonCopyFailed:
		return "copy failed"
	case ReasonWriteFailed:
		return "write failed"
	case ReasonPathNotFound:
		return "path not found"
	case ReasonPermissionDenied:
		return "permission denied"
	default:
		return ""
	}
}

// 📄 Result is the outcome for a single file. Created once, never mutated.
type Result struct {
	Index      int    // position in the run's snapshot, 0-based
	Path       string // input path
	OutputPath string // where the padded file lives
	Outcome    Outcome
	Reason     Reason
	Err        error // underlying error for failures
	BytesAdded int64 // zero bytes actually written
}

func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// ⏳ Progress is emitted after each file
type Progress struct {
	Index int    // 1-based count of files processed so far
	Total int    // files in the run
	Name  string // base name of the file just processed
}

// 📊 Summary aggregates a finished run
type Summary struct {
	RunID        string
	Total        int
	SuccessCount int
	FailureCount int
	BytesAdded   int64
	Results      []Result // in input order
	Started      time.Time
	Finished     time.Time
}

// Failed reports whether any file in the run failed.
func (s Summary) Failed() bool {
	return s.FailureCount > 0
}

func (s Summary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}

// 🔔 Callbacks receive run events on the worker goroutine. Any of them may be nil.
type Callbacks struct {
	OnProgress   func(Progress)
	OnFileResult func(Result)
	OnComplete   func(Summary)
}

func (c Callbacks) progress(p Progress) {
	if c.OnProgress != nil {
		c.OnProgress(p)
	}
}

func (c Callbacks) fileResult(r Result) {
	if c.OnFileResult != nil {
		c.OnFileResult(r)
	}
}

func (c Callbacks) complete(s Summary) {
	if c.OnComplete != nil {
		c.OnComplete(s)
	}
}

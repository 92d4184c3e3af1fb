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
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/nullpad/pkg/request"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// planConcurrency bounds the number of concurrent stat calls in BuildPlan
const planConcurrency = 8

// 📋 PlannedFile is what a run would do to one file
type PlannedFile struct {
	Index       int
	Path        string
	OutputPath  string
	CurrentSize int64
	BytesToAdd  int64
	Overwrites  bool  // output path differs from input and already exists, or is written earlier in the batch
	SharedWith  int   // index of the earlier file writing the same output, -1 when none
	Err         error // stat failure; the run would report this file as failed
}

// 📋 Plan is a dry run of a batch. Building it never writes.
type Plan struct {
	Request      request.Request
	Files        []PlannedFile
	TotalCurrent int64
	TotalToAdd   int64
	Unreadable   int
}

// AverageSize returns the mean current size of the readable files.
func (p *Plan) AverageSize() int64 {
	readable := int64(len(p.Files) - p.Unreadable)
	if readable <= 0 {
		return 0
	}
	return p.TotalCurrent / readable
}

// 🔍 BuildPlan stats every file and computes the bytes a run would add
func BuildPlan(ctx context.Context, files []string, req request.Request) (*Plan, error) {
	logger := zerolog.Ctx(ctx)

	planned := make([]PlannedFile, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(planConcurrency)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			planned[i] = planFile(i, path, req)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("planning files: %w", err)
	}

	markSharedOutputs(planned)

	plan := &Plan{Request: req, Files: planned}
	for _, f := range planned {
		if f.Err != nil {
			plan.Unreadable++
			continue
		}
		plan.TotalCurrent += f.CurrentSize
		plan.TotalToAdd += f.BytesToAdd
	}

	logger.Debug().
		Int("files", len(files)).
		Int("unreadable", plan.Unreadable).
		Int64("total_to_add", plan.TotalToAdd).
		Msg("built plan")

	return plan, nil
}

func planFile(index int, path string, req request.Request) PlannedFile {
	pf := PlannedFile{
		Index:      index,
		Path:       path,
		OutputPath: req.OutputPath(path),
		SharedWith: -1,
	}

	info, err := os.Stat(path)
	if err != nil {
		pf.Err = errors.Errorf("reading %s: %w", path, err)
		return pf
	}

	pf.CurrentSize = info.Size()
	pf.BytesToAdd = bytesToAdd(req, pf.CurrentSize)

	if !sameFile(path, pf.OutputPath) {
		if _, err := os.Lstat(pf.OutputPath); err == nil {
			pf.Overwrites = true
		}
	}

	return pf
}

// markSharedOutputs flags every file whose output path an earlier readable file
// in the batch also writes. The later copy replaces the earlier result.
func markSharedOutputs(planned []PlannedFile) {
	first := make(map[string]int, len(planned))
	for i := range planned {
		f := &planned[i]
		if f.Err != nil {
			continue
		}
		key := filepath.Clean(f.OutputPath)
		if prev, ok := first[key]; ok {
			f.SharedWith = prev
			f.Overwrites = true
			continue
		}
		first[key] = i
	}
}

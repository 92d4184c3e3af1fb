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

// Package session is what a presentation layer talks to: a file list, the
// current output settings and one engine, with the engine's running flag
// guarding every mutation.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/nullpad/pkg/expand"
	"github.com/walteh/nullpad/pkg/filelist"
	"github.com/walteh/nullpad/pkg/request"
	"gitlab.com/tozd/go/errors"
)

// ErrNoFiles is returned by Start when the file list is empty.
var ErrNoFiles = errors.Base("no files to process")

// 🔧 Options contains configuration for a session
type Options struct {
	// Params are the initial settings. Nil means request.DefaultParams().
	Params *request.RawParams
	// Ignore is passed through to the file list.
	Ignore []string
	// Engine defaults to expand.New(expand.Options{}).
	Engine *expand.Engine
}

// 🎮 Session owns the file list, the settings and the engine
type Session struct {
	engine *expand.Engine
	files  *filelist.List

	mu     sync.Mutex
	params request.RawParams
}

// 🏭 New creates a session
func New(opts Options) (*Session, error) {
	eng := opts.Engine
	if eng == nil {
		eng = expand.New(expand.Options{})
	}

	files, err := filelist.New(filelist.Options{Guard: eng, Ignore: opts.Ignore})
	if err != nil {
		return nil, errors.Errorf("creating file list: %w", err)
	}

	params := request.DefaultParams()
	if opts.Params != nil {
		params = *opts.Params
	}

	return &Session{
		engine: eng,
		files:  files,
		params: params,
	}, nil
}

// Files returns the session's file list. Its mutations fail while a run is active.
func (s *Session) Files() *filelist.List {
	return s.files
}

func (s *Session) Params() request.RawParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetParams replaces the output settings. Rejected while a run is active.
func (s *Session) SetParams(p request.RawParams) error {
	if s.engine.Running() {
		return expand.ErrRunInProgress
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
	return nil
}

func (s *Session) Running() bool {
	return s.engine.Running()
}

// Wait blocks until the active run has delivered its summary.
func (s *Session) Wait() {
	s.engine.Wait()
}

// 🏃 Start validates the settings and starts a run over a snapshot of the list.
//
// Validation errors, ErrNoFiles and ErrRunInProgress are returned synchronously;
// the returned request is the one the run uses.
func (s *Session) Start(ctx context.Context, cb expand.Callbacks) (request.Request, error) {
	if s.engine.Running() {
		return request.Request{}, expand.ErrRunInProgress
	}

	req, err := request.Build(ctx, s.Params())
	if err != nil {
		return request.Request{}, err
	}

	files := s.files.Snapshot()
	if len(files) == 0 {
		return request.Request{}, ErrNoFiles
	}

	if err := s.engine.StartRun(ctx, files, req, cb); err != nil {
		return request.Request{}, err
	}

	zerolog.Ctx(ctx).Debug().Int("files", len(files)).Str("request", req.Describe()).Msg("run started")
	return req, nil
}

// 📋 Plan validates the settings and returns a dry run over the current list
func (s *Session) Plan(ctx context.Context) (*expand.Plan, error) {
	req, err := request.Build(ctx, s.Params())
	if err != nil {
		return nil, err
	}
	return expand.BuildPlan(ctx, s.files.Snapshot(), req)
}

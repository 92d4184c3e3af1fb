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

package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/nullpad/pkg/expand"
	"github.com/walteh/nullpad/pkg/request"
	"github.com/walteh/nullpad/pkg/session"
	"github.com/walteh/nullpad/pkg/testutils"
	"gitlab.com/tozd/go/errors"
)

func createTestEnv(t *testing.T) (context.Context, string) {
	return testutils.Context(t), t.TempDir()
}

func newSession(t *testing.T, params *request.RawParams) *session.Session {
	t.Helper()
	s, err := session.New(session.Options{Params: params})
	require.NoError(t, err)
	return s
}

func TestStartRunsWholeList(t *testing.T) {
	ctx, dir := createTestEnv(t)
	for _, name := range []string{"a.bin", "b.bin", "c.bin"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("0123456789"), 0o644))
	}

	s := newSession(t, &request.RawParams{Size: "5", Unit: "bytes", Mode: "append"})
	added, err := s.Files().AddFromDirectory(ctx, dir, true)
	require.NoError(t, err)
	require.Equal(t, 3, added)

	var results []expand.Result
	var summary expand.Summary
	req, err := s.Start(ctx, expand.Callbacks{
		OnFileResult: func(r expand.Result) { results = append(results, r) },
		OnComplete:   func(sum expand.Summary) { summary = sum },
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), req.Bytes())
	s.Wait()

	require.Len(t, results, 3)
	assert.Equal(t, 3, summary.SuccessCount+summary.FailureCount)
	assert.Equal(t, int64(15), summary.BytesAdded)

	for _, name := range []string{"a.bin", "b.bin", "c.bin"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, int64(15), info.Size())
	}
}

func TestStartValidation(t *testing.T) {
	ctx, dir := createTestEnv(t)
	path := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	tests := []struct {
		name    string
		params  request.RawParams
		files   []string
		wantErr error
	}{
		{
			name:    "invalid_size",
			params:  request.RawParams{Size: "abc", Unit: "KB"},
			files:   []string{path},
			wantErr: request.ErrInvalidSize,
		},
		{
			name:    "invalid_output_directory",
			params:  request.RawParams{Size: "1", UseCustomDir: true, OutputDir: filepath.Join(dir, "nope")},
			files:   []string{path},
			wantErr: request.ErrInvalidOutputDirectory,
		},
		{
			name:    "no_files",
			params:  request.RawParams{Size: "1"},
			wantErr: session.ErrNoFiles,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, &tt.params)
			_, err := s.Files().Add(ctx, tt.files...)
			require.NoError(t, err)

			called := false
			_, err = s.Start(ctx, expand.Callbacks{OnComplete: func(expand.Summary) { called = true }})
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			s.Wait()
			assert.False(t, called, "no run starts on a validation error")
			assert.False(t, s.Running())
		})
	}
}

func TestGuardDuringRun(t *testing.T) {
	ctx, dir := createTestEnv(t)
	path := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	s := newSession(t, &request.RawParams{Size: "1", Unit: "bytes"})
	_, err := s.Files().Add(ctx, path)
	require.NoError(t, err)

	release := make(chan struct{})
	_, err = s.Start(ctx, expand.Callbacks{OnFileResult: func(expand.Result) { <-release }})
	require.NoError(t, err)
	require.True(t, s.Running())

	_, err = s.Start(ctx, expand.Callbacks{})
	assert.True(t, errors.Is(err, expand.ErrRunInProgress))

	err = s.SetParams(request.RawParams{Size: "9"})
	assert.True(t, errors.Is(err, expand.ErrRunInProgress))

	_, err = s.Files().Clear(ctx)
	assert.True(t, errors.Is(err, expand.ErrRunInProgress))

	_, err = s.Files().AddFromDirectory(ctx, dir, true)
	assert.True(t, errors.Is(err, expand.ErrRunInProgress))

	close(release)
	s.Wait()

	assert.False(t, s.Running())
	assert.Equal(t, "1", s.Params().Size, "settings unchanged by the rejected update")
	require.NoError(t, s.SetParams(request.RawParams{Size: "9"}))
	assert.Equal(t, "9", s.Params().Size)

	removed, err := s.Files().Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestDefaultsAndPlan(t *testing.T) {
	ctx, dir := createTestEnv(t)
	path := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 10), 0o644))

	s := newSession(t, nil)
	assert.Equal(t, request.DefaultParams(), s.Params())

	_, err := s.Files().Add(ctx, path)
	require.NoError(t, err)

	plan, err := s.Plan(ctx)
	require.NoError(t, err)
	require.Len(t, plan.Files, 1)
	assert.Equal(t, int64(102400), plan.TotalToAdd)
	assert.Equal(t, filepath.Join(dir, "Nuevo_a.bin"), plan.Files[0].OutputPath)

	require.NoError(t, s.SetParams(request.RawParams{Size: "-1"}))
	_, err = s.Plan(ctx)
	assert.True(t, errors.Is(err, request.ErrInvalidSize))
}

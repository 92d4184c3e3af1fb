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

package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/nullpad/cmd/nullpad/opts"
	"github.com/walteh/nullpad/pkg/request"
	"github.com/walteh/nullpad/pkg/session"
	"github.com/walteh/nullpad/pkg/testutils"
	"gitlab.com/tozd/go/errors"
)

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	color.NoColor = true
	pterm.DisableStyling()
	t.Cleanup(func() {
		color.NoColor = false
		pterm.EnableStyling()
	})

	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	err := cmd.ExecuteContext(logger.WithContext(context.Background()))
	return buf.String(), err
}

func TestRunInPlace(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	testutils.WriteSized(t, a, 10, 0)
	testutils.WriteSized(t, b, 20, 0)

	out, err := execute(t, NewRunCmd(&opts.RootOpts{}), "",
		"--size", "5", "--unit", "bytes", "--prefix=false", a, b)
	require.NoError(t, err)

	assert.Equal(t, int64(15), testutils.SizeOf(t, a))
	assert.Equal(t, int64(25), testutils.SizeOf(t, b))
	assert.Contains(t, out, "[expanding 2 files]")
	assert.Contains(t, out, "append 5 bytes, modify in place")
	assert.Contains(t, out, "Total added: 10 bytes")
	assert.Contains(t, out, "expanded 2 files")
}

func TestRunFromDirectoryWithPrefix(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteSized(t, filepath.Join(dir, "in", "a.bin"), 100, 0)
	testutils.WriteSized(t, filepath.Join(dir, "in", "nested", "b.bin"), 100, 0)
	testutils.WriteSized(t, filepath.Join(dir, "in", "skip.tmp"), 100, 0)

	out, err := execute(t, NewRunCmd(&opts.RootOpts{}), "",
		"--size", "1", "--unit", "KB", "--mode", "set-size",
		"--dir", filepath.Join(dir, "in"), "--ignore", "**/*.tmp", "--no-recursive")
	require.NoError(t, err)

	assert.Contains(t, out, "Added 1 files from")
	assert.Equal(t, int64(1024), testutils.SizeOf(t, filepath.Join(dir, "in", "Nuevo_a.bin")))
	assert.Equal(t, int64(100), testutils.SizeOf(t, filepath.Join(dir, "in", "a.bin")), "original untouched")
	assert.NoFileExists(t, filepath.Join(dir, "in", "nested", "Nuevo_b.bin"))
	assert.NoFileExists(t, filepath.Join(dir, "in", "Nuevo_skip.tmp"))
}

func TestRunOverwriteConfirmation(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		args     []string
		wantErr  error
		wantSize int64
	}{
		{name: "declined", stdin: "n\n", wantErr: ErrAborted, wantSize: 3},
		{name: "no_answer", stdin: "", wantErr: ErrAborted, wantSize: 3},
		{name: "accepted", stdin: "y\n", wantSize: 15},
		{name: "yes_flag", args: []string{"--yes"}, wantSize: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "a.bin")
			dst := filepath.Join(dir, "Nuevo_a.bin")
			testutils.WriteSized(t, src, 10, 0)
			testutils.WriteSized(t, dst, 3, 0)

			args := append([]string{"--size", "5", "--unit", "bytes", src}, tt.args...)
			out, err := execute(t, NewRunCmd(&opts.RootOpts{}), tt.stdin, args...)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantSize, testutils.SizeOf(t, dst))
			assert.Equal(t, int64(10), testutils.SizeOf(t, src))
			if len(tt.args) == 0 {
				assert.Contains(t, out, "Nuevo_a.bin")
			}
		})
	}
}

func TestRunSharedOutputAsksFirst(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "d1", "x.bin")
	second := filepath.Join(dir, "d2", "x.bin")
	out := filepath.Join(dir, "out")
	testutils.WriteSized(t, first, 1, 0)
	testutils.WriteSized(t, second, 4, 0)
	require.NoError(t, os.Mkdir(out, 0o755))

	args := []string{"--size", "100", "--unit", "bytes", "--output-dir", out, "--prefix=false", first, second}

	output, err := execute(t, NewRunCmd(&opts.RootOpts{}), "", args...)
	assert.True(t, errors.Is(err, ErrAborted), "got %v", err)
	assert.Contains(t, output, "will be replaced: x.bin")
	assert.NoFileExists(t, filepath.Join(out, "x.bin"))

	_, err = execute(t, NewRunCmd(&opts.RootOpts{}), "y\n", args...)
	require.NoError(t, err)
	assert.Equal(t, int64(104), testutils.SizeOf(t, filepath.Join(out, "x.bin")), "the later file wins")
}

func TestRunReportsFailedFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	testutils.WriteSized(t, a, 1, 0)
	testutils.WriteSized(t, b, 1, 0)
	// the output path of a is taken by a directory
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Nuevo_a.bin"), 0o755))

	out, err := execute(t, NewRunCmd(&opts.RootOpts{}), "", "--size", "2", "--unit", "bytes", "--yes", a, b)
	assert.True(t, errors.Is(err, ErrFilesFailed), "got %v", err)

	assert.Contains(t, out, "copy failed")
	assert.Contains(t, out, "❌ "+a+": copying to")
	assert.NotContains(t, out, "❌ "+b+":")
	assert.Contains(t, out, "1 of 2 files could not be expanded")
	assert.Equal(t, int64(3), testutils.SizeOf(t, filepath.Join(dir, "Nuevo_b.bin")))
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	testutils.WriteSized(t, a, 1, 0)

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"invalid_size", []string{"--size", "abc", a}, request.ErrInvalidSize},
		{"invalid_unit", []string{"--unit", "GB", a}, request.ErrInvalidUnit},
		{"missing_output_dir", []string{"--output-dir", filepath.Join(dir, "nope"), a}, request.ErrInvalidOutputDirectory},
		{"no_files", []string{"--size", "1"}, session.ErrNoFiles},
		{"missing_dir_only", []string{"--dir", filepath.Join(dir, "nope")}, session.ErrNoFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, NewRunCmd(&opts.RootOpts{}), "", tt.args...)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, int64(1), testutils.SizeOf(t, a), "nothing written")
		})
	}
}

func TestRunJobFile(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteSized(t, filepath.Join(dir, "data", "a.bin"), 0, 0)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "out"), 0o755))
	job := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(job, []byte(`
size: 1
unit: KB
output_dir: out
prefix: false
directories: [data]
`), 0o644))

	t.Run("job_values", func(t *testing.T) {
		_, err := execute(t, NewRunCmd(&opts.RootOpts{ConfigFile: job}), "")
		require.NoError(t, err)
		assert.Equal(t, int64(1024), testutils.SizeOf(t, filepath.Join(dir, "out", "a.bin")))
	})

	t.Run("flags_override", func(t *testing.T) {
		_, err := execute(t, NewRunCmd(&opts.RootOpts{ConfigFile: job}), "", "--size", "2", "--yes")
		require.NoError(t, err)
		assert.Equal(t, int64(2048), testutils.SizeOf(t, filepath.Join(dir, "out", "a.bin")), "output rebuilt from the original")
		assert.Equal(t, int64(0), testutils.SizeOf(t, filepath.Join(dir, "data", "a.bin")))
	})
}

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	big := filepath.Join(dir, "big.bin")
	testutils.WriteSized(t, a, 100, 0)
	testutils.WriteSized(t, big, 4096, 0)
	testutils.WriteSized(t, filepath.Join(dir, "Nuevo_a.bin"), 1, 0)

	out, err := execute(t, NewPlanCmd(&opts.RootOpts{}), "",
		"--size", "2", "--unit", "KB", "--mode", "set-size", a, big)
	require.NoError(t, err)

	assert.Contains(t, out, "pad to 2048 bytes")
	assert.Contains(t, out, "a.bin")
	assert.Contains(t, out, "overwrites")
	assert.Contains(t, out, "already large enough")
	assert.Contains(t, out, "2 files, 4.10 KB now, 1.90 KB to add, average 2.05 KB")

	assert.Equal(t, int64(100), testutils.SizeOf(t, a), "plan never writes")
	assert.Equal(t, int64(1), testutils.SizeOf(t, filepath.Join(dir, "Nuevo_a.bin")))
	assert.NoFileExists(t, filepath.Join(dir, "Nuevo_big.bin"))
}

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
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/nullpad/cmd/nullpad/opts"
	"github.com/walteh/nullpad/pkg/expand"
	"github.com/walteh/nullpad/pkg/filelist"
	"github.com/walteh/nullpad/pkg/request"
	"github.com/walteh/nullpad/pkg/session"
	"github.com/walteh/nullpad/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// inputFlags are the flags shared by run and plan. Flags that were set
// explicitly override the job file.
type inputFlags struct {
	size        string
	unit        string
	mode        string
	outputDir   string
	prefix      bool
	dirs        []string
	noRecursive bool
	ignore      []string
}

func (f *inputFlags) bind(cmd *cobra.Command) {
	defaults := request.DefaultParams()
	flags := cmd.Flags()
	flags.StringVarP(&f.size, "size", "s", defaults.Size, "amount of data, decimals allowed")
	flags.StringVarP(&f.unit, "unit", "u", defaults.Unit, "size unit: bytes, KB or MB")
	flags.StringVarP(&f.mode, "mode", "m", defaults.Mode, "append or set-size")
	flags.StringVarP(&f.outputDir, "output-dir", "o", "", "write results into this directory")
	flags.BoolVar(&f.prefix, "prefix", defaults.UsePrefix, fmt.Sprintf("prefix output names with %q; off modifies files in place", request.OutputPrefix))
	flags.StringArrayVar(&f.dirs, "dir", nil, "add every file under this directory (repeatable)")
	flags.BoolVar(&f.noRecursive, "no-recursive", false, "only add the top level of each --dir")
	flags.StringArrayVar(&f.ignore, "ignore", nil, "doublestar pattern to skip while walking directories (repeatable)")
}

// resolved is the merged view of the job file and the flags
type resolved struct {
	params    request.RawParams
	files     []string
	dirs      []string
	recursive bool
	ignore    []string
}

func (f *inputFlags) resolve(ctx context.Context, cmd *cobra.Command, root *opts.RootOpts, args []string) (*resolved, error) {
	job, err := root.LoadJob(ctx)
	if err != nil {
		return nil, err
	}

	r := &resolved{
		params:    request.DefaultParams(),
		recursive: true,
	}
	if job != nil {
		r.params = job.Params()
		r.files = append(r.files, job.Files...)
		r.dirs = append(r.dirs, job.Directories...)
		r.recursive = job.IsRecursive()
		r.ignore = append(r.ignore, job.Ignore...)
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		r.params.Size = f.size
	}
	if flags.Changed("unit") {
		r.params.Unit = f.unit
	}
	if flags.Changed("mode") {
		r.params.Mode = f.mode
	}
	if flags.Changed("output-dir") {
		r.params.UseCustomDir = f.outputDir != ""
		r.params.OutputDir = f.outputDir
	}
	if flags.Changed("prefix") {
		r.params.UsePrefix = f.prefix
	}
	if flags.Changed("no-recursive") {
		r.recursive = !f.noRecursive
	}

	r.files = append(r.files, args...)
	r.dirs = append(r.dirs, f.dirs...)
	r.ignore = append(r.ignore, f.ignore...)

	return r, nil
}

// 🏗️ newSession builds a session and fills its file list from the resolved inputs
//
// A nil engine gets the session default.
func (f *inputFlags) newSession(ctx context.Context, cmd *cobra.Command, root *opts.RootOpts, engine *expand.Engine, args []string) (*session.Session, error) {
	r, err := f.resolve(ctx, cmd, root, args)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(session.Options{Params: &r.params, Ignore: r.ignore, Engine: engine})
	if err != nil {
		return nil, errors.Errorf("creating session: %w", err)
	}

	users := status.NewUserLogger(ctx, cmd.OutOrStdout())

	for _, dir := range r.dirs {
		n, err := sess.Files().AddFromDirectory(ctx, dir, r.recursive)
		if errors.Is(err, filelist.ErrDirectoryNotFound) {
			users.LogDirectoryNotFound(dir, err)
			continue
		}
		if err != nil {
			return nil, errors.Errorf("adding directory %s: %w", dir, err)
		}
		users.LogFilesAdded(n, dir)
	}

	if len(r.files) > 0 {
		n, err := sess.Files().Add(ctx, r.files...)
		if err != nil {
			return nil, errors.Errorf("adding files: %w", err)
		}
		if skipped := len(r.files) - n; skipped > 0 {
			users.LogValidation(false, fmt.Sprintf("%d paths skipped (missing, duplicate or not a regular file)", skipped), nil)
		}
		if n > 0 {
			users.LogFilesAdded(n, "arguments")
		}
	}

	return sess, nil
}

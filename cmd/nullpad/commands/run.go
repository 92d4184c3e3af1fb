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
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/nullpad/cmd/nullpad/opts"
	"github.com/walteh/nullpad/pkg/expand"
	"github.com/walteh/nullpad/pkg/log"
	"github.com/walteh/nullpad/pkg/request"
	"github.com/walteh/nullpad/pkg/session"
	"github.com/walteh/nullpad/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrFilesFailed is returned by run when at least one file failed
	ErrFilesFailed = errors.Base("some files could not be expanded")
	// ErrAborted is returned when the overwrite confirmation is declined
	ErrAborted = errors.Base("aborted")
)

const progressEvery = 10

// runEvent carries one engine callback to the rendering goroutine
type runEvent struct {
	progress *expand.Progress
	result   *expand.Result
	summary  *expand.Summary
}

// NewRunCmd creates the run command
func NewRunCmd(root *opts.RootOpts) *cobra.Command {
	var (
		inputs inputFlags
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Pad files with zero bytes",
		Long: `Run grows every selected file with zero bytes.
It will:
1. Build the file list from arguments, --dir and the job file
2. Validate the size, unit, mode and output settings
3. Ask before overwriting existing output files, unless --yes is set
4. Expand each file and print a summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "run").Logger().WithContext(cmd.Context())
			ctx = log.NewContext(ctx, log.New(cmd.OutOrStdout(), *zerolog.Ctx(ctx)))

			runID := uuid.NewString()
			engine := expand.New(expand.Options{NewRunID: func() string { return runID }})

			sess, err := inputs.newSession(ctx, cmd, root, engine, args)
			if err != nil {
				return err
			}

			if !yes {
				if err := confirmOverwrites(ctx, sess, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			summary, err := runAndRender(ctx, sess, runID)
			if err != nil {
				return err
			}
			if summary.Failed() {
				return errors.Errorf("%w: %d of %d", ErrFilesFailed, summary.FailureCount, summary.Total)
			}
			return nil
		},
	}

	inputs.bind(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "overwrite existing output files without asking")

	return cmd
}

// confirmOverwrites asks once when any output file exists or is written twice
func confirmOverwrites(ctx context.Context, sess *session.Session, in io.Reader, out io.Writer) error {
	plan, err := sess.Plan(ctx)
	if err != nil {
		return err
	}

	var existing []string
	for _, f := range plan.Files {
		if f.Overwrites {
			existing = append(existing, filepath.Base(f.OutputPath))
		}
	}
	if len(existing) == 0 {
		return nil
	}

	log.FromContext(ctx).Warningf("%d output files will be replaced: %s",
		len(existing), strings.Join(existing, ", "))
	fmt.Fprint(out, "continue? [y/N] ")

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.Errorf("reading confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return ErrAborted
	}
}

// 🏃 runAndRender starts the run and renders its events on the calling goroutine
func runAndRender(ctx context.Context, sess *session.Session, runID string) (expand.Summary, error) {
	console := log.FromContext(ctx)
	formatter := status.NewDefaultFileFormatter()
	throttle := status.Throttle{Every: progressEvery}

	req, err := request.Build(ctx, sess.Params())
	if err != nil {
		return expand.Summary{}, err
	}
	total := sess.Files().Len()
	if total == 0 {
		return expand.Summary{}, session.ErrNoFiles
	}

	console.StartBatch(ctx, log.BatchInfo{RunID: runID, Total: total, Describe: req.Describe()})

	events := make(chan runEvent, 64)

	var g errgroup.Group
	g.Go(func() error {
		_, err := sess.Start(ctx, expand.Callbacks{
			OnProgress:   func(p expand.Progress) { events <- runEvent{progress: &p} },
			OnFileResult: func(r expand.Result) { events <- runEvent{result: &r} },
			OnComplete: func(s expand.Summary) {
				events <- runEvent{summary: &s}
				close(events)
			},
		})
		if err != nil {
			close(events)
			return err
		}
		return nil
	})

	var summary expand.Summary
	for ev := range events {
		switch {
		case ev.result != nil:
			r := ev.result
			console.LogFileResult(ctx, log.FileResult{
				Index:      r.Index + 1,
				Total:      total,
				Name:       filepath.Base(r.Path),
				OutputPath: r.OutputPath,
				OK:         r.Succeeded(),
				BytesAdded: r.BytesAdded,
				Reason:     r.Reason.String(),
			})
		case ev.progress != nil:
			p := ev.progress
			if p.Total > progressEvery && throttle.Show(p.Index, p.Total) {
				console.Info(formatter.FormatProgress(p.Index, p.Total))
			}
		case ev.summary != nil:
			summary = *ev.summary
			if summary.Failed() {
				reportFailures(console, summary.Results)
			}
			console.EndBatch(ctx, log.SummaryInfo{
				Total:      summary.Total,
				Succeeded:  summary.SuccessCount,
				Failed:     summary.FailureCount,
				BytesAdded: summary.BytesAdded,
				Duration:   summary.Duration(),
			})
		}
	}

	if err := g.Wait(); err != nil {
		return expand.Summary{}, errors.Errorf("starting run: %w", err)
	}
	sess.Wait()

	return summary, nil
}

// reportFailures lists the underlying error of every failed file
func reportFailures(console *log.Logger, results []expand.Result) {
	console.LogNewline()
	for _, r := range results {
		if r.Succeeded() {
			continue
		}
		console.Errorf("%s: %v", r.Path, r.Err)
	}
}

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
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/nullpad/cmd/nullpad/opts"
	"github.com/walteh/nullpad/pkg/expand"
	"github.com/walteh/nullpad/pkg/log"
	"github.com/walteh/nullpad/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewPlanCmd creates the plan command
func NewPlanCmd(root *opts.RootOpts) *cobra.Command {
	var inputs inputFlags

	cmd := &cobra.Command{
		Use:   "plan [files...]",
		Short: "Show what run would do without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "plan").Logger().WithContext(cmd.Context())
			console := log.New(cmd.OutOrStdout(), *zerolog.Ctx(ctx))

			sess, err := inputs.newSession(ctx, cmd, root, nil, args)
			if err != nil {
				return err
			}

			plan, err := sess.Plan(ctx)
			if err != nil {
				return errors.Errorf("planning: %w", err)
			}

			console.Header(plan.Request.Describe())

			if len(plan.Files) == 0 {
				console.Warning("no files selected")
				return nil
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(planRows(plan)).Srender()
			if err != nil {
				return errors.Errorf("rendering plan: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)

			console.Infof("%d files, %s now, %s to add, average %s",
				len(plan.Files),
				status.FormatSize(plan.TotalCurrent),
				status.FormatSize(plan.TotalToAdd),
				status.FormatSize(plan.AverageSize()))
			if plan.Unreadable > 0 {
				console.Warningf("%d files cannot be read and would fail", plan.Unreadable)
			}
			return nil
		},
	}

	inputs.bind(cmd)

	return cmd
}

func planRows(plan *expand.Plan) [][]string {
	rows := [][]string{{"File", "Current", "Add", "Output", "Note"}}
	for _, f := range plan.Files {
		note := ""
		switch {
		case f.Err != nil:
			note = "unreadable"
		case f.SharedWith >= 0:
			note = "same output as " + filepath.Base(plan.Files[f.SharedWith].Path)
		case f.Overwrites:
			note = "overwrites"
		case f.BytesToAdd == 0:
			note = "already large enough"
		}
		rows = append(rows, []string{
			filepath.Base(f.Path),
			status.FormatSize(f.CurrentSize),
			status.FormatSize(f.BytesToAdd),
			f.OutputPath,
			note,
		})
	}
	return rows
}

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


package opts

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJob(t *testing.T) {
	t.Run("no_config", func(t *testing.T) {
		cfg, err := (&RootOpts{}).LoadJob(context.Background())
		require.NoError(t, err)
		assert.Nil(t, cfg)

		var nilOpts *RootOpts
		cfg, err = nilOpts.LoadJob(context.Background())
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("logs_location", func(t *testing.T) {
		dir := t.TempDir()
		job := filepath.Join(dir, "job.yaml")
		require.NoError(t, os.WriteFile(job, []byte("size: 1\nunit: KB\nfiles: [a.bin]\n"), 0o644))

		buf := &bytes.Buffer{}
		ctx := zerolog.New(buf).Level(zerolog.DebugLevel).WithContext(context.Background())

		cfg, err := (&RootOpts{ConfigFile: job}).LoadJob(ctx)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, job, cfg.Location())
		assert.Contains(t, buf.String(), `"path":"`+job+`"`)
		assert.Contains(t, buf.String(), `"job":"1 KB (append), 1 files, 0 directories"`)
		assert.Contains(t, buf.String(), "loaded job file")
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := (&RootOpts{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")}).LoadJob(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading job file")
	})
}

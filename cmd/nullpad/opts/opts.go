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
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/nullpad/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// RootOpts holds the persistent flags shared by every command
type RootOpts struct {
	ConfigFile string
	Debug      bool
}

// LoadJob loads the job file named by --config. Nil when none was given.
func (o *RootOpts) LoadJob(ctx context.Context) (*config.Config, error) {
	if o == nil || o.ConfigFile == "" {
		return nil, nil
	}
	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return nil, errors.Errorf("loading job file: %w", err)
	}
	zerolog.Ctx(ctx).Debug().
		Str("path", cfg.Location()).
		Stringer("job", cfg).
		Msg("loaded job file")
	return cfg, nil
}

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

	"github.com/walteh/nullpad/pkg/request"
	"gitlab.com/tozd/go/errors"
)

// 🔄 RunSync starts a run and blocks until its summary has been delivered.
//
// The callbacks in cb still fire on the worker goroutine, in order.
func (e *Engine) RunSync(ctx context.Context, files []string, req request.Request, cb Callbacks) (Summary, error) {
	var summary Summary
	onComplete := cb.OnComplete
	cb.OnComplete = func(s Summary) {
		summary = s
		if onComplete != nil {
			onComplete(s)
		}
	}

	if err := e.StartRun(ctx, files, req, cb); err != nil {
		return Summary{}, errors.Errorf("starting run: %w", err)
	}

	e.Wait()
	return summary, nil
}

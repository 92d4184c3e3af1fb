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

package request

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ❌ Validation errors returned by Build. Match with errors.Is.
var (
	ErrInvalidSize            = errors.Base("invalid size")
	ErrInvalidUnit            = errors.Base("invalid unit")
	ErrInvalidMode            = errors.Base("invalid mode")
	ErrInvalidOutputDirectory = errors.Base("invalid output directory")
)

// 🔧 RawParams is unvalidated caller input
type RawParams struct {
	Size         string // e.g. "100", "1.5"
	Unit         string // bytes, KB or MB
	Mode         string // append or set-size
	UseCustomDir bool   // write results into OutputDir
	OutputDir    string // only read when UseCustomDir is set
	UsePrefix    bool   // prefix output names with OutputPrefix
}

// DefaultParams returns the parameters a fresh session starts with.
func DefaultParams() RawParams {
	return RawParams{
		Size:      "100",
		Unit:      "KB",
		Mode:      "append",
		UsePrefix: true,
	}
}

// 🏭 Build validates raw parameters into a Request.
//
// No partial request is ever returned: on error the Request is the zero value.
func Build(ctx context.Context, raw RawParams) (Request, error) {
	logger := zerolog.Ctx(ctx)

	unit, ok := ParseUnit(raw.Unit)
	if !ok {
		return Request{}, errors.Errorf("%w: %q", ErrInvalidUnit, raw.Unit)
	}

	mode, ok := ParseMode(raw.Mode)
	if !ok {
		return Request{}, errors.Errorf("%w: %q", ErrInvalidMode, raw.Mode)
	}

	sizeValue, bytes, err := parseSize(raw.Size, unit)
	if err != nil {
		return Request{}, err
	}

	output, err := resolveOutput(raw)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		sizeValue: sizeValue,
		unit:      unit,
		mode:      mode,
		output:    output,
		usePrefix: raw.UsePrefix,
		bytes:     bytes,
	}

	logger.Debug().
		Float64("size_value", sizeValue).
		Str("unit", unit.String()).
		Str("mode", mode.String()).
		Str("output", output.String()).
		Bool("use_prefix", raw.UsePrefix).
		Int64("bytes", bytes).
		Msg("built expansion request")

	return req, nil
}

// parseSize converts the size string to bytes, truncating fractional bytes.
func parseSize(raw string, unit Unit) (float64, int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, 0, errors.Errorf("%w: size is required", ErrInvalidSize)
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, 0, errors.Errorf("%w: %q is not a number", ErrInvalidSize, raw)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, 0, errors.Errorf("%w: %q is not finite", ErrInvalidSize, raw)
	}

	scaled := value * float64(unit.Multiplier())
	if scaled >= math.MaxInt64 {
		return 0, 0, errors.Errorf("%w: %q %s is too large", ErrInvalidSize, raw, unit)
	}

	bytes := int64(scaled)
	if bytes <= 0 {
		return 0, 0, errors.Errorf("%w: %q %s must be greater than zero bytes", ErrInvalidSize, raw, unit)
	}

	return value, bytes, nil
}

func resolveOutput(raw RawParams) (OutputPolicy, error) {
	if !raw.UseCustomDir {
		if raw.UsePrefix {
			return OutputPolicy{Kind: PolicyPrefixedSameDir}, nil
		}
		return OutputPolicy{Kind: PolicyInPlace}, nil
	}

	if strings.TrimSpace(raw.OutputDir) == "" {
		return OutputPolicy{}, errors.Errorf("%w: no directory selected", ErrInvalidOutputDirectory)
	}

	dir, err := filepath.Abs(raw.OutputDir)
	if err != nil {
		return OutputPolicy{}, errors.Errorf("%w: resolving %s: %v", ErrInvalidOutputDirectory, raw.OutputDir, err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return OutputPolicy{}, errors.Errorf("%w: %s: %v", ErrInvalidOutputDirectory, raw.OutputDir, err)
	}
	if !info.IsDir() {
		return OutputPolicy{}, errors.Errorf("%w: %s is not a directory", ErrInvalidOutputDirectory, raw.OutputDir)
	}

	return OutputPolicy{Kind: PolicyCustomDir, Dir: dir}, nil
}

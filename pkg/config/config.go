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

// Package config loads job files: the output settings and inputs for one
// run, stored as YAML, JSON or HCL.
//
//	size: "2.5"
//	unit: MB
//	mode: set-size
//	output_dir: ./out
//	directories: [./samples]
//	ignore: ["**/*.tmp"]
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/nullpad/pkg/request"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for job file parsers
type Parser interface {
	// 📝 Parse decodes a job file; filename is used in diagnostics
	Parse(ctx context.Context, filename string, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config is one job file.
//
// Empty strings and nil pointers fall back to request.DefaultParams().
type Config struct {
	Size        string   `json:"size,omitempty" yaml:"size,omitempty" hcl:"size,optional"`
	Unit        string   `json:"unit,omitempty" yaml:"unit,omitempty" hcl:"unit,optional"`
	Mode        string   `json:"mode,omitempty" yaml:"mode,omitempty" hcl:"mode,optional"`
	OutputDir   string   `json:"output_dir,omitempty" yaml:"output_dir,omitempty" hcl:"output_dir,optional"`
	Prefix      *bool    `json:"prefix,omitempty" yaml:"prefix,omitempty" hcl:"prefix,optional"`
	Files       []string `json:"files,omitempty" yaml:"files,omitempty" hcl:"files,optional"`
	Directories []string `json:"directories,omitempty" yaml:"directories,omitempty" hcl:"directories,optional"`
	Recursive   *bool    `json:"recursive,omitempty" yaml:"recursive,omitempty" hcl:"recursive,optional"`
	Ignore      []string `json:"ignore,omitempty" yaml:"ignore,omitempty" hcl:"ignore,optional"`

	location string
}

// 🎯 Load reads, decodes and validates the job file at path.
//
// Relative paths inside the file are resolved against the file's directory.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading job file")

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolving job file path: %w", err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Errorf("reading job file: %w", err)
	}

	p := GetParser(abs)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, filepath.Base(abs), data)
	if err != nil {
		return nil, errors.Errorf("parsing job file: %w", err)
	}

	cfg.location = abs
	cfg.resolvePaths(filepath.Dir(abs))

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating job file: %w", err)
	}

	logger.Debug().
		Str("path", abs).
		Int("files", len(cfg.Files)).
		Int("directories", len(cfg.Directories)).
		Msg("job file loaded")

	return cfg, nil
}

func (cfg *Config) resolvePaths(base string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	cfg.OutputDir = resolve(cfg.OutputDir)
	for i, f := range cfg.Files {
		cfg.Files[i] = resolve(f)
	}
	for i, d := range cfg.Directories {
		cfg.Directories[i] = resolve(d)
	}
}

// 🔍 Validate checks the fields that can be checked without touching the disk.
// Size and the output directory are validated by request.Build.
func (cfg *Config) Validate() error {
	if cfg.Unit != "" {
		if _, ok := request.ParseUnit(cfg.Unit); !ok {
			return errors.Errorf("%w: %q", request.ErrInvalidUnit, cfg.Unit)
		}
	}
	if cfg.Mode != "" {
		if _, ok := request.ParseMode(cfg.Mode); !ok {
			return errors.Errorf("%w: %q", request.ErrInvalidMode, cfg.Mode)
		}
	}
	for _, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	for _, f := range cfg.Files {
		if strings.TrimSpace(f) == "" {
			return errors.Errorf("files: empty path")
		}
	}
	for _, d := range cfg.Directories {
		if strings.TrimSpace(d) == "" {
			return errors.Errorf("directories: empty path")
		}
	}
	return nil
}

// Params converts the job file into raw request parameters, filling gaps
// from request.DefaultParams().
func (cfg *Config) Params() request.RawParams {
	p := request.DefaultParams()
	if cfg.Size != "" {
		p.Size = cfg.Size
	}
	if cfg.Unit != "" {
		p.Unit = cfg.Unit
	}
	if cfg.Mode != "" {
		p.Mode = cfg.Mode
	}
	if cfg.OutputDir != "" {
		p.UseCustomDir = true
		p.OutputDir = cfg.OutputDir
	}
	if cfg.Prefix != nil {
		p.UsePrefix = *cfg.Prefix
	}
	return p
}

// IsRecursive reports whether directories are walked recursively. Defaults to true.
func (cfg *Config) IsRecursive() bool {
	return cfg.Recursive == nil || *cfg.Recursive
}

// Location is the absolute path the config was loaded from, if any.
func (cfg *Config) Location() string {
	return cfg.location
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	p := cfg.Params()
	return fmt.Sprintf("%s %s (%s), %d files, %d directories", p.Size, p.Unit, p.Mode, len(cfg.Files), len(cfg.Directories))
}

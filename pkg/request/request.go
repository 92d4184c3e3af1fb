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
	"fmt"
	"path/filepath"
	"strings"
)

// 📝 OutputPrefix is prepended to file names when prefixing is enabled
const OutputPrefix = "Nuevo_"

// 📏 Unit is the unit the size value is expressed in
type Unit int

const (
	UnitBytes Unit = iota
	UnitKB
	UnitMB
)

// Multiplier returns the number of bytes in one unit.
func (u Unit) Multiplier() int64 {
	switch u {
	case UnitKB:
		return 1024
	case UnitMB:
		return 1024 * 1024
	default:
		return 1
	}
}

func (u Unit) String() string {
	switch u {
	case UnitKB:
		return "KB"
	case UnitMB:
		return "MB"
	default:
		return "Bytes"
	}
}

// 🔍 ParseUnit parses a unit name, case-insensitively
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bytes", "byte", "b":
		return UnitBytes, true
	case "kb", "k", "kib":
		return UnitKB, true
	case "mb", "m", "mib":
		return UnitMB, true
	default:
		return UnitBytes, false
	}
}

// 🎯 Mode selects how the byte count is derived
type Mode int

const (
	// ModeAppend adds a fixed number of bytes regardless of current size
	ModeAppend Mode = iota
	// ModeSetSize grows a file up to the target size, never shrinking it
	ModeSetSize
)

func (m Mode) String() string {
	switch m {
	case ModeSetSize:
		return "set-size"
	default:
		return "append"
	}
}

// 🔍 ParseMode parses a mode name
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "append", "add":
		return ModeAppend, true
	case "set-size", "setsize", "set_size", "set", "size":
		return ModeSetSize, true
	default:
		return ModeAppend, false
	}
}

// 📦 PolicyKind says where the modified file is written
type PolicyKind int

const (
	PolicyInPlace PolicyKind = iota
	PolicyPrefixedSameDir
	PolicyCustomDir
)

func (k PolicyKind) String() string {
	switch k {
	case PolicyPrefixedSameDir:
		return "prefixed-same-dir"
	case PolicyCustomDir:
		return "custom-dir"
	default:
		return "in-place"
	}
}

// OutputPolicy is a PolicyKind plus the target directory for PolicyCustomDir.
type OutputPolicy struct {
	Kind PolicyKind
	Dir  string
}

func (p OutputPolicy) String() string {
	if p.Kind == PolicyCustomDir {
		return fmt.Sprintf("%s(%s)", p.Kind, p.Dir)
	}
	return p.Kind.String()
}

// 🎯 Request is a validated, immutable expansion request.
//
// The zero value is not valid; use Build.
type Request struct {
	sizeValue float64
	unit      Unit
	mode      Mode
	output    OutputPolicy
	usePrefix bool
	bytes     int64
}

func (r Request) SizeValue() float64 { return r.sizeValue }
func (r Request) Unit() Unit { return r.unit }
func (r Request) Mode() Mode { return r.mode }
func (r Request) Output() OutputPolicy { return r.output }
func (r Request) UsePrefix() bool { return r.usePrefix }

// Bytes is the size value converted to bytes. Always > 0 for a built request.
func (r Request) Bytes() int64 { return r.bytes }

// 🗺️ OutputPath returns where the expanded version of input is written
func (r Request) OutputPath(input string) string {
	name := filepath.Base(input)
	if r.usePrefix {
		name = OutputPrefix + name
	}

	switch r.output.Kind {
	case PolicyCustomDir:
		return filepath.Join(r.output.Dir, name)
	case PolicyPrefixedSameDir:
		if !r.usePrefix {
			return input
		}
		return filepath.Join(filepath.Dir(input), name)
	default:
		return input
	}
}

// 📝 Describe returns a one-line human summary of the request
func (r Request) Describe() string {
	var b strings.Builder
	switch r.mode {
	case ModeSetSize:
		fmt.Fprintf(&b, "pad to %d bytes", r.bytes)
	default:
		fmt.Fprintf(&b, "append %d bytes", r.bytes)
	}

	switch r.output.Kind {
	case PolicyCustomDir:
		fmt.Fprintf(&b, ", write to %s", r.output.Dir)
	case PolicyPrefixedSameDir:
		b.WriteString(", write beside original")
	default:
		b.WriteString(", modify in place")
	}

	if r.usePrefix && r.output.Kind != PolicyInPlace {
		fmt.Fprintf(&b, " with prefix %q", OutputPrefix)
	}
	return b.String()
}

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
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/nullpad/pkg/request"
	"gitlab.com/tozd/go/errors"
)

// 📄 processFile pads a single file. It never returns an error: failures become Results.
func processFile(ctx context.Context, index int, path string, req request.Request) Result {
	res := Result{
		Index:      index,
		Path:       path,
		OutputPath: req.OutputPath(path),
	}
	logger := zerolog.Ctx(ctx).With().Str("file", path).Logger()

	if !sameFile(path, res.OutputPath) {
		if err := copyFile(ctx, path, res.OutputPath); err != nil {
			return res.fail(ReasonCopyFailed, errors.Errorf("copying to %s: %w", res.OutputPath, err), &logger)
		}
	}

	n, err := padFile(res.OutputPath, req)
	res.BytesAdded = n
	if err != nil {
		return res.fail(classify(err), err, &logger)
	}

	res.Outcome = OutcomeSuccess
	logger.Debug().
		Str("output", res.OutputPath).
		Int64("bytes_added", n).
		Msg("file expanded")
	return res
}

func (r Result) fail(reason Reason, err error, logger *zerolog.Logger) Result {
	r.Outcome = OutcomeFailure
	r.Reason = reason
	r.Err = err
	logger.Warn().Err(err).Str("reason", reason.String()).Msg("file failed")
	return r
}

// classify maps an I/O error to a failure reason.
func classify(err error) Reason {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ReasonPathNotFound
	case errors.Is(err, fs.ErrPermission):
		return ReasonPermissionDenied
	default:
		return ReasonWriteFailed
	}
}

// 📏 bytesToAdd computes how many zero bytes a file of currentSize needs
func bytesToAdd(req request.Request, currentSize int64) int64 {
	if req.Mode() == request.ModeSetSize {
		return max(0, req.Bytes()-currentSize)
	}
	return req.Bytes()
}

// padFile appends zero bytes to path. The file must already exist.
func padFile(path string, req request.Request) (int64, error) {
	var current int64
	if req.Mode() == request.ModeSetSize {
		info, err := os.Stat(path)
		if err != nil {
			return 0, errors.Errorf("reading size: %w", err)
		}
		current = info.Size()
	}

	n := bytesToAdd(req, current)
	if n == 0 {
		return 0, nil
	}

	// no O_CREATE: a file that vanished since it was listed must fail, not reappear empty
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return 0, errors.Errorf("opening for append: %w", err)
	}

	written, err := io.CopyN(f, zeroReader{}, n)
	if err != nil {
		f.Close()
		return written, errors.Errorf("writing padding: %w", err)
	}

	if err := f.Close(); err != nil {
		return written, errors.Errorf("closing file: %w", err)
	}

	return written, nil
}

// zeroReader yields an endless stream of zero bytes.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// sameFile reports whether a and b name the same file.
func sameFile(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// 📋 copyFile copies src to dst, overwriting dst, and carries over mode and modification time
func copyFile(ctx context.Context, src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return errors.Errorf("reading source info: %w", err)
	}
	if !srcInfo.Mode().IsRegular() {
		return errors.Errorf("source %s is not a regular file", src)
	}

	if _, err := os.Lstat(dst); err == nil {
		zerolog.Ctx(ctx).Warn().Str("destination", dst).Msg("overwriting existing destination")
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return errors.Errorf("copying file content: %w", err)
	}

	if err := dstFile.Close(); err != nil {
		return errors.Errorf("closing destination file: %w", err)
	}

	// an existing destination keeps its old mode through OpenFile
	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return errors.Errorf("copying mode: %w", err)
	}

	if err := os.Chtimes(dst, time.Time{}, srcInfo.ModTime()); err != nil {
		return errors.Errorf("copying modification time: %w", err)
	}

	return nil
}

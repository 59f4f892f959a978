/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package fencing implements the STONITH hook: an operator-supplied
// program that forcibly downs or network-isolates the old active before
// a would-be new active assumes the role. Fence is synchronous, but it
// sits behind one small method so tests can swap in a deterministic
// fake.
package fencing

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/openpbs/pbs-failover-core/logger"
)

// Result is the fencing outcome, mapped onto the state machine's retry
// decision in TAKEOV.
type Result int

const (
	// ResultOK means the program exists and exited zero.
	ResultOK Result = iota

	// ResultAbsent means no such program is installed. Treated as ok for
	// state-machine purposes, logged at info level.
	ResultAbsent

	// ResultFailed means the program exists and exited non-zero. Forbids
	// the transition to active; the caller retries after a back-off.
	ResultFailed
)

// String renders the result the way it appears in log lines.
func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultAbsent:
		return "absent"
	case ResultFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Hook runs the stonith program at ScriptPath, capturing its combined
// stdout/stderr under SpoolDir.
type Hook struct {
	// ScriptPath is `<priv>/stonith`: an optional executable.
	ScriptPath string

	// SpoolDir is `<home>/spool`, where capture files are written.
	SpoolDir string
}

// New returns a Hook for the given script path and spool directory.
func New(scriptPath, spoolDir string) *Hook {
	return &Hook{ScriptPath: scriptPath, SpoolDir: spoolDir}
}

// Fence invokes `stonith <host>`, redirecting its combined output to
// <SpoolDir>/stonith_out_err_fl_<host>_<pid>. The capture is emitted
// once to log at info level and the capture file is then removed.
// The program's output is copied off its pipe in one errgroup goroutine
// while another awaits its exit, so a cancelled ctx can unblock both
// instead of only the wait.
func (h *Hook) Fence(ctx context.Context, log logger.Logger, host string) (Result, error) {
	if _, statErr := os.Stat(h.ScriptPath); statErr != nil {
		if os.IsNotExist(statErr) {
			if log != nil {
				log.Info(fmt.Sprintf("fencing hook %s not installed, treating as ok", h.ScriptPath), nil)
			}
			return ResultAbsent, nil
		}
		return ResultFailed, statErr
	}

	if err := os.MkdirAll(h.SpoolDir, 0755); err != nil {
		return ResultFailed, err
	}

	capturePath := filepath.Join(h.SpoolDir, fmt.Sprintf("stonith_out_err_fl_%s_%d", host, os.Getpid()))
	capture, err := os.Create(capturePath)
	if err != nil {
		return ResultFailed, err
	}
	defer func() {
		_ = capture.Close()
		_ = os.Remove(capturePath)
	}()

	pr, pw, err := os.Pipe()
	if err != nil {
		return ResultFailed, err
	}

	cmd := exec.CommandContext(ctx, h.ScriptPath, host)
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err = cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return ResultFailed, err
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, copyErr := io.Copy(capture, pr)
		return copyErr
	})
	g.Go(func() error {
		waitErr := cmd.Wait()
		_ = pw.Close()
		return waitErr
	})

	runErr := g.Wait()
	_ = pr.Close()

	if log != nil {
		if data, readErr := os.ReadFile(capturePath); readErr == nil {
			log.Info(fmt.Sprintf("fencing hook %s output for %s:\n%s", h.ScriptPath, host, string(data)), nil)
		}
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if stderrors.As(runErr, &exitErr) {
			return ResultFailed, nil
		}
		return ResultFailed, runErr
	}

	return ResultOK, nil
}

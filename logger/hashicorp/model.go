/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

// Package hashicorp adapts the logger facade to hashicorp/go-hclog's Logger
// interface, so any hashicorp-ecosystem dependency wired into this core can
// share the same sink instead of opening its own.
package hashicorp

import (
	"io"
	"log"

	liblog "github.com/openpbs/pbs-failover-core/logger"
	logfld "github.com/openpbs/pbs-failover-core/logger/fields"
	loglvl "github.com/openpbs/pbs-failover-core/logger/level"

	hclog "github.com/hashicorp/go-hclog"
)

type bridge struct {
	l    liblog.Logger
	name string
}

// New wraps l as an hclog.Logger.
func New(l liblog.Logger, name string) hclog.Logger {
	return &bridge{l: l, name: name}
}

func argsToFields(args []interface{}) logfld.Fields {
	f := logfld.New()
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok {
			f[k] = args[i+1]
		}
	}
	return f
}

func (b *bridge) logWithArgs(msg string, args []interface{}, lvl loglvl.Level) {
	derived := b.l.WithFields(argsToFields(args))

	switch lvl {
	case loglvl.ErrorLevel:
		derived.Error(msg, nil)
	case loglvl.WarnLevel:
		derived.Warning(msg, nil)
	case loglvl.DebugLevel:
		derived.Debug(msg, nil)
	default:
		derived.Info(msg, nil)
	}
}

func (b *bridge) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Trace, hclog.Debug:
		b.logWithArgs(msg, args, loglvl.DebugLevel)
	case hclog.Warn:
		b.logWithArgs(msg, args, loglvl.WarnLevel)
	case hclog.Error:
		b.logWithArgs(msg, args, loglvl.ErrorLevel)
	default:
		b.logWithArgs(msg, args, loglvl.InfoLevel)
	}
}

func (b *bridge) Trace(msg string, args ...interface{}) { b.logWithArgs(msg, args, loglvl.DebugLevel) }
func (b *bridge) Debug(msg string, args ...interface{}) { b.logWithArgs(msg, args, loglvl.DebugLevel) }
func (b *bridge) Info(msg string, args ...interface{})  { b.logWithArgs(msg, args, loglvl.InfoLevel) }
func (b *bridge) Warn(msg string, args ...interface{})  { b.logWithArgs(msg, args, loglvl.WarnLevel) }
func (b *bridge) Error(msg string, args ...interface{}) { b.logWithArgs(msg, args, loglvl.ErrorLevel) }

func (b *bridge) IsTrace() bool { return b.l.GetLevel() >= loglvl.DebugLevel }
func (b *bridge) IsDebug() bool { return b.l.GetLevel() >= loglvl.DebugLevel }
func (b *bridge) IsInfo() bool  { return b.l.GetLevel() >= loglvl.InfoLevel }
func (b *bridge) IsWarn() bool  { return b.l.GetLevel() >= loglvl.WarnLevel }
func (b *bridge) IsError() bool { return true }

func (b *bridge) ImpliedArgs() []interface{} { return nil }

func (b *bridge) With(args ...interface{}) hclog.Logger {
	return &bridge{l: b.l.WithFields(argsToFields(args)), name: b.name}
}

func (b *bridge) Name() string { return b.name }

func (b *bridge) Named(name string) hclog.Logger {
	return &bridge{l: b.l, name: b.name + "." + name}
}

func (b *bridge) ResetNamed(name string) hclog.Logger {
	return &bridge{l: b.l, name: name}
}

func (b *bridge) SetLevel(level hclog.Level) {
	switch level {
	case hclog.Trace, hclog.Debug:
		b.l.SetLevel(loglvl.DebugLevel)
	case hclog.Warn:
		b.l.SetLevel(loglvl.WarnLevel)
	case hclog.Error:
		b.l.SetLevel(loglvl.ErrorLevel)
	default:
		b.l.SetLevel(loglvl.InfoLevel)
	}
}

func (b *bridge) GetLevel() hclog.Level {
	switch b.l.GetLevel() {
	case loglvl.DebugLevel:
		return hclog.Debug
	case loglvl.WarnLevel:
		return hclog.Warn
	case loglvl.ErrorLevel:
		return hclog.Error
	default:
		return hclog.Info
	}
}

func (b *bridge) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	return log.New(b.StandardWriter(opts), "", 0)
}

func (b *bridge) StandardWriter(_ *hclog.StandardLoggerOptions) io.Writer {
	return b.l
}

var _ hclog.Logger = (*bridge)(nil)

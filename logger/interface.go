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

// Package logger is a small structured-logging facade over logrus with a
// single stderr sink. Fields set through SetFields or WithFields (role,
// state, peer and the like) are stamped onto every line that Logger writes.
package logger

import (
	"io"
	"os"
	"sync"

	logfld "github.com/openpbs/pbs-failover-core/logger/fields"
	loglvl "github.com/openpbs/pbs-failover-core/logger/level"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
)

// Logger is the facade every package in this core logs through.
type Logger interface {
	io.Writer

	SetLevel(lvl loglvl.Level)
	GetLevel() loglvl.Level

	SetFields(f logfld.Fields)
	GetFields() logfld.Fields

	// WithFields returns a derived Logger carrying f merged on top of the
	// current fields, without mutating the receiver.
	WithFields(f logfld.Fields) Logger

	Debug(message string, err error)
	Info(message string, err error)
	Warning(message string, err error)
	Error(message string, err error)

	// Fatal logs message at ErrorLevel and then terminates the process
	// (os.Exit(1)), for fatal misconfiguration.
	Fatal(message string, err error)

	// CheckError logs err if non-nil through Fatal, Warning or Error
	// (lvlKO FatalLevel, WarnLevel, anything else); otherwise, unless lvlOK
	// is NilLevel, it logs message through Debug (lvlOK DebugLevel) or Info
	// (anything else). Returns true when err was nil.
	CheckError(lvlKO, lvlOK loglvl.Level, message string, err error) bool
}

type lgr struct {
	m sync.RWMutex
	e *logrus.Entry
	f logfld.Fields
}

// New returns a Logger writing to stderr through go-colorable (Windows-safe
// ANSI), colored via fatih/color, at InfoLevel.
func New() Logger {
	l := logrus.New()
	l.SetOutput(colorable.NewColorableStderr())
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	l.SetLevel(loglvl.InfoLevel.Logrus())

	return &lgr{
		e: logrus.NewEntry(l),
		f: logfld.New(),
	}
}

func (l *lgr) SetLevel(lvl loglvl.Level) {
	l.m.Lock()
	defer l.m.Unlock()
	l.e.Logger.SetLevel(lvl.Logrus())
}

func (l *lgr) GetLevel() loglvl.Level {
	l.m.RLock()
	defer l.m.RUnlock()

	switch l.e.Logger.GetLevel() {
	case logrus.PanicLevel:
		return loglvl.PanicLevel
	case logrus.FatalLevel:
		return loglvl.FatalLevel
	case logrus.ErrorLevel:
		return loglvl.ErrorLevel
	case logrus.WarnLevel:
		return loglvl.WarnLevel
	case logrus.DebugLevel, logrus.TraceLevel:
		return loglvl.DebugLevel
	default:
		return loglvl.InfoLevel
	}
}

func (l *lgr) SetFields(f logfld.Fields) {
	l.m.Lock()
	defer l.m.Unlock()
	l.f = f
	l.e = l.e.Logger.WithFields(f.Logrus())
}

func (l *lgr) GetFields() logfld.Fields {
	l.m.RLock()
	defer l.m.RUnlock()
	return l.f.Clone()
}

func (l *lgr) WithFields(f logfld.Fields) Logger {
	l.m.RLock()
	merged := l.f.Clone().Merge(f)
	e := l.e
	l.m.RUnlock()

	return &lgr{
		e: e.WithFields(merged.Logrus()),
		f: merged,
	}
}

func (l *lgr) Write(p []byte) (int, error) {
	l.m.RLock()
	defer l.m.RUnlock()
	l.e.Info(string(p))
	return len(p), nil
}

func entryErrField(err error) logrus.Fields {
	if err == nil {
		return logrus.Fields{}
	}
	return logrus.Fields{"error": err.Error()}
}

func (l *lgr) Debug(message string, err error) {
	l.m.RLock()
	defer l.m.RUnlock()
	l.e.WithFields(entryErrField(err)).Debug(message)
}

func (l *lgr) Info(message string, err error) {
	l.m.RLock()
	defer l.m.RUnlock()
	l.e.WithFields(entryErrField(err)).Info(message)
}

func (l *lgr) Warning(message string, err error) {
	l.m.RLock()
	defer l.m.RUnlock()
	l.e.WithFields(entryErrField(err)).Warn(message)
}

func (l *lgr) Error(message string, err error) {
	l.m.RLock()
	defer l.m.RUnlock()
	l.e.WithFields(entryErrField(err)).Error(color.RedString(message))
}

func (l *lgr) Fatal(message string, err error) {
	l.m.RLock()
	l.e.WithFields(entryErrField(err)).Error(color.RedString(message))
	l.m.RUnlock()
	os.Exit(1)
}

func (l *lgr) CheckError(lvlKO, lvlOK loglvl.Level, message string, err error) bool {
	if err != nil {
		switch lvlKO {
		case loglvl.FatalLevel:
			l.Fatal(message, err)
		case loglvl.WarnLevel:
			l.Warning(message, err)
		default:
			l.Error(message, err)
		}
		return false
	}

	if lvlOK != loglvl.NilLevel {
		switch lvlOK {
		case loglvl.DebugLevel:
			l.Debug(message, nil)
		default:
			l.Info(message, nil)
		}
	}

	return true
}

/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package config carries the failover pair's configuration behind a
// Component lifecycle contract
// (Init/Start/Stop/Reload/RegisterFlag/DefaultConfig/Dependencies) with a
// single registered component: FailoverConfig. This process only ever
// runs one component, so there is no multi-component registry.
package config

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	libctx "github.com/openpbs/pbs-failover-core/context"
	liberr "github.com/openpbs/pbs-failover-core/errors"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"
)

type FuncEvent func() liberr.Error

// Config owns the lifecycle of the single registered Component and the
// shared, cancellable context threaded through it.
type Config interface {
	// Context returns the config context instance.
	Context() libctx.Config[string]

	// CancelAdd registers functions that Shutdown runs before Stop.
	CancelAdd(fct ...func())

	// Component returns the registered component.
	Component() Component

	// RegisterFuncViper exposes the viper instance driving this config.
	RegisterFuncViper(fct FuncComponentViper)

	// Start triggers the component's Start function.
	Start() liberr.Error

	// Reload triggers the component's Reload function.
	Reload() liberr.Error

	// Stop triggers the component's Stop function.
	Stop()

	// Shutdown runs the cancel functions, calls Stop, and exits the process.
	Shutdown(code int)

	// RegisterFlag binds the component's flags to a cobra command.
	RegisterFlag(Command *spfcbr.Command, Viper *spfvpr.Viper) error
}

var (
	rootCtx context.Context
	rootCnl context.CancelFunc
)

func init() {
	rootCtx, rootCnl = context.WithCancel(context.Background())
}

// WaitNotify blocks until SIGINT/SIGTERM/SIGQUIT or the root context is
// canceled, then cancels the root context.
func WaitNotify() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case <-quit:
		rootCnl()
	case <-rootCtx.Done():
		rootCnl()
	}
}

// New returns a Config wrapping the given component, keyed for lookup and
// viper binding.
func New(key string, cpt Component) Config {
	fct := func() context.Context {
		return rootCtx
	}

	m := &model{
		m:   sync.RWMutex{},
		ctx: libctx.New[string](rootCtx),
		key: key,
		cpt: cpt,
	}

	cpt.Init(key, fct, func(string) Component { return cpt }, func() *spfvpr.Viper { return m.vip })

	return m
}

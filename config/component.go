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

package config

import (
	"context"

	liberr "github.com/openpbs/pbs-failover-core/errors"
	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"
)

type FuncContext func() context.Context
type FuncComponentGet func(key string) Component
type FuncComponentViper func() *spfvpr.Viper
type FuncComponentConfigGet func(key string, model interface{}) liberr.Error

// Component is the lifecycle contract every configurable unit of the
// failover core implements. The failover process registers exactly one:
// FailoverConfig (see model.go).
type Component interface {
	// Type returns the component type.
	Type() string

	// Init registers the component key, shared context function, sibling
	// lookup and viper accessor into the component instance.
	Init(key string, ctx FuncContext, get FuncComponentGet, vpr FuncComponentViper)

	// RegisterFuncStart registers functions called before/after Start.
	RegisterFuncStart(before, after func(cpt Component) liberr.Error)

	// RegisterFuncReload registers functions called before/after Reload.
	RegisterFuncReload(before, after func(cpt Component) liberr.Error)

	// RegisterFlag binds this component's flags to a cobra command and a
	// viper instance using "key.config_key" dotted paths.
	RegisterFlag(Command *spfcbr.Command, Viper *spfvpr.Viper) error

	// IsStarted reports whether Start has completed successfully.
	IsStarted() bool

	// Start is called when the global configuration has been loaded.
	Start(getCfg FuncComponentConfigGet) liberr.Error

	// Reload is called when the global configuration has been updated.
	Reload(getCfg FuncComponentConfigGet) liberr.Error

	// Stop is called when the global context is canceled.
	Stop()

	// DefaultConfig returns the default JSON config for this component.
	DefaultConfig(indent string) []byte

	// Dependencies lists other component keys this component requires.
	Dependencies() []string
}

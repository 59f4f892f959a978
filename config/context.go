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
	"os"
	"sync"

	libctx "github.com/openpbs/pbs-failover-core/context"
	liberr "github.com/openpbs/pbs-failover-core/errors"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"
)

type model struct {
	m sync.RWMutex

	ctx libctx.Config[string]
	key string
	cpt Component
	vip *spfvpr.Viper

	cancelFns []func()
}

func (o *model) Context() libctx.Config[string] {
	return o.ctx
}

func (o *model) CancelAdd(fct ...func()) {
	o.m.Lock()
	defer o.m.Unlock()

	for _, f := range fct {
		if f != nil {
			o.cancelFns = append(o.cancelFns, f)
		}
	}
}

func (o *model) Component() Component {
	return o.cpt
}

func (o *model) RegisterFuncViper(fct FuncComponentViper) {
	o.m.Lock()
	defer o.m.Unlock()

	if fct != nil {
		o.vip = fct()
	}
}

func (o *model) getConfig(key string, out interface{}) liberr.Error {
	o.m.RLock()
	vip := o.vip
	o.m.RUnlock()

	if vip == nil {
		return ErrorConfigMissingViper.Error(nil)
	}

	if err := vip.UnmarshalKey(key, out); err != nil {
		return ErrorComponentConfigError.Error(err)
	}

	return nil
}

func (o *model) Start() liberr.Error {
	return o.cpt.Start(o.getConfig)
}

func (o *model) Reload() liberr.Error {
	return o.cpt.Reload(o.getConfig)
}

func (o *model) Stop() {
	o.cpt.Stop()
}

func (o *model) Shutdown(code int) {
	o.m.Lock()
	fns := o.cancelFns
	o.cancelFns = nil
	o.m.Unlock()

	for _, f := range fns {
		f()
	}

	o.Stop()
	os.Exit(code)
}

func (o *model) RegisterFlag(cmd *spfcbr.Command, vip *spfvpr.Viper) error {
	return o.cpt.RegisterFlag(cmd, vip)
}

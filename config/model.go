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
	"encoding/json"
	"strconv"
	"sync"

	libdur "github.com/openpbs/pbs-failover-core/duration"
	liberr "github.com/openpbs/pbs-failover-core/errors"

	homedir "github.com/mitchellh/go-homedir"
	validator "github.com/go-playground/validator/v10"
	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"
)

// Delay represents secondary_delay: either a literal -1 (start active
// immediately, no liveness wait) or a positive duration, parsed from either
// a CLI flag string or a config-file duration string via duration.Parse.
type Delay struct {
	Immediate bool
	Wait      libdur.Duration
}

func (d Delay) String() string {
	if d.Immediate {
		return "-1"
	}
	return d.Wait.String()
}

// ParseDelay parses the secondary_delay value. "-1" (or any negative
// integer literal) means immediate promotion; anything else is parsed as a
// duration string ("30s", "1m", ...), falling back to plain seconds.
func ParseDelay(raw string) (Delay, error) {
	if raw == "-1" || raw == "" {
		return Delay{Immediate: raw == "-1"}, nil
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return Delay{Immediate: true}, nil
		}
		return Delay{Wait: libdur.Seconds(int64(n))}, nil
	}

	d, err := libdur.Parse(raw)
	if err != nil {
		return Delay{}, err
	}

	return Delay{Wait: d}, nil
}

// FailoverConfig carries the configuration inputs the failover core
// needs, validated with go-playground/validator.
type FailoverConfig struct {
	PBSPrimary       string `mapstructure:"pbs_primary"         validate:"required,hostname_rfc1123"`
	PBSSecondary     string `mapstructure:"pbs_secondary"       validate:"required,hostname_rfc1123"`
	SecondaryDelay   string `mapstructure:"secondary_delay"`
	AuthMethod       string `mapstructure:"auth_method"         validate:"required,oneof=none shared-secret mutual-tls"`
	PBSHomePath      string `mapstructure:"pbs_home_path"`
	PBSServerPortDIS int    `mapstructure:"pbs_server_port_dis" validate:"required,min=1,max=65535"`
	MinPeerVersion   string `mapstructure:"min_peer_version"`
}

// Normalize fills PBSHomePath's default (~/pbs via go-homedir) when blank,
// and parses the string fields into their typed equivalents.
func (c *FailoverConfig) Normalize() (Delay, error) {
	if c.PBSHomePath == "" {
		if home, err := homedir.Dir(); err == nil {
			c.PBSHomePath = home + "/pbs"
		}
	}

	return ParseDelay(c.SecondaryDelay)
}

// Validate runs struct-tag validation via go-playground/validator.
func (c *FailoverConfig) Validate() error {
	return validator.New().Struct(c)
}

// DefaultConfig implements Component.DefaultConfig.
func (c *FailoverConfig) DefaultConfig(indent string) []byte {
	def := FailoverConfig{
		PBSPrimary:       "pbs-primary.example.com",
		PBSSecondary:     "pbs-secondary.example.com",
		SecondaryDelay:   "-1",
		AuthMethod:       "shared-secret",
		PBSHomePath:      "",
		PBSServerPortDIS: 15001,
	}

	b, _ := json.MarshalIndent(def, "", indent)
	return b
}

// failoverComponent adapts FailoverConfig to the Component lifecycle
// contract.
type failoverComponent struct {
	m sync.RWMutex

	key string
	ctx FuncContext
	get FuncComponentGet
	vpr FuncComponentViper

	before, after             func(cpt Component) liberr.Error
	reloadBefore, reloadAfter func(cpt Component) liberr.Error

	started bool
	cfg     FailoverConfig
	delay   Delay
}

// NewFailoverComponent returns the single Component this repository ever
// registers.
func NewFailoverComponent() Component {
	return &failoverComponent{}
}

func (f *failoverComponent) Type() string {
	return "failover"
}

func (f *failoverComponent) Init(key string, ctx FuncContext, get FuncComponentGet, vpr FuncComponentViper) {
	f.m.Lock()
	defer f.m.Unlock()

	f.key = key
	f.ctx = ctx
	f.get = get
	f.vpr = vpr
}

func (f *failoverComponent) RegisterFuncStart(before, after func(cpt Component) liberr.Error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.before, f.after = before, after
}

func (f *failoverComponent) RegisterFuncReload(before, after func(cpt Component) liberr.Error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.reloadBefore, f.reloadAfter = before, after
}

func (f *failoverComponent) RegisterFlag(cmd *spfcbr.Command, vip *spfvpr.Viper) error {
	fl := cmd.Flags()

	fl.String("pbs-primary", "", "primary node hostname")
	fl.String("pbs-secondary", "", "secondary node hostname")
	fl.String("secondary-delay", "-1", "seconds to wait before the secondary assumes active role, or -1 for immediate")
	fl.String("auth-method", "shared-secret", "control-channel auth method: none, shared-secret, mutual-tls")
	fl.String("pbs-home-path", "", "PBS home path (default ~/pbs)")
	fl.Int("pbs-server-port-dis", 15001, "control-channel TCP port")
	fl.String("min-peer-version", "", "minimum accepted peer protocol version")

	for flag, key := range map[string]string{
		"pbs-primary":         "pbs_primary",
		"pbs-secondary":       "pbs_secondary",
		"secondary-delay":     "secondary_delay",
		"auth-method":         "auth_method",
		"pbs-home-path":       "pbs_home_path",
		"pbs-server-port-dis": "pbs_server_port_dis",
		"min-peer-version":    "min_peer_version",
	} {
		if err := vip.BindPFlag(key, fl.Lookup(flag)); err != nil {
			return err
		}
	}

	return nil
}

func (f *failoverComponent) IsStarted() bool {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.started
}

func (f *failoverComponent) load(getCfg FuncComponentConfigGet) liberr.Error {
	var cfg FailoverConfig

	if err := getCfg(f.key, &cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return ErrorComponentConfigError.Error(err)
	}

	delay, err := cfg.Normalize()
	if err != nil {
		return ErrorComponentConfigError.Error(err)
	}

	f.m.Lock()
	f.cfg = cfg
	f.delay = delay
	f.m.Unlock()

	return nil
}

func (f *failoverComponent) Start(getCfg FuncComponentConfigGet) liberr.Error {
	if f.before != nil {
		if err := f.before(f); err != nil {
			return err
		}
	}

	if err := f.load(getCfg); err != nil {
		return err
	}

	f.m.Lock()
	f.started = true
	f.m.Unlock()

	if f.after != nil {
		if err := f.after(f); err != nil {
			return err
		}
	}

	return nil
}

func (f *failoverComponent) Reload(getCfg FuncComponentConfigGet) liberr.Error {
	if f.reloadBefore != nil {
		if err := f.reloadBefore(f); err != nil {
			return err
		}
	}

	if err := f.load(getCfg); err != nil {
		return err
	}

	if f.reloadAfter != nil {
		if err := f.reloadAfter(f); err != nil {
			return err
		}
	}

	return nil
}

func (f *failoverComponent) Stop() {
	f.m.Lock()
	defer f.m.Unlock()
	f.started = false
}

func (f *failoverComponent) Dependencies() []string {
	return nil
}

// DefaultConfig implements Component.DefaultConfig.
func (f *failoverComponent) DefaultConfig(indent string) []byte {
	var cfg FailoverConfig
	return cfg.DefaultConfig(indent)
}

// Config returns the last loaded, validated configuration.
func (f *failoverComponent) Config() (FailoverConfig, Delay) {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.cfg, f.delay
}

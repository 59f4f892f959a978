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

// Command pbs-failoverd assembles the failover core's packages into a
// running process: a cobra root command with "serve" (run the configured
// role's event loop) and "status" (print the local node's role and
// secondary state) subcommands, flags bound to viper via
// config.Component.RegisterFlag.
package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/openpbs/pbs-failover-core/config"
	liberr "github.com/openpbs/pbs-failover-core/errors"
	"github.com/openpbs/pbs-failover-core/logger"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"
)

func main() {
	// config's fatal-misconfiguration codes (config.ErrorParamEmpty and
	// siblings) are only useful to an operator reading the daemon's logs if
	// the code and capture site travel with the message.
	liberr.SetModeReturnError(liberr.ErrorReturnCodeErrorTrace)
	liberr.SetDefaultPatternTrace("pbs-failoverd: [%d] %s (%s)")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *spfcbr.Command {
	vip := spfvpr.New()
	cpt := config.NewFailoverComponent()

	root := &spfcbr.Command{
		Use:   "pbs-failoverd",
		Short: "PBS primary/secondary failover coordinator",
	}

	if err := cpt.RegisterFlag(root, vip); err != nil {
		fmt.Fprintln(os.Stderr, "pbs-failoverd: cannot register flags:", err)
		os.Exit(1)
	}

	root.AddCommand(newServeCmd(cpt, vip))
	root.AddCommand(newStatusCmd(vip))

	return root
}

// loadConfig unmarshals, validates, and normalizes a FailoverConfig
// straight from viper, bypassing config.Component's Init/Start lifecycle:
// this process only ever has one component and one configuration source
// (the cobra flags just bound), so there is no Start sequencing to
// coordinate here.
func loadConfig(vip *spfvpr.Viper) (config.FailoverConfig, config.Delay, error) {
	var cfg config.FailoverConfig

	if err := vip.Unmarshal(&cfg); err != nil {
		return cfg, config.Delay{}, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, config.Delay{}, err
	}

	delay, err := cfg.Normalize()
	if err != nil {
		return cfg, config.Delay{}, err
	}

	return cfg, delay, nil
}

// hostIDFor hashes a hostname into the uint64 identifier REGISTER's reply
// and the license.fo exchange use: net.LookupHost resolves it to its
// first address, folded into 8 bytes. A real deployment would draw this
// from PBS's own host-identifier source; this core has no such registry,
// so the address is the closest stable, resolvable substitute.
func hostIDFor(hostname string) uint64 {
	addrs, err := net.LookupHost(hostname)
	if err != nil || len(addrs) == 0 {
		return fnv64(hostname)
	}
	return fnv64(addrs[0])
}

func fnv64(s string) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}

func controlAddr(cfg config.FailoverConfig, host string) string {
	return net.JoinHostPort(host, strconv.Itoa(cfg.PBSServerPortDIS))
}

func newLogger() logger.Logger {
	return logger.New()
}

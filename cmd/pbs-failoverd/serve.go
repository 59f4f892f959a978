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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/openpbs/pbs-failover-core/config"
	"github.com/openpbs/pbs-failover-core/failover"
	"github.com/openpbs/pbs-failover-core/metrics"
	"github.com/openpbs/pbs-failover-core/wire"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"
)

func newServeCmd(cpt config.Component, vip *spfvpr.Viper) *spfcbr.Command {
	var roleFlag string
	var metricsAddr string
	var onShutdown string
	var forceTakeover bool

	cmd := &spfcbr.Command{
		Use:   "serve",
		Short: "run this node's configured role (primary or secondary)",
		RunE: func(cmd *spfcbr.Command, args []string) error {
			_ = cpt // the component's flags are already bound into vip; loadConfig reads from vip directly (see main.go)
			return runServe(cmd.Context(), vip, roleFlag, metricsAddr, onShutdown, forceTakeover)
		},
	}

	cmd.Flags().StringVar(&roleFlag, "role", "auto", "primary, secondary, or auto (infer from local hostname)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address the Prometheus /metrics endpoint listens on")
	cmd.Flags().StringVar(&onShutdown, "on-shutdown", "takeover", "what a primary tells its secondary on clean shutdown: takeover, inactive, or shutdown")
	cmd.Flags().BoolVar(&forceTakeover, "force-takeover", false, "secondary only: skip the takeover-deadline wait and promote on the first failed dial")

	return cmd
}

// shutdownTag maps the --on-shutdown operator policy onto the wire tag the
// primary sends its registered secondary before tearing down.
func shutdownTag(policy string) (wire.Tag, error) {
	switch policy {
	case "takeover":
		return wire.TagSecdTakeover, nil
	case "inactive":
		return wire.TagSecdGoInactive, nil
	case "shutdown":
		return wire.TagSecdShutdown, nil
	default:
		return 0, fmt.Errorf("pbs-failoverd: invalid --on-shutdown %q (want takeover, inactive, or shutdown)", policy)
	}
}

func runServe(ctx context.Context, vip *spfvpr.Viper, roleFlag, metricsAddr, onShutdown string, forceTakeover bool) error {
	cfg, delay, err := loadConfig(vip)
	if err != nil {
		return fmt.Errorf("pbs-failoverd: invalid configuration: %w", err)
	}

	role, err := resolveRole(roleFlag, cfg)
	if err != nil {
		return err
	}

	sdTag, err := shutdownTag(onShutdown)
	if err != nil {
		return err
	}

	log := newLogger()

	privDir := filepath.Join(cfg.PBSHomePath, "server_priv")
	homeDir := cfg.PBSHomePath
	if err := os.MkdirAll(privDir, 0755); err != nil {
		return fmt.Errorf("pbs-failoverd: cannot create %s: %w", privDir, err)
	}

	var hostID uint64
	if role == failover.RolePrimary {
		hostID = hostIDFor(cfg.PBSPrimary)
	} else {
		hostID = hostIDFor(cfg.PBSSecondary)
	}

	fc := failover.New(role, cfg, delay, hostID, log, privDir, homeDir)
	defer func() { _ = fc.Stop() }()

	met := metrics.New(role.String())

	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go serveMetrics(runCtx, met, metricsAddr, log)

	if role == failover.RolePrimary {
		return runPrimary(runCtx, fc, met, sdTag)
	}
	return runSecondary(runCtx, fc, controlAddr(cfg, cfg.PBSPrimary), met, forceTakeover)
}

// resolveRole implements "auto": compare the local hostname against
// pbs_primary/pbs_secondary (the same pair a real PBS node's pbs.conf
// lists), matching how a two-node PBS failover pair is configured
// identically on both nodes and told apart only by which name is theirs.
func resolveRole(roleFlag string, cfg config.FailoverConfig) (failover.Role, error) {
	switch roleFlag {
	case "primary":
		return failover.RolePrimary, nil
	case "secondary":
		return failover.RoleSecondary, nil
	case "auto", "":
		host, err := os.Hostname()
		if err != nil {
			return 0, fmt.Errorf("pbs-failoverd: cannot determine local hostname for role auto-detection: %w", err)
		}
		switch host {
		case cfg.PBSPrimary:
			return failover.RolePrimary, nil
		case cfg.PBSSecondary:
			return failover.RoleSecondary, nil
		default:
			return 0, fmt.Errorf("pbs-failoverd: local hostname %q matches neither pbs_primary %q nor pbs_secondary %q", host, cfg.PBSPrimary, cfg.PBSSecondary)
		}
	default:
		return 0, fmt.Errorf("pbs-failoverd: invalid --role %q (want primary, secondary, or auto)", roleFlag)
	}
}

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
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openpbs/pbs-failover-core/failover"
	"github.com/openpbs/pbs-failover-core/liveness"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"
)

// newStatusCmd reports the local node's role and the failover filesystem
// surface directly, rather than dialing the control socket: the six-tag
// wire protocol is closed and has no STATUS request, and widening it for
// a diagnostic command is not worth it. Everything this command reports
// (the active-marker file, license.fo, the liveness timestamp) is
// exactly what a running node's own event loop consults to decide the
// same things, so reading it directly gives the same answer without a
// new wire tag.
func newStatusCmd(vip *spfvpr.Viper) *spfcbr.Command {
	return &spfcbr.Command{
		Use:   "status",
		Short: "report this node's role and failover state from local files",
		RunE: func(cmd *spfcbr.Command, args []string) error {
			cfg, _, err := loadConfig(vip)
			if err != nil {
				return fmt.Errorf("pbs-failoverd: invalid configuration: %w", err)
			}

			role, err := resolveRole("auto", cfg)
			if err != nil {
				return err
			}

			privDir := filepath.Join(cfg.PBSHomePath, "server_priv")

			// go-colorable keeps the role coloring usable on Windows
			// terminals too, same pairing the logger uses for its sink.
			out := colorable.NewColorableStdout()
			roleColor := color.New(color.FgGreen)
			if role == failover.RoleSecondary {
				roleColor = color.New(color.FgCyan)
			}
			fmt.Fprintf(out, "role:      %s\n", roleColor.Sprint(role.String()))

			marker := liveness.NewMarker(filepath.Join(privDir, "secondary_active"))
			if host, exists, err := marker.Read(); err != nil {
				fmt.Printf("active:    unknown (%v)\n", err)
			} else if exists {
				fmt.Fprintf(out, "active:    %s (claimed by %s)\n", color.YellowString("yes"), host)
			} else {
				fmt.Println("active:    no")
			}

			lic := liveness.NewLicense(filepath.Join(privDir, "license.fo"))
			if bytes, err := lic.Read(); err == nil {
				fmt.Printf("license:   %s\n", hex.EncodeToString(bytes[:]))
			} else if errors.Is(err, os.ErrNotExist) {
				fmt.Println("license:   not issued")
			} else {
				fmt.Printf("license:   unknown (%v)\n", err)
			}

			livePath := filepath.Join(privDir, "svrlive")
			if info, err := os.Stat(livePath); err == nil {
				fmt.Printf("svrlive:   last touched %s\n", info.ModTime())
			} else if os.IsNotExist(err) {
				fmt.Println("svrlive:   no liveness file yet")
			} else {
				fmt.Printf("svrlive:   unknown (%v)\n", err)
			}

			return nil
		},
	}
}

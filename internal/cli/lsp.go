// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nml-lang/nmlc/internal/cache"
	"github.com/nml-lang/nmlc/internal/lspserver"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "run the NML language server over stdio.",
	Run:   runLSP,
}

func init() {
	lspCmd.Flags().String("cache-file", "", "path to the cross-unit reference cache")
}

func runLSP(cmd *cobra.Command, args []string) {
	configureLogging(cmd)

	cacheFile, _ := cmd.Flags().GetString("cache-file")

	var c *cache.Cache

	if cacheFile != "" {
		var err error

		c, err = cache.Open(cacheFile, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening cache: %s\n", err)
			os.Exit(ExitInternalError)
		}

		defer c.Close()
	}

	log.Debug("starting nmlc lsp server over stdio")

	srv := lspserver.New(c)
	if err := srv.Serve(context.Background(), stdioReadWriteCloser{}); err != nil {
		fmt.Fprintf(os.Stderr, "lsp server: %s\n", err)
		os.Exit(ExitInternalError)
	}
}

// stdioReadWriteCloser adapts os.Stdin/os.Stdout to io.ReadWriteCloser for
// lspserver.Serve.
type stdioReadWriteCloser struct{}

func (stdioReadWriteCloser) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriteCloser) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioReadWriteCloser) Close() error                { return nil }

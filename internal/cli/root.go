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

// Package cli implements the nmlc command-line entrypoint, kept to a thin
// Cobra skeleton over package project with the documented surface
// (`compile <project_root>`, `lsp`): a rootCmd/Execute/persistent-flag
// shape, with a subcommand that configures logrus verbosity off a
// flag, then runs one pipeline stage and reports fatal errors via
// os.Exit), generalized from compiling Corset constraints to compiling
// NML projects.
package cli

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ExitSuccess, ExitUserError and ExitInternalError are the documented CLI
// exit codes.
const (
	ExitSuccess       = 0
	ExitUserError     = 1
	ExitInternalError = 2
)

// rootCmd is the base `nmlc` command.
var rootCmd = &cobra.Command{
	Use:   "nmlc",
	Short: "A compiler for the NML markup language.",
	Long:  "nmlc parses NML source files into a compiled artifact (HTML) and can run as a language server.",
}

// Execute runs the CLI, exiting the process with the documented codes.
// Called once from cmd/nmlc/main.go.
func Execute() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitUserError)
	}
}

func init() {
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(lspCmd)
}

// configureLogging sets logrus's level from the persistent --verbose flag,
// mirroring pkg/cmd/compile.go's `if GetFlag(cmd,"verbose") { log.SetLevel(...) }`.
func configureLogging(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

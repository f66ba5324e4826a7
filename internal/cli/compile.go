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
	"fmt"
	"os"
	"path/filepath"

	segjson "github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nml-lang/nmlc/internal/cache"
	"github.com/nml-lang/nmlc/internal/project"
	"github.com/nml-lang/nmlc/internal/report"
)

// DefaultCacheFile is the cache's default location under a project root:
// one file per project.
const DefaultCacheFile = ".nmlc-cache.db"

var compileCmd = &cobra.Command{
	Use:   "compile [project_root]",
	Short: "compile every NML source under project_root into HTML.",
	Args:  cobra.MaximumNArgs(1),
	Run:   runCompile,
}

func init() {
	compileCmd.Flags().Bool("no-cache", false, "disable the cross-unit reference cache")
	compileCmd.Flags().String("cache-file", "", "path to the cache file (default: <project_root>/"+DefaultCacheFile+")")
	compileCmd.Flags().Bool("json-reports", false, "emit every diagnostic as a JSON array on stdout instead of plain text on stderr")
}

func runCompile(cmd *cobra.Command, args []string) {
	configureLogging(cmd)

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	cacheFile, _ := cmd.Flags().GetString("cache-file")
	jsonReports, _ := cmd.Flags().GetBool("json-reports")

	var c *cache.Cache

	if !noCache {
		if cacheFile == "" {
			cacheFile = filepath.Join(root, DefaultCacheFile)
		}

		var err error

		c, err = cache.Open(cacheFile, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening cache: %s\n", err)
			os.Exit(ExitInternalError)
		}

		defer c.Close()
	}

	log.Debugf("discovering NML sources under %q", root)

	units, reports := project.Load(root, c)

	results, compileReports := project.Compile(units, c)

	all := reports.Append(compileReports...)

	if jsonReports {
		emitJSONReports(all)
	} else {
		printReports(reports)
		printReports(compileReports)
	}

	for _, r := range results {
		if err := os.WriteFile(r.OutputPath, []byte(r.Output.Content), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "writing %q: %s\n", r.OutputPath, err)
			os.Exit(ExitInternalError)
		}

		log.Debugf("wrote %s", r.OutputPath)
	}

	if navbar := project.Navigation(units); navbar != "" {
		navPath := filepath.Join(root, "navbar.html")
		if err := os.WriteFile(navPath, []byte(navbar), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "writing %q: %s\n", navPath, err)
			os.Exit(ExitInternalError)
		}

		log.Debugf("wrote %s", navPath)
	}

	if reports.HasErrors() || compileReports.HasErrors() {
		os.Exit(ExitUserError)
	}
}

// emitJSONReports marshals reports via segmentio/encoding/json and writes
// the result as a single array to stdout, for collaborators that want
// structured diagnostics instead of printReports' plain-text lines.
func emitJSONReports(reports report.Reports) {
	data, err := segjson.Marshal(reports.ToJSON())
	if err != nil {
		fmt.Fprintf(os.Stderr, "encoding reports as JSON: %s\n", err)
		os.Exit(ExitInternalError)
	}

	os.Stdout.Write(data)
	fmt.Println()
}

// printReports renders every report to stderr, one line each, in the
// plain "kind: file:span: message" shape Report.Error() produces — actual
// diagnostic formatting/coloring is left to an external collaborator.
func printReports(reports report.Reports) {
	for _, r := range reports {
		fmt.Fprintln(os.Stderr, r.Error())

		for _, note := range r.Notes {
			fmt.Fprintf(os.Stderr, "  note: %s: %s\n", note.Span.OriginalRange().Span(), note.Message)
		}
	}
}

// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli assembles the spawnctl command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/spawnctl/internal/commands/list"
	"github.com/tombee/spawnctl/internal/commands/manager"
	"github.com/tombee/spawnctl/internal/commands/shared"
	"github.com/tombee/spawnctl/internal/commands/spawn"
	"github.com/tombee/spawnctl/internal/commands/version"
)

// NewRootCommand creates the spawnctl root command with all subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spawnctl",
		Short: "Drive controllers through their lifecycle",
		Long: `spawnctl talks to a long-running controller manager and drives
named controllers through load, configure and activate. With
--unload-on-kill it also tears them down again on interrupt.

Set SPAWNCTL_HOST to reach a manager on a non-default endpoint
(unix:///path.sock, tcp://host:port or https://host:port).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	quiet, jsonOut := shared.RegisterFlagPointers()
	rootCmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(jsonOut, "json", false, "Output machine-readable JSON")

	rootCmd.AddCommand(spawn.NewCommand())
	rootCmd.AddCommand(list.NewCommand())
	rootCmd.AddCommand(manager.NewCommand())
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// SetVersion records build-time version information for the version
// command and error reporting.
func SetVersion(v, commit, buildDate string) {
	shared.SetVersion(v, commit, buildDate)
}

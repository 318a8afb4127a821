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

// Command spawnctl drives controllers hosted by a controller manager
// through their lifecycle.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tombee/spawnctl/internal/cli"
	"github.com/tombee/spawnctl/internal/client"
	"github.com/tombee/spawnctl/internal/commands/shared"
)

// Build-time version information, set via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		var notRunning *client.ManagerNotRunningError
		if errors.As(err, &notRunning) {
			fmt.Fprintln(os.Stderr, shared.RenderError(notRunning.Error()))
			fmt.Fprintln(os.Stderr, shared.RenderMuted("Is the controller manager running? Use --manager-timeout to wait for it."))
		} else {
			fmt.Fprintln(os.Stderr, shared.RenderError(err.Error()))
		}
		os.Exit(1)
	}
}

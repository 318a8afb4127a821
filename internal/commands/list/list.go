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

// Package list implements the list command.
package list

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/spawnctl/internal/client"
	"github.com/tombee/spawnctl/internal/commands/shared"
)

type listOptions struct {
	manager        string
	managerTimeout float64
	callTimeout    float64
}

// NewCommand creates the list command.
func NewCommand() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List controllers hosted by the manager",
		Long: `List every controller the manager currently hosts, together with
its lifecycle state (unloaded, loaded, inactive or active).`,
		Example: `  # List controllers on the default manager
  spawnctl list

  # List controllers on a specific manager, as JSON
  spawnctl list -m my_manager --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.manager, "manager", "m", client.DefaultManager, "Controller manager identity")
	cmd.Flags().Float64Var(&opts.managerTimeout, "manager-timeout", 0, "Seconds to wait for the manager to be available (0 = no wait)")
	cmd.Flags().Float64Var(&opts.callTimeout, "call-timeout", 10.0, "Seconds to wait for each manager response")

	return cmd
}

func runList(ctx context.Context, opts listOptions) error {
	c, err := client.New(client.Config{
		Manager:      opts.manager,
		ReadyTimeout: time.Duration(opts.managerTimeout * float64(time.Second)),
		CallTimeout:  time.Duration(opts.callTimeout * float64(time.Second)),
	})
	if err != nil {
		return err
	}

	controllers, err := c.ListControllers(ctx)
	if err != nil {
		return err
	}

	if shared.GetJSON() {
		return writeJSON(os.Stdout, controllers)
	}
	return writeTable(os.Stdout, controllers)
}

func writeJSON(w io.Writer, controllers []client.ControllerInfo) error {
	if controllers == nil {
		controllers = []client.ControllerInfo{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(controllers)
}

func writeTable(w io.Writer, controllers []client.ControllerInfo) error {
	if len(controllers) == 0 {
		fmt.Fprintln(w, shared.RenderMuted("No controllers are loaded"))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATE")
	for _, ctrl := range controllers {
		fmt.Fprintf(tw, "%s\t%s\n", ctrl.Name, renderState(ctrl.State))
	}
	return tw.Flush()
}

// renderState colors the state for terminal output; non-terminal output
// stays plain through the shared render gating.
func renderState(state client.ControllerState) string {
	switch state {
	case client.StateActive:
		return shared.RenderOK(string(state))
	case client.StateInactive, client.StateLoaded:
		return shared.RenderWarn(string(state))
	case client.StateUnloaded:
		return shared.RenderMuted(string(state))
	default:
		return string(state)
	}
}

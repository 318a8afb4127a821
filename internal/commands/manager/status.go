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

package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/spawnctl/internal/client"
	"github.com/tombee/spawnctl/internal/commands/shared"
)

type statusOptions struct {
	manager        string
	managerTimeout float64
	callTimeout    float64
}

func newStatusCommand() *cobra.Command {
	var opts statusOptions

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show manager health and version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.manager, "manager", "m", client.DefaultManager, "Controller manager identity")
	cmd.Flags().Float64Var(&opts.managerTimeout, "manager-timeout", 0, "Seconds to wait for the manager to be available (0 = no wait)")
	cmd.Flags().Float64Var(&opts.callTimeout, "call-timeout", 10.0, "Seconds to wait for each manager response")

	return cmd
}

// managerStatus aggregates the health and version responses for output.
type managerStatus struct {
	Manager   string `json:"manager"`
	Status    string `json:"status"`
	Uptime    string `json:"uptime,omitempty"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func runStatus(ctx context.Context, opts statusOptions) error {
	c, err := client.New(client.Config{
		Manager:      opts.manager,
		ReadyTimeout: time.Duration(opts.managerTimeout * float64(time.Second)),
		CallTimeout:  time.Duration(opts.callTimeout * float64(time.Second)),
	})
	if err != nil {
		return err
	}

	health, err := c.Health(ctx)
	if err != nil {
		return err
	}
	version, err := c.Version(ctx)
	if err != nil {
		return err
	}

	status := managerStatus{
		Manager:   c.Manager(),
		Status:    health.Status,
		Uptime:    health.Uptime,
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: version.GoVersion,
	}

	if shared.GetJSON() {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}
	writeStatus(os.Stdout, status)
	return nil
}

func writeStatus(w io.Writer, status managerStatus) {
	fmt.Fprintln(w, shared.RenderHeader("Manager: "+status.Manager))
	if status.Status == "healthy" {
		fmt.Fprintln(w, shared.RenderOK("Status: "+status.Status))
	} else {
		fmt.Fprintln(w, shared.RenderWarn("Status: "+status.Status))
	}
	if status.Uptime != "" {
		fmt.Fprintln(w, "Uptime: "+status.Uptime)
	}
	fmt.Fprintf(w, "Version: %s (%s, built %s, %s)\n",
		status.Version, status.Commit, status.BuildDate, status.GoVersion)
}

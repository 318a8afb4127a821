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
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/spawnctl/internal/client"
	"github.com/tombee/spawnctl/internal/commands/shared"
)

type pingOptions struct {
	manager        string
	managerTimeout float64
	callTimeout    float64
}

func newPingCommand() *cobra.Command {
	var opts pingOptions

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the manager is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPing(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.manager, "manager", "m", client.DefaultManager, "Controller manager identity")
	cmd.Flags().Float64Var(&opts.managerTimeout, "manager-timeout", 0, "Seconds to wait for the manager to be available (0 = no wait)")
	cmd.Flags().Float64Var(&opts.callTimeout, "call-timeout", 10.0, "Seconds to wait for each manager response")

	return cmd
}

func runPing(ctx context.Context, opts pingOptions) error {
	c, err := client.New(client.Config{
		Manager:      opts.manager,
		ReadyTimeout: time.Duration(opts.managerTimeout * float64(time.Second)),
		CallTimeout:  time.Duration(opts.callTimeout * float64(time.Second)),
	})
	if err != nil {
		return err
	}

	start := time.Now()
	if err := c.Ping(ctx); err != nil {
		return err
	}
	latency := time.Since(start).Round(time.Millisecond)

	if !shared.GetQuiet() {
		fmt.Println(shared.RenderOK(fmt.Sprintf("Manager %s is reachable (%s)", c.Manager(), latency)))
	}
	return nil
}

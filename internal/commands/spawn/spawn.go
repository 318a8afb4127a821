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

// Package spawn implements the spawn command: bring controllers to their
// desired lifecycle state and, when asked, hold them until interrupted.
package spawn

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tombee/spawnctl/internal/client"
	"github.com/tombee/spawnctl/internal/commands/shared"
	"github.com/tombee/spawnctl/internal/lockfile"
	"github.com/tombee/spawnctl/internal/log"
	"github.com/tombee/spawnctl/internal/params"
	"github.com/tombee/spawnctl/internal/spawner"
)

type spawnOptions struct {
	manager         string
	paramFiles      []string
	loadOnly        bool
	inactive        bool
	unloadOnKill    bool
	activateAsGroup bool
	managerTimeout  float64
	switchTimeout   float64
	callTimeout     float64
	controllerArgs  []string
	namespace       string
}

// NewCommand creates the spawn command.
func NewCommand() *cobra.Command {
	var opts spawnOptions

	cmd := &cobra.Command{
		Use:   "spawn CONTROLLER [CONTROLLER...]",
		Short: "Load, configure and activate controllers",
		Long: `Bring one or more controllers hosted by the controller manager to
their desired lifecycle state.

Controllers are processed strictly in the order given: each one is
loaded (skipped with a warning if the manager already hosts it),
configured and activated before the next one starts. Use
--activate-as-group to defer activation into a single switch call
covering the whole set, which chained controllers require.

Concurrent spawn invocations on the same host serialize through an
advisory lock, so overlapping controller sets cannot interleave their
manager calls.

With --unload-on-kill the command stays resident after activation and,
on interrupt, deactivates and unloads every controller it spawned.`,
		Example: `  # Load, configure and activate two controllers
  spawnctl spawn arm_controller gripper_controller

  # Activate chained controllers atomically
  spawnctl spawn effort_controller chained_filter --activate-as-group

  # Push parameters before loading
  spawnctl spawn arm_controller -p arm_params.yaml

  # Keep ownership until interrupted, then deactivate and unload
  spawnctl spawn arm_controller --unload-on-kill

  # Wait up to 30s for a manager that is still starting
  spawnctl spawn arm_controller --manager-timeout 30`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpawn(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.manager, "manager", "m", client.DefaultManager, "Controller manager identity")
	cmd.Flags().StringArrayVarP(&opts.paramFiles, "param-file", "p", nil, "Controller parameter file (repeatable)")
	cmd.Flags().BoolVar(&opts.loadOnly, "load-only", false, "Only load the controllers and leave them unconfigured")
	cmd.Flags().BoolVar(&opts.inactive, "inactive", false, "Load and configure the controllers, but do not activate them")
	cmd.Flags().BoolVarP(&opts.unloadOnKill, "unload-on-kill", "u", false, "Wait until interrupted, then deactivate and unload the controllers")
	cmd.Flags().BoolVar(&opts.activateAsGroup, "activate-as-group", false, "Activate all controllers together in one switch call")
	cmd.Flags().StringArrayVar(&opts.controllerArgs, "controller-args", nil, "Extra node arguments for the controllers (repeatable)")
	cmd.Flags().StringVar(&opts.namespace, "namespace", "/", "Namespace for file-derived parameters")
	addTimeoutFlags(cmd.Flags(), &opts)

	return cmd
}

// addTimeoutFlags registers the three independent timeout flags. The
// manager-ready wait and the switch wait default differently and must
// never be conflated.
func addTimeoutFlags(fs *pflag.FlagSet, opts *spawnOptions) {
	fs.Float64Var(&opts.managerTimeout, "manager-timeout", 0, "Seconds to wait for the manager to be available (0 = no wait)")
	fs.Float64Var(&opts.switchTimeout, "switch-timeout", 5.0, "Seconds to wait for a controller state switch to complete")
	fs.Float64Var(&opts.callTimeout, "call-timeout", 10.0, "Seconds to wait for each manager response")
}

func runSpawn(ctx context.Context, names []string, opts spawnOptions) error {
	logger := log.WithComponent(log.WithCorrelationID(log.New(log.FromEnv()), uuid.NewString()), "spawn")
	logger = logger.With(log.ManagerKey, opts.manager)

	// Input validation happens before the lock and before any manager
	// contact, so a bad invocation has no side effects at all.
	requests, err := buildRequests(names, opts)
	if err != nil {
		return err
	}
	if err := params.Validate(opts.paramFiles); err != nil {
		return err
	}

	lock := lockfile.New(lockfile.DefaultPath)
	policy := lockfile.DefaultRetryPolicy()
	policy.OnRetry = func(attempt int, err error) {
		logger.Warn("spawner lock attempt timed out, retrying",
			"attempt", attempt, "max_attempts", policy.MaxAttempts, log.Error(err))
	}

	logger.Debug("waiting for the spawner lock")
	if err := lock.AcquireRetry(ctx, policy); err != nil {
		return fmt.Errorf("failed to acquire spawner lock: %w", err)
	}
	defer lock.Release()
	logger.Debug("spawner lock acquired")

	c, err := client.New(client.Config{
		Manager:       opts.manager,
		ReadyTimeout:  seconds(opts.managerTimeout),
		CallTimeout:   seconds(opts.callTimeout),
		SwitchTimeout: seconds(opts.switchTimeout),
	})
	if err != nil {
		return err
	}

	s := spawner.New(c, requests, spawner.Options{
		Namespace:       opts.namespace,
		LoadOnly:        opts.loadOnly,
		Inactive:        opts.inactive,
		ActivateAsGroup: opts.activateAsGroup,
		Strictness:      client.Strict,
	}, logger)

	if err := s.Up(ctx); err != nil {
		return err
	}

	if !opts.unloadOnKill {
		if !shared.GetQuiet() {
			fmt.Println(shared.RenderOK(fmt.Sprintf("Spawned controllers: %s", strings.Join(names, ", "))))
		}
		return nil
	}

	if !shared.GetQuiet() {
		fmt.Println(shared.RenderMuted("Waiting until interrupt to unload controllers"))
	}
	waitForInterrupt(logger)

	// The command context may already be cancelled by the interrupt;
	// teardown still has to talk to the manager, so it gets a fresh one.
	if err := s.Down(context.Background()); err != nil {
		return err
	}

	if !shared.GetQuiet() {
		fmt.Println(shared.RenderOK("Controllers deactivated and unloaded"))
	}
	return nil
}

// waitForInterrupt blocks until the first SIGINT or SIGTERM. Signal
// delivery is then restored to the default disposition, so a second
// interrupt during teardown kills the process outright.
func waitForInterrupt(logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	signal.Stop(sigCh)

	logger.Info("interrupt received, deactivating and unloading controllers", "signal", sig.String())
}

// buildRequests turns the positional names and invocation-wide flags
// into immutable per-controller requests.
func buildRequests(names []string, opts spawnOptions) ([]spawner.Request, error) {
	seen := make(map[string]struct{}, len(names))
	nodeArgs := flattenArgs(opts.controllerArgs)

	requests := make([]spawner.Request, 0, len(names))
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("controller name must not be empty")
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate controller name: %s", name)
		}
		seen[name] = struct{}{}

		requests = append(requests, spawner.Request{
			Name:       name,
			ParamFiles: opts.paramFiles,
			NodeArgs:   nodeArgs,
		})
	}
	return requests, nil
}

// flattenArgs splits each repeated --controller-args value on whitespace,
// so both `--controller-args "--remap a:=b"` and repeated single-token
// flags produce the same argument vector.
func flattenArgs(values []string) []string {
	var args []string
	for _, v := range values {
		args = append(args, strings.Fields(v)...)
	}
	return args
}

// seconds converts a float seconds flag to a duration.
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

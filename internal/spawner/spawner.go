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

package spawner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tombee/spawnctl/internal/client"
	"github.com/tombee/spawnctl/internal/log"
)

// NodeOptionsKey is the reserved parameter key the manager reads extra
// node arguments from when it constructs the controller's node.
const NodeOptionsKey = "node_options_args"

// ManagerClient is the subset of the manager API the spawner drives.
// *client.Client satisfies it; tests substitute a fake.
type ManagerClient interface {
	ListControllers(ctx context.Context) ([]client.ControllerInfo, error)
	LoadController(ctx context.Context, name string) error
	ConfigureController(ctx context.Context, name string) error
	UnloadController(ctx context.Context, name string) error
	SwitchControllers(ctx context.Context, req client.SwitchRequest) error
	SetControllerParameters(ctx context.Context, name, key string, values []string) error
	SetControllerParametersFromFiles(ctx context.Context, name string, files []string, namespace string) error
}

// Request names one controller to spawn, with its parameter sources.
// Requests are built once from CLI input and never mutated.
type Request struct {
	// Name is the controller name, unique within one invocation.
	Name string

	// ParamFiles are parameter files pushed to the controller's node
	// before it is loaded.
	ParamFiles []string

	// NodeArgs are extra node arguments pushed under NodeOptionsKey
	// before the controller is loaded.
	NodeArgs []string
}

// Options hold the invocation-wide flags.
type Options struct {
	// Namespace scopes file-derived parameters.
	Namespace string

	// LoadOnly stops after loading, leaving controllers unconfigured.
	LoadOnly bool

	// Inactive stops after configuring, leaving controllers inactive.
	Inactive bool

	// ActivateAsGroup defers activation into one switch call covering
	// every requested controller, required for chained controllers that
	// must transition together.
	ActivateAsGroup bool

	// Strictness is applied to every switch call, activation and
	// teardown deactivation alike.
	Strictness client.Strictness
}

// Spawner sequences lifecycle operations for a fixed set of controllers.
type Spawner struct {
	mgr      ManagerClient
	requests []Request
	opts     Options
	logger   *slog.Logger
}

// New creates a Spawner for the given requests. The request set is fixed
// for the spawner's lifetime.
func New(mgr ManagerClient, requests []Request, opts Options, logger *slog.Logger) *Spawner {
	if opts.Strictness == "" {
		opts.Strictness = client.Strict
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Spawner{
		mgr:      mgr,
		requests: requests,
		opts:     opts,
		logger:   logger,
	}
}

// Names returns the requested controller names in input order.
func (s *Spawner) Names() []string {
	names := make([]string, len(s.requests))
	for i, req := range s.requests {
		names[i] = req.Name
	}
	return names
}

// Up runs the forward sequence for every requested controller, in input
// order, then performs the deferred group activation if one was
// requested. The first failure aborts the invocation; the manager is
// left in whatever state the last successful call produced.
func (s *Spawner) Up(ctx context.Context) error {
	for _, req := range s.requests {
		if err := s.bringUp(ctx, req); err != nil {
			return err
		}
	}

	if s.opts.ActivateAsGroup && !s.opts.Inactive && !s.opts.LoadOnly {
		names := s.Names()
		err := s.mgr.SwitchControllers(ctx, client.SwitchRequest{
			Activate:   names,
			Strictness: s.opts.Strictness,
			Wait:       true,
		})
		if err != nil {
			return fmt.Errorf("failed to activate controllers %v: %w", names, err)
		}
		s.logger.Info("configured and activated controllers as a group", "controllers", names)
	}

	return nil
}

// bringUp drives one controller through load, configure and, unless
// deferred or suppressed, activation.
func (s *Spawner) bringUp(ctx context.Context, req Request) error {
	logger := log.WithController(s.logger, req.Name)

	loaded, err := s.isLoaded(ctx, req.Name)
	if err != nil {
		return err
	}

	if loaded {
		// Load is not idempotent on the manager side, so an already
		// hosted controller is skipped, not re-loaded.
		logger.Warn("controller already loaded, skipping load")
	} else {
		if err := s.injectParameters(ctx, req); err != nil {
			return err
		}

		if err := s.mgr.LoadController(ctx, req.Name); err != nil {
			return fmt.Errorf("failed to load controller %s: %w", req.Name, err)
		}
		logger.Info("loaded controller")
	}

	if s.opts.LoadOnly {
		return nil
	}

	if err := s.mgr.ConfigureController(ctx, req.Name); err != nil {
		return fmt.Errorf("failed to configure controller %s: %w", req.Name, err)
	}

	if s.opts.Inactive || s.opts.ActivateAsGroup {
		logger.Info("configured controller")
		return nil
	}

	err = s.mgr.SwitchControllers(ctx, client.SwitchRequest{
		Activate:   []string{req.Name},
		Strictness: s.opts.Strictness,
		Wait:       true,
	})
	if err != nil {
		return fmt.Errorf("failed to activate controller %s: %w", req.Name, err)
	}
	logger.Info("configured and activated controller")

	return nil
}

// injectParameters pushes node arguments and parameter files ahead of
// load. Both must succeed: loading a controller without its expected
// configuration is worse than not loading it at all.
func (s *Spawner) injectParameters(ctx context.Context, req Request) error {
	if len(req.NodeArgs) > 0 {
		err := s.mgr.SetControllerParameters(ctx, req.Name, NodeOptionsKey, req.NodeArgs)
		if err != nil {
			return fmt.Errorf("failed to set node arguments for %s: %w", req.Name, err)
		}
	}

	if len(req.ParamFiles) > 0 {
		err := s.mgr.SetControllerParametersFromFiles(ctx, req.Name, req.ParamFiles, s.opts.Namespace)
		if err != nil {
			return fmt.Errorf("failed to set parameters for %s: %w", req.Name, err)
		}
	}

	return nil
}

// isLoaded queries the manager's listing for the controller. The listing
// is taken fresh for every controller: the manager is the single source
// of truth and its state moves as the sequence progresses.
func (s *Spawner) isLoaded(ctx context.Context, name string) (bool, error) {
	controllers, err := s.mgr.ListControllers(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to query loaded controllers: %w", err)
	}
	for _, c := range controllers {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

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

/*
Package client provides an HTTP client for the controller manager API.

The controller manager is a separate long-running process that owns
authoritative controller state. This package is the only way spawnctl
talks to it: every lifecycle operation (list, load, configure, switch,
unload, parameter injection) is a synchronous request that blocks the
caller up to its configured timeout.

# Basic Usage

	c, err := client.New(client.Config{Manager: "controller-manager"})
	if err != nil {
	    log.Fatal(err)
	}

	controllers, err := c.ListControllers(ctx)

	if err := c.LoadController(ctx, "arm_controller"); err != nil {
	    // *client.OperationError: the manager answered ok=false
	    // *client.ManagerNotRunningError: the manager is unreachable
	}

# Timeouts

Three independent timeouts govern a call, mirroring the manager's own
service semantics:

  - Config.ReadyTimeout: how long to wait for the manager endpoint to
    become reachable before each call. Zero means do not wait.
  - Config.CallTimeout: how long to wait for a response once issued.
  - Config.SwitchTimeout: response bound for SwitchControllers only.
    The manager may legitimately defer a state transition (for example a
    paused execution context), so switches get their own, usually longer,
    bound.

# Transport

The default transport connects to the manager's Unix socket, derived from
the manager identity:

	$XDG_RUNTIME_DIR/spawnctl/<manager>.sock
	~/.spawnctl/<manager>.sock  (fallback)

Override with the SPAWNCTL_HOST environment variable (unix://, tcp://
or https://).
*/
package client

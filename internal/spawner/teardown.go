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
	"errors"
	"fmt"

	"github.com/tombee/spawnctl/internal/client"
	"github.com/tombee/spawnctl/internal/log"
)

// Down runs the reverse sequence: one batched deactivation of every
// requested controller, then an independent unload per controller.
//
// The asymmetry is deliberate. Deactivation semantics can depend on
// cross-controller chaining, so it is a single switch call covering the
// whole set, and its failure is reported but does not stop the unloads.
// Unloading is a unit-local operation, so each controller is attempted
// regardless of how its predecessors fared; the failures are collected
// and returned together.
func (s *Spawner) Down(ctx context.Context) error {
	names := s.Names()

	if !s.opts.Inactive {
		s.logger.Info("deactivating controllers", "controllers", names)
		err := s.mgr.SwitchControllers(ctx, client.SwitchRequest{
			Deactivate: names,
			Strictness: s.opts.Strictness,
			Wait:       true,
		})
		if err != nil {
			s.logger.Error("failed to deactivate controllers", log.Error(err))
		} else {
			s.logger.Info("deactivated controllers", "controllers", names)
		}
	}

	var failed []error
	for _, name := range names {
		if err := s.mgr.UnloadController(ctx, name); err != nil {
			s.logger.Error("failed to unload controller", log.ControllerKey, name, log.Error(err))
			failed = append(failed, err)
			continue
		}
		s.logger.Info("unloaded controller", log.ControllerKey, name)
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to unload %d of %d controllers: %w", len(failed), len(names), errors.Join(failed...))
	}

	s.logger.Info("unloaded controllers", "controllers", names)
	return nil
}

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

// Package manager implements the manager command group for inspecting a
// controller manager process.
package manager

import (
	"github.com/spf13/cobra"
)

// NewCommand creates the manager command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manager",
		Short: "Inspect a controller manager",
	}

	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newPingCommand())

	return cmd
}

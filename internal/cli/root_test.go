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

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "spawnctl", cmd.Name())
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "spawn")
	assert.Contains(t, names, "list")
	assert.Contains(t, names, "manager")
	assert.Contains(t, names, "version")
}

func TestRootPersistentFlags(t *testing.T) {
	cmd := NewRootCommand()

	quiet := cmd.PersistentFlags().Lookup("quiet")
	require.NotNil(t, quiet)
	assert.Equal(t, "q", quiet.Shorthand)

	require.NotNil(t, cmd.PersistentFlags().Lookup("json"))
}

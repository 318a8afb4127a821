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

package spawn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequests(t *testing.T) {
	opts := spawnOptions{
		paramFiles:     []string{"a.yaml"},
		controllerArgs: []string{"--remap from:=to", "--log-level debug"},
	}

	reqs, err := buildRequests([]string{"ctrl_a", "ctrl_b"}, opts)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, "ctrl_a", reqs[0].Name)
	assert.Equal(t, []string{"a.yaml"}, reqs[0].ParamFiles)
	assert.Equal(t, []string{"--remap", "from:=to", "--log-level", "debug"}, reqs[0].NodeArgs)

	// Every controller shares the same parameter files and node args.
	assert.Equal(t, reqs[0].ParamFiles, reqs[1].ParamFiles)
	assert.Equal(t, reqs[0].NodeArgs, reqs[1].NodeArgs)
}

func TestBuildRequestsRejectsDuplicates(t *testing.T) {
	_, err := buildRequests([]string{"ctrl_a", "ctrl_b", "ctrl_a"}, spawnOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate controller name: ctrl_a")
}

func TestBuildRequestsRejectsEmptyName(t *testing.T) {
	_, err := buildRequests([]string{"ctrl_a", ""}, spawnOptions{})
	require.Error(t, err)
}

func TestFlattenArgs(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{
			name:   "empty",
			values: nil,
			want:   nil,
		},
		{
			name:   "single quoted value with spaces",
			values: []string{"--remap a:=b --use-sim-time"},
			want:   []string{"--remap", "a:=b", "--use-sim-time"},
		},
		{
			name:   "repeated single tokens",
			values: []string{"--remap", "a:=b"},
			want:   []string{"--remap", "a:=b"},
		},
		{
			name:   "extra whitespace collapses",
			values: []string{"  --remap   a:=b  "},
			want:   []string{"--remap", "a:=b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, flattenArgs(tt.values))
		})
	}
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, time.Duration(0), seconds(0))
	assert.Equal(t, 5*time.Second, seconds(5))
	assert.Equal(t, 2500*time.Millisecond, seconds(2.5))
}

func TestNewCommandFlagDefaults(t *testing.T) {
	cmd := NewCommand()

	tests := []struct {
		flag string
		want string
	}{
		{"manager", "controller-manager"},
		{"manager-timeout", "0"},
		{"switch-timeout", "5"},
		{"call-timeout", "10"},
		{"namespace", "/"},
		{"load-only", "false"},
		{"inactive", "false"},
		{"unload-on-kill", "false"},
		{"activate-as-group", "false"},
	}

	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.flag)
		require.NotNil(t, f, "flag %s not registered", tt.flag)
		assert.Equal(t, tt.want, f.DefValue, "flag %s", tt.flag)
	}
}

func TestNewCommandShorthands(t *testing.T) {
	cmd := NewCommand()

	assert.Equal(t, "m", cmd.Flags().Lookup("manager").Shorthand)
	assert.Equal(t, "p", cmd.Flags().Lookup("param-file").Shorthand)
	assert.Equal(t, "u", cmd.Flags().Lookup("unload-on-kill").Shorthand)
}

func TestNewCommandRequiresControllerName(t *testing.T) {
	cmd := NewCommand()
	require.Error(t, cmd.Args(cmd, nil))
	require.NoError(t, cmd.Args(cmd, []string{"ctrl_a"}))
}

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

package list

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/spawnctl/internal/client"
)

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := writeTable(&buf, []client.ControllerInfo{
		{Name: "arm_controller", State: client.StateActive},
		{Name: "gripper_controller", State: client.StateInactive},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "STATE")
	assert.Contains(t, out, "arm_controller")
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "gripper_controller")
	assert.Contains(t, out, "inactive")
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, nil))
	assert.Contains(t, buf.String(), "No controllers are loaded")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, []client.ControllerInfo{
		{Name: "arm_controller", State: client.StateActive},
	})
	require.NoError(t, err)

	var decoded []client.ControllerInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "arm_controller", decoded[0].Name)
	assert.Equal(t, client.StateActive, decoded[0].State)
}

func TestWriteJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, nil))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestNewCommandRejectsArgs(t *testing.T) {
	cmd := NewCommand()
	require.Error(t, cmd.Args(cmd, []string{"unexpected"}))
}

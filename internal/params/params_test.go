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

package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate(t *testing.T) {
	valid := writeFile(t, "arm.yaml", "arm_controller:\n  ros__parameters:\n    joints: [shoulder, elbow]\n")
	malformed := writeFile(t, "broken.yaml", "arm_controller:\n\t\tjoints: [")

	tests := []struct {
		name    string
		files   []string
		wantErr error
	}{
		{
			name:  "no files",
			files: nil,
		},
		{
			name:  "valid yaml",
			files: []string{valid},
		},
		{
			name:    "missing file",
			files:   []string{filepath.Join(t.TempDir(), "absent.yaml")},
			wantErr: ErrNotFound,
		},
		{
			name:    "malformed yaml",
			files:   []string{malformed},
			wantErr: ErrInvalid,
		},
		{
			name:    "valid then missing fails",
			files:   []string{valid, filepath.Join(t.TempDir(), "absent.yaml")},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.files)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, Validate([]string{dir}), ErrNotFound)
}

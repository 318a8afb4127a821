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

// Package params validates controller parameter files before any lock or
// manager work begins. A missing or malformed file is a fatal input error:
// loading a controller whose expected configuration cannot be injected
// would leave it running with stale or absent parameters.
package params

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a referenced parameter file does not exist.
var ErrNotFound = errors.New("parameter file not found")

// ErrInvalid is returned when a parameter file is not valid YAML.
var ErrInvalid = errors.New("parameter file is not valid YAML")

// Validate checks that every referenced parameter file exists and parses
// as YAML. It fails on the first offending file.
func Validate(files []string) error {
	for _, file := range files {
		if err := validateFile(file); err != nil {
			return err
		}
	}
	return nil
}

func validateFile(file string) error {
	info, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, file)
		}
		return fmt.Errorf("failed to stat parameter file %s: %w", file, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotFound, file)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read parameter file %s: %w", file, err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, file, err)
	}
	return nil
}

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

package client

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SpawnctlHostEnv overrides the manager endpoint entirely. Supported
// forms: unix:///path/to/socket, tcp://host:port, https://host:port.
const SpawnctlHostEnv = "SPAWNCTL_HOST"

// DefaultManager is the conventional controller manager identity.
const DefaultManager = "controller-manager"

// envHost returns the SPAWNCTL_HOST override, if any.
func envHost() string {
	return os.Getenv(SpawnctlHostEnv)
}

// SocketPath returns the Unix socket path for the given manager identity.
func SocketPath(manager string) (string, error) {
	if manager == "" {
		manager = DefaultManager
	}

	// Use XDG_RUNTIME_DIR if available (Linux)
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, "spawnctl", manager+".sock"), nil
	}

	// Fall back to ~/.spawnctl/<manager>.sock
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".spawnctl", manager+".sock"), nil
}

// ParseHost parses a SPAWNCTL_HOST value into a transport.
// If host is empty, it returns a transport for the manager's socket path.
func ParseHost(host, manager string) (*Transport, error) {
	if host == "" {
		socketPath, err := SocketPath(manager)
		if err != nil {
			return nil, err
		}
		return NewUnixTransport(socketPath), nil
	}

	switch {
	case strings.HasPrefix(host, "unix://"):
		return NewUnixTransport(strings.TrimPrefix(host, "unix://")), nil

	case strings.HasPrefix(host, "tcp://"):
		return NewTCPTransport(strings.TrimPrefix(host, "tcp://")), nil

	case strings.HasPrefix(host, "https://"):
		addr := strings.TrimPrefix(host, "https://")
		return NewTLSTransport(addr, &tls.Config{MinVersion: tls.VersionTLS12}), nil

	default:
		return nil, fmt.Errorf("invalid %s format: %s (must start with unix://, tcp://, or https://)", SpawnctlHostEnv, host)
	}
}

// ManagerNotRunningError indicates the addressed manager is not reachable:
// its socket does not exist, or the connection was refused.
type ManagerNotRunningError struct {
	Manager  string
	Endpoint string
	Err      error
}

func (e *ManagerNotRunningError) Error() string {
	return fmt.Sprintf("controller manager %q is not reachable (endpoint: %s)", e.Manager, e.Endpoint)
}

func (e *ManagerNotRunningError) Unwrap() error {
	return e.Err
}

// IsManagerNotRunning checks if an error indicates the manager is unreachable.
func IsManagerNotRunning(err error) bool {
	if err == nil {
		return false
	}

	var mnr *ManagerNotRunningError
	if errors.As(err, &mnr) {
		return true
	}

	// Connection-level failures that predate any HTTP response.
	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such file or directory")
}

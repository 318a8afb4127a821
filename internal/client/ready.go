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
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrManagerNotReady is returned when the manager endpoint did not become
// reachable within the ready timeout.
var ErrManagerNotReady = errors.New("manager did not become ready")

// Ready-wait backoff: 50ms initial, doubling, capped at 1s.
const (
	readyInitialInterval = 50 * time.Millisecond
	readyMaxInterval     = 1 * time.Second
)

// WaitReady polls the manager's health endpoint with exponential backoff
// until it answers or the timeout elapses. A zero timeout checks once.
func (c *Client) WaitReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, max(timeout, time.Millisecond))
	defer cancel()

	interval := readyInitialInterval
	attempts := 0

	for {
		attempts++
		err := c.checkReady(ctx)
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w after %d attempts: %v", ErrManagerNotReady, attempts, err)
		case <-time.After(interval):
		}

		interval *= 2
		if interval > readyMaxInterval {
			interval = readyMaxInterval
		}
	}
}

// awaitReady enforces the session's ready timeout before an operation is
// issued. With no ready timeout configured, calls go out immediately and
// fail fast if the manager is unreachable.
func (c *Client) awaitReady(ctx context.Context) error {
	if c.cfg.ReadyTimeout <= 0 {
		return nil
	}
	return c.WaitReady(ctx, c.cfg.ReadyTimeout)
}

// checkReady performs a single health probe.
func (c *Client) checkReady(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health endpoint returned %d", resp.StatusCode)
	}
	return nil
}

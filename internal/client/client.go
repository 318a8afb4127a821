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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Default timeouts, overridable through Config.
const (
	DefaultCallTimeout   = 10 * time.Second
	DefaultSwitchTimeout = 5 * time.Second
)

// Strictness controls how the manager applies a multi-controller switch.
type Strictness string

const (
	// Strict fails the whole switch if any named controller cannot transition.
	Strict Strictness = "strict"
	// BestEffort applies the switch to whichever controllers can transition.
	BestEffort Strictness = "best_effort"
)

// Config is the per-session client configuration. It is built once from
// CLI flags and read-only afterwards.
type Config struct {
	// Manager is the controller manager identity. It selects the Unix
	// socket the manager listens on unless SPAWNCTL_HOST overrides it.
	Manager string

	// ReadyTimeout is how long each call waits for the manager endpoint
	// to become reachable. Zero means calls are issued immediately.
	ReadyTimeout time.Duration

	// CallTimeout bounds each call's wait for a response.
	CallTimeout time.Duration

	// SwitchTimeout bounds SwitchControllers only; the manager may defer
	// the transition, so this is independent of CallTimeout.
	SwitchTimeout time.Duration
}

// Client is a client for the controller manager API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        Config
}

// New creates a manager client for the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Manager == "" {
		cfg.Manager = DefaultManager
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.SwitchTimeout <= 0 {
		cfg.SwitchTimeout = DefaultSwitchTimeout
	}

	c := &Client{
		baseURL: "http://localhost", // placeholder host for Unix socket transports
		cfg:     cfg,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.httpClient == nil {
		transport, err := ParseHost(envHost(), cfg.Manager)
		if err != nil {
			return nil, fmt.Errorf("failed to create transport: %w", err)
		}
		c.httpClient = &http.Client{Transport: transport}
	}

	return c, nil
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = client
		return nil
	}
}

// WithTransport sets a custom transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) error {
		c.httpClient = &http.Client{Transport: transport}
		return nil
	}
}

// WithBaseURL overrides the base URL. Used by tests that talk to an
// httptest server instead of a manager socket.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		c.baseURL = baseURL
		return nil
	}
}

// Manager returns the configured manager identity.
func (c *Client) Manager() string {
	return c.cfg.Manager
}

// ControllerState is the manager-owned lifecycle state of a controller.
// The client only observes these; the manager is the source of truth.
type ControllerState string

const (
	StateUnloaded ControllerState = "unloaded"
	StateLoaded   ControllerState = "loaded"
	StateInactive ControllerState = "inactive"
	StateActive   ControllerState = "active"
)

// ControllerInfo describes one controller hosted by the manager.
type ControllerInfo struct {
	Name  string          `json:"name"`
	State ControllerState `json:"state"`
}

// SwitchRequest names the controllers to activate and deactivate in a
// single atomic call.
type SwitchRequest struct {
	Activate   []string   `json:"activate,omitempty"`
	Deactivate []string   `json:"deactivate,omitempty"`
	Strictness Strictness `json:"strictness"`
	// Wait asks the manager to hold the response until the transition
	// actually completed rather than merely being scheduled.
	Wait bool `json:"wait"`
}

// OperationError is returned when the manager answered a call with ok=false.
type OperationError struct {
	Op         string
	Controller string
	Message    string
}

func (e *OperationError) Error() string {
	target := e.Controller
	if target == "" {
		target = "controllers"
	}
	if e.Message == "" {
		return fmt.Sprintf("%s failed for %s", e.Op, target)
	}
	return fmt.Sprintf("%s failed for %s: %s", e.Op, target, e.Message)
}

// outcome is the wire shape every mutating manager call responds with.
type outcome struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// HealthResponse is the response from /v1/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime,omitempty"`
}

// VersionResponse is the response from /v1/version.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// Health returns the manager health status.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	var health HealthResponse
	if err := c.getJSON(ctx, "/v1/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Version returns the manager version information.
func (c *Client) Version(ctx context.Context) (*VersionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	var version VersionResponse
	if err := c.getJSON(ctx, "/v1/version", &version); err != nil {
		return nil, err
	}
	return &version, nil
}

// Ping checks if the manager is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}

// ListControllers returns every controller the manager hosts, with its
// current lifecycle state.
func (c *Client) ListControllers(ctx context.Context) ([]ControllerInfo, error) {
	if err := c.awaitReady(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	var listing struct {
		Controllers []ControllerInfo `json:"controllers"`
	}
	if err := c.getJSON(ctx, "/v1/controllers", &listing); err != nil {
		return nil, fmt.Errorf("failed to list controllers: %w", err)
	}
	return listing.Controllers, nil
}

// LoadController asks the manager to load the named controller.
func (c *Client) LoadController(ctx context.Context, name string) error {
	return c.controllerOp(ctx, "load", name, nil)
}

// ConfigureController asks the manager to configure the named controller.
func (c *Client) ConfigureController(ctx context.Context, name string) error {
	return c.controllerOp(ctx, "configure", name, nil)
}

// UnloadController asks the manager to unload the named controller.
func (c *Client) UnloadController(ctx context.Context, name string) error {
	return c.controllerOp(ctx, "unload", name, nil)
}

// SetControllerParameters sets a single parameter key on the controller's
// node before it is loaded.
func (c *Client) SetControllerParameters(ctx context.Context, name, key string, values []string) error {
	body := map[string]any{"key": key, "values": values}
	return c.controllerOp(ctx, "parameters", name, body)
}

// SetControllerParametersFromFiles pushes file-derived parameters scoped
// to the controller's namespace before it is loaded.
func (c *Client) SetControllerParametersFromFiles(ctx context.Context, name string, files []string, namespace string) error {
	body := map[string]any{"files": files, "namespace": namespace}
	return c.controllerOp(ctx, "parameter-files", name, body)
}

// SwitchControllers activates and deactivates controllers in one atomic
// call. It blocks up to the switch timeout, which is longer than the
// per-call timeout because the manager may defer the transition.
func (c *Client) SwitchControllers(ctx context.Context, req SwitchRequest) error {
	if err := c.awaitReady(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.SwitchTimeout)
	defer cancel()

	out, err := c.postOutcome(ctx, "/v1/switch", req)
	if err != nil {
		return fmt.Errorf("switch failed: %w", err)
	}
	if !out.OK {
		return &OperationError{Op: "switch", Message: out.Message}
	}
	return nil
}

// controllerOp issues one POST /v1/controllers/{name}/{op} call and maps
// an ok=false outcome to an OperationError.
func (c *Client) controllerOp(ctx context.Context, op, name string, body any) error {
	if err := c.awaitReady(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	path := "/v1/controllers/" + url.PathEscape(name) + "/" + op
	out, err := c.postOutcome(ctx, path, body)
	if err != nil {
		return fmt.Errorf("%s failed for %s: %w", op, name, err)
	}
	if !out.OK {
		return &OperationError{Op: op, Controller: name, Message: out.Message}
	}
	return nil
}

// getJSON performs a GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// postOutcome performs a POST request with a JSON body and decodes the
// manager's outcome shape.
func (c *Client) postOutcome(ctx context.Context, path string, body any) (*outcome, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	resp, err := c.do(ctx, http.MethodPost, path, bodyReader)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out outcome
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode outcome: %w", err)
	}
	return &out, nil
}

// do performs one HTTP request against the manager API.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if IsManagerNotRunning(err) {
			return nil, &ManagerNotRunningError{Manager: c.cfg.Manager, Endpoint: c.endpoint(), Err: err}
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("manager returned error %d: %s", resp.StatusCode, string(respBody))
	}

	return resp, nil
}

// endpoint describes where this client is pointed, for error messages.
func (c *Client) endpoint() string {
	if t, ok := c.httpClient.Transport.(*Transport); ok {
		if t.SocketPath != "" {
			return "unix://" + t.SocketPath
		}
		if t.TCPAddr != "" {
			return "tcp://" + t.TCPAddr
		}
	}
	return c.baseURL
}

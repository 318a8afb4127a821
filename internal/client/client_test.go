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
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestClient points a client at an httptest server.
func newTestClient(t *testing.T, handler http.Handler, cfg Config) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(cfg, WithHTTPClient(server.Client()), WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

func okOutcome(w http.ResponseWriter) {
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "message": ""})
}

func TestListControllers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/controllers" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("Unexpected method: %s", r.Method)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"controllers": []map[string]string{
				{"name": "arm_controller", "state": "active"},
				{"name": "gripper_controller", "state": "inactive"},
			},
		})
	})

	c := newTestClient(t, handler, Config{})

	controllers, err := c.ListControllers(context.Background())
	if err != nil {
		t.Fatalf("ListControllers failed: %v", err)
	}

	if len(controllers) != 2 {
		t.Fatalf("Expected 2 controllers, got %d", len(controllers))
	}
	if controllers[0].Name != "arm_controller" || controllers[0].State != StateActive {
		t.Errorf("Unexpected first controller: %+v", controllers[0])
	}
}

func TestLoadController(t *testing.T) {
	var gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		okOutcome(w)
	})

	c := newTestClient(t, handler, Config{})

	if err := c.LoadController(context.Background(), "arm_controller"); err != nil {
		t.Fatalf("LoadController failed: %v", err)
	}
	if gotPath != "/v1/controllers/arm_controller/load" {
		t.Errorf("Unexpected path: %s", gotPath)
	}
}

func TestOperationFailureCarriesMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "message": "no such controller type"})
	})

	c := newTestClient(t, handler, Config{})

	err := c.ConfigureController(context.Background(), "arm_controller")
	if err == nil {
		t.Fatal("Expected error for ok=false outcome")
	}

	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("Expected *OperationError, got %T: %v", err, err)
	}
	if opErr.Op != "configure" || opErr.Controller != "arm_controller" {
		t.Errorf("Unexpected OperationError fields: %+v", opErr)
	}
	if !strings.Contains(opErr.Message, "no such controller type") {
		t.Errorf("Message not surfaced: %q", opErr.Message)
	}
}

func TestSwitchControllersBody(t *testing.T) {
	var got SwitchRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/switch" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode body: %v", err)
		}
		okOutcome(w)
	})

	c := newTestClient(t, handler, Config{})

	req := SwitchRequest{
		Activate:   []string{"arm_controller", "gripper_controller"},
		Strictness: Strict,
		Wait:       true,
	}
	if err := c.SwitchControllers(context.Background(), req); err != nil {
		t.Fatalf("SwitchControllers failed: %v", err)
	}

	if len(got.Activate) != 2 || got.Strictness != Strict || !got.Wait {
		t.Errorf("Unexpected request body: %+v", got)
	}
}

func TestSwitchTimeoutApplies(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		okOutcome(w)
	})

	c := newTestClient(t, handler, Config{SwitchTimeout: 50 * time.Millisecond})

	err := c.SwitchControllers(context.Background(), SwitchRequest{Activate: []string{"a"}})
	if err == nil {
		t.Fatal("Expected timeout error")
	}
}

func TestSetControllerParameters(t *testing.T) {
	var body map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/controllers/arm_controller/parameters" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		okOutcome(w)
	})

	c := newTestClient(t, handler, Config{})

	err := c.SetControllerParameters(context.Background(), "arm_controller", "node_options_args", []string{"--remap", "a:=b"})
	if err != nil {
		t.Fatalf("SetControllerParameters failed: %v", err)
	}
	if body["key"] != "node_options_args" {
		t.Errorf("Unexpected key: %v", body["key"])
	}
}

func TestSetControllerParametersFromFiles(t *testing.T) {
	var body map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/controllers/arm_controller/parameter-files" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		okOutcome(w)
	})

	c := newTestClient(t, handler, Config{})

	err := c.SetControllerParametersFromFiles(context.Background(), "arm_controller", []string{"params.yaml"}, "/robot")
	if err != nil {
		t.Fatalf("SetControllerParametersFromFiles failed: %v", err)
	}
	if body["namespace"] != "/robot" {
		t.Errorf("Unexpected namespace: %v", body["namespace"])
	}
}

func TestManagerNotRunning(t *testing.T) {
	// Point the client at a socket that does not exist.
	c, err := New(Config{Manager: "nope"}, WithTransport(NewUnixTransport("/nonexistent/spawnctl/nope.sock")))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	err = c.LoadController(context.Background(), "arm_controller")
	if err == nil {
		t.Fatal("Expected error for unreachable manager")
	}

	var mnr *ManagerNotRunningError
	if !errors.As(err, &mnr) {
		t.Fatalf("Expected *ManagerNotRunningError, got %T: %v", err, err)
	}
	if mnr.Manager != "nope" {
		t.Errorf("Unexpected manager identity: %s", mnr.Manager)
	}
	if !IsManagerNotRunning(err) {
		t.Error("IsManagerNotRunning should report true")
	}
}

func TestHTTPErrorStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such manager", http.StatusNotFound)
	})

	c := newTestClient(t, handler, Config{})

	err := c.LoadController(context.Background(), "arm_controller")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("Expected 404 error, got: %v", err)
	}
}

func TestHealth(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/health" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"status": "healthy", "uptime": "1h0m0s"})
	})

	c := newTestClient(t, handler, Config{})

	health, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %s", health.Status)
	}
}

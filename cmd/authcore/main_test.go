package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-authcore/internal/api"
)

const testSigningKey = "main-test-signing-key-0123456789abcdef"

// writeConfig writes a minimal config with MQTT and InfluxDB disabled.
func writeConfig(t *testing.T, dbPath string, port int, extra string) string {
	t.Helper()

	content := fmt.Sprintf(`
database:
  path: %q
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stderr

api:
  host: "127.0.0.1"
  port: %d

security:
  jwt:
    signing_key: %q
  password:
    bcrypt_cost: 4

bootstrap:
  enabled: true
  admin_username: admin
  admin_password: "bootstrap-pass"
%s`, dbPath, port, testSigningKey, extra)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// freePort asks the kernel for an unused TCP port.
func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("finding free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("AUTHCORE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error = %v, want loading config failure", err)
	}
}

func TestRun_ShortSigningKey(t *testing.T) {
	path := writeConfig(t, filepath.Join(t.TempDir(), "authcore.db"), 8080, "")
	t.Setenv("AUTHCORE_CONFIG", path)
	t.Setenv("AUTHCORE_JWT_SIGNING_KEY", "too-short")

	err := run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "signing_key") {
		t.Fatalf("run() error = %v, want signing_key validation failure", err)
	}
}

func TestRun_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	path := writeConfig(t, filepath.Join(t.TempDir(), "authcore.db"), port, "")
	t.Setenv("AUTHCORE_CONFIG", path)

	err = run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "starting API server") {
		t.Fatalf("run() error = %v, want bind failure", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv("AUTHCORE_CONFIG", "")
		if got := getConfigPath(); got != defaultConfigPath {
			t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
		}
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("AUTHCORE_CONFIG", "/custom/path/config.yaml")
		if got := getConfigPath(); got != "/custom/path/config.yaml" {
			t.Errorf("getConfigPath() = %q", got)
		}
	})
}

type stubCheck struct{ err error }

func (s stubCheck) HealthCheck(context.Context) error { return s.err }

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	if err := healthCheck(ctx, nil); err != nil {
		t.Errorf("healthCheck(nil) = %v", err)
	}

	checks := map[string]api.HealthChecker{
		"database": stubCheck{},
		"mqtt":     stubCheck{err: errors.New("not connected")},
	}
	err := healthCheck(ctx, checks)
	if err == nil || !strings.HasPrefix(err.Error(), "mqtt:") {
		t.Errorf("healthCheck() = %v, want mqtt failure", err)
	}
}

// TestRun_StartupAndShutdown boots the full service, signs in as the
// bootstrap administrator and shuts down cleanly.
func TestRun_StartupAndShutdown(t *testing.T) {
	port := freePort(t)
	dbPath := filepath.Join(t.TempDir(), "authcore.db")
	t.Setenv("AUTHCORE_CONFIG", writeConfig(t, dbPath, port, ""))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	base := fmt.Sprintf("http://127.0.0.1:%d/api/v1", port)
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(10 * time.Second)
	for {
		resp, err := client.Get(base + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("service did not become healthy: %v", err)
		}
		select {
		case err := <-done:
			t.Fatalf("run() exited early: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
	}

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "bootstrap-pass"})
	resp, err := client.Post(base+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		cancel()
		t.Fatalf("login request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("bootstrap admin login status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v, want nil on shutdown", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancel")
	}
}

package config

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func setCriticalEnv(t *testing.T) {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("DATABASE_URL", "postgres://localhost/storehub_test")
	t.Cleanup(func() {
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("DATABASE_URL")
	})
}

// captureLog redirects the stdlib logger for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestLoadEnv(t *testing.T) {
	// LoadEnv returns nil when no .env file exists
	if err := LoadEnv(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidateEnvAllSet(t *testing.T) {
	setCriticalEnv(t)

	if err := ValidateEnv(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidateEnvMissingJWTSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")
	os.Setenv("DATABASE_URL", "postgres://localhost/storehub_test")
	defer os.Unsetenv("DATABASE_URL")

	err := ValidateEnv()
	if err == nil {
		t.Fatal("expected error for missing JWT_SECRET")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("expected JWT_SECRET named in error, got: %v", err)
	}
}

func TestValidateEnvMissingDatabaseURL(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Unsetenv("DATABASE_URL")
	defer os.Unsetenv("JWT_SECRET")

	err := ValidateEnv()
	if err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("expected DATABASE_URL named in error, got: %v", err)
	}
}

func TestValidateEnvMissingBoth(t *testing.T) {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("DATABASE_URL")

	if err := ValidateEnv(); err == nil {
		t.Error("expected error for missing both")
	}
}

func TestValidateEnvWarnsOnMissingOrigins(t *testing.T) {
	setCriticalEnv(t)
	os.Unsetenv("FRONTEND_URL")
	os.Unsetenv("DASHBOARD_URL")
	buf := captureLog(t)

	// Missing CORS origins are warnings, not errors
	if err := ValidateEnv(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "FRONTEND_URL") {
		t.Errorf("expected FRONTEND_URL warning, got: %s", out)
	}
	if !strings.Contains(out, "DASHBOARD_URL") {
		t.Errorf("expected DASHBOARD_URL warning, got: %s", out)
	}
}

func TestValidateEnvQuietWhenOriginsSet(t *testing.T) {
	setCriticalEnv(t)
	os.Setenv("FRONTEND_URL", "http://localhost:3000")
	os.Setenv("DASHBOARD_URL", "http://localhost:3001")
	defer os.Unsetenv("FRONTEND_URL")
	defer os.Unsetenv("DASHBOARD_URL")
	buf := captureLog(t)

	if err := ValidateEnv(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if out := buf.String(); out != "" {
		t.Errorf("expected no warnings, got: %s", out)
	}
}

func TestGetEnvExisting(t *testing.T) {
	os.Setenv("TEST_GET_ENV_KEY", "test-value")
	defer os.Unsetenv("TEST_GET_ENV_KEY")

	if got := GetEnv("TEST_GET_ENV_KEY", "default"); got != "test-value" {
		t.Errorf("expected 'test-value', got '%s'", got)
	}
}

func TestGetEnvMissing(t *testing.T) {
	os.Unsetenv("TEST_GET_ENV_MISSING")
	if got := GetEnv("TEST_GET_ENV_MISSING", "fallback"); got != "fallback" {
		t.Errorf("expected 'fallback', got '%s'", got)
	}
}

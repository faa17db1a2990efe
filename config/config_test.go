package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  cors_origins:
    - http://localhost:3000
database:
  path: /var/lib/attendance/data.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("cors_origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Database.Path != "/var/lib/attendance/data.db" {
		t.Errorf("database path = %s", cfg.Database.Path)
	}
}

func TestLoad_EnvPlaceholders(t *testing.T) {
	t.Setenv("ATTENDANCE_DB_PATH", "/tmp/envtest.db")

	path := writeConfig(t, `
database:
  path: ${ATTENDANCE_DB_PATH}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path != "/tmp/envtest.db" {
		t.Errorf("database path = %s, want /tmp/envtest.db", cfg.Database.Path)
	}
}

func TestLoad_PayrollOffDays(t *testing.T) {
	path := writeConfig(t, `
payroll:
  off_days: [0, 6]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Payroll.OffDays) != 2 || cfg.Payroll.OffDays[0] != 0 || cfg.Payroll.OffDays[1] != 6 {
		t.Errorf("off_days = %v, want [0 6]", cfg.Payroll.OffDays)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: custom.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want the 8080 default", cfg.Server.Port)
	}
	if cfg.Database.Path != "custom.db" {
		t.Errorf("database path = %s, want custom.db", cfg.Database.Path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "attendance.db" {
		t.Errorf("default db path = %s, want attendance.db", cfg.Database.Path)
	}
}

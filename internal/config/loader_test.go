package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearRosterEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ROSTER_CONFIG_PATH",
		"ROSTER_HTTP_PORT",
		"ROSTER_SQLITE_DSN",
		"ROSTER_TIMEZONE",
		"ROSTER_HORIZON_DAYS",
		"ROSTER_MATERIALIZE_SPEC",
		"ROSTER_URGENCY_REFRESH_SPEC",
		"ROSTER_LOG_LEVEL",
		"ROSTER_LOG_CONSOLE",
	} {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_Configuration(t *testing.T) {

	t.Run("applies defaults when nothing is configured", func(t *testing.T) {
		clearRosterEnv(t)
		t.Setenv("ROSTER_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:opsroster.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.Timezone != "UTC" {
			t.Fatalf("expected default timezone UTC, got %q", cfg.Timezone)
		}
		if cfg.HorizonDays != 14 {
			t.Fatalf("expected default horizon of 14 days, got %d", cfg.HorizonDays)
		}
		if cfg.MaterializeSpec != "0 2 * * *" {
			t.Fatalf("unexpected materialize spec: %q", cfg.MaterializeSpec)
		}
		if cfg.UrgencyRefreshSpec != "*/15 * * * *" {
			t.Fatalf("unexpected urgency refresh spec: %q", cfg.UrgencyRefreshSpec)
		}
		if cfg.LogLevel != "info" {
			t.Fatalf("expected default log level info, got %q", cfg.LogLevel)
		}
	})

	t.Run("reads the YAML file and lets environment win", func(t *testing.T) {
		clearRosterEnv(t)
		path := filepath.Join(t.TempDir(), "opsroster.yaml")
		content := `
http_port: 9000
sqlite_dsn: "file:/tmp/yaml.db"
timezone: "Europe/Berlin"
horizon_days: 7
log_level: "debug"
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		t.Setenv("ROSTER_CONFIG_PATH", path)
		t.Setenv("ROSTER_HTTP_PORT", "9090")
		t.Setenv("ROSTER_HORIZON_DAYS", "21")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected environment port 9090 to win, got %d", cfg.HTTPPort)
		}
		if cfg.HorizonDays != 21 {
			t.Fatalf("expected environment horizon 21 to win, got %d", cfg.HorizonDays)
		}
		if cfg.SQLiteDSN != "file:/tmp/yaml.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.Timezone != "Europe/Berlin" {
			t.Fatalf("unexpected timezone: %q", cfg.Timezone)
		}
		if cfg.LogLevel != "debug" {
			t.Fatalf("unexpected log level: %q", cfg.LogLevel)
		}
	})

	t.Run("rejects malformed numeric overrides", func(t *testing.T) {
		clearRosterEnv(t)
		t.Setenv("ROSTER_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
		t.Setenv("ROSTER_HTTP_PORT", "not-a-port")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for malformed port")
		}
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		clearRosterEnv(t)
		t.Setenv("ROSTER_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
		t.Setenv("ROSTER_TIMEZONE", "Mars/Olympus_Mons")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown timezone")
		}
	})
}

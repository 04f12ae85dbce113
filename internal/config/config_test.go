package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromPath_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, t.TempDir())

	cfg, err := LoadFromPath("")
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	wantBackup := filepath.Join(home, "Downloads", "db_cluster-27-05-2025@11-25-49.backup")
	if cfg.Restore.BackupFile != wantBackup {
		t.Errorf("BackupFile = %q; want %q", cfg.Restore.BackupFile, wantBackup)
	}
	if cfg.Restore.Client != "psql" {
		t.Errorf("Client = %q; want %q", cfg.Restore.Client, "psql")
	}
	if cfg.Restore.ToolDir != "/opt/homebrew/opt/libpq/bin" {
		t.Errorf("ToolDir = %q; want %q", cfg.Restore.ToolDir, "/opt/homebrew/opt/libpq/bin")
	}
	if cfg.Restore.SSLMode != "require" {
		t.Errorf("SSLMode = %q; want %q", cfg.Restore.SSLMode, "require")
	}
	if cfg.Restore.Compression != "auto" {
		t.Errorf("Compression = %q; want %q", cfg.Restore.Compression, "auto")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q; want %q", cfg.Log.Level, "info")
	}
}

func TestLoadFromPath_File(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `restore:
  backup_file: /backups/latest.sql.gz
  client: /usr/local/bin/psql
  sslmode: verify-full
  compression: gzip
log:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Restore.BackupFile != "/backups/latest.sql.gz" {
		t.Errorf("BackupFile = %q; want %q", cfg.Restore.BackupFile, "/backups/latest.sql.gz")
	}
	if cfg.Restore.Client != "/usr/local/bin/psql" {
		t.Errorf("Client = %q; want %q", cfg.Restore.Client, "/usr/local/bin/psql")
	}
	if cfg.Restore.SSLMode != "verify-full" {
		t.Errorf("SSLMode = %q; want %q", cfg.Restore.SSLMode, "verify-full")
	}
	if cfg.Restore.Compression != "gzip" {
		t.Errorf("Compression = %q; want %q", cfg.Restore.Compression, "gzip")
	}
	if cfg.Restore.ToolDir != "/opt/homebrew/opt/libpq/bin" {
		t.Errorf("ToolDir = %q; want default", cfg.Restore.ToolDir)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q; want %q", cfg.Log.Level, "debug")
	}
}

func TestLoadFromPath_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PGRESTORE_RESTORE_SSLMODE", "prefer")
	t.Setenv("PGRESTORE_RESTORE_CLIENT", "psql16")

	cfg, err := LoadFromPath("")
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Restore.SSLMode != "prefer" {
		t.Errorf("SSLMode = %q; want %q", cfg.Restore.SSLMode, "prefer")
	}
	if cfg.Restore.Client != "psql16" {
		t.Errorf("Client = %q; want %q", cfg.Restore.Client, "psql16")
	}
}

func TestLoadFromPath_MissingExplicitFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFromPath() succeeded for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Restore: RestoreConfig{Client: "psql", SSLMode: "require", Compression: "auto"},
			Log:     LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty client", func(c *Config) { c.Restore.Client = "" }, "restore.client"},
		{"bad sslmode", func(c *Config) { c.Restore.SSLMode = "always" }, "restore.sslmode"},
		{"bad compression", func(c *Config) { c.Restore.Compression = "rar" }, "restore.compression"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v; want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v; want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := map[string]string{
		"":               "",
		"~":              home,
		"~/Downloads/db": filepath.Join(home, "Downloads", "db"),
		"/abs/path":      "/abs/path",
		"rel/path":       "rel/path",
		"~user/x":        "~user/x",
	}
	for in, want := range tests {
		if got := ExpandPath(in); got != want {
			t.Errorf("ExpandPath(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestLoadFromPath_InvalidFileValuesLeftForCaller(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "restore:\n  sslmode: always\n  compression: rar\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted sslmode=always")
	}

	cfg.Restore.SSLMode = "require"
	cfg.Restore.Compression = "gzip"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after override error = %v", err)
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/willibrandon/pgrestore/internal/restore"
)

// DefaultBackupFile is restored when no backup path is given.
const DefaultBackupFile = "~/Downloads/db_cluster-27-05-2025@11-25-49.backup"

// Config represents the root configuration structure
type Config struct {
	Restore RestoreConfig `mapstructure:"restore"`
	Log     LogConfig     `mapstructure:"log"`
}

// RestoreConfig holds the restore client settings.
type RestoreConfig struct {
	BackupFile      string `mapstructure:"backup_file"`
	Client          string `mapstructure:"client"`
	ToolDir         string `mapstructure:"tool_dir"`
	SSLMode         string `mapstructure:"sslmode"`
	Compression     string `mapstructure:"compression"`
	PasswordCommand string `mapstructure:"password_command"`
	PromptPassword  bool   `mapstructure:"prompt_password"`
	Check           bool   `mapstructure:"check"`
}

// LogConfig holds log file settings.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from the default locations.
func Load() (*Config, error) {
	return LoadFromPath("")
}

// LoadFromPath loads configuration from a specific path.
// If configPath is empty, it searches default locations and falls back to
// defaults when no config file exists. The result is not validated.
func LoadFromPath(configPath string) (*Config, error) {
	v := viper.New()

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("PGRESTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	applyDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "pgrestore"))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Restore.BackupFile = ExpandPath(cfg.Restore.BackupFile)
	cfg.Restore.ToolDir = ExpandPath(cfg.Restore.ToolDir)
	cfg.Log.File = ExpandPath(cfg.Log.File)

	// Callers validate after applying command-line overrides.
	return &cfg, nil
}

// applyDefaults sets default configuration values
func applyDefaults(v *viper.Viper) {
	v.SetDefault("restore.backup_file", DefaultBackupFile)
	v.SetDefault("restore.client", restore.DefaultClient)
	v.SetDefault("restore.tool_dir", restore.DefaultToolDir)
	v.SetDefault("restore.sslmode", restore.DefaultSSLMode)
	v.SetDefault("restore.compression", string(restore.CompressionAuto))
	v.SetDefault("restore.password_command", "")
	v.SetDefault("restore.prompt_password", false)
	v.SetDefault("restore.check", false)

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Restore.Client == "" {
		return fmt.Errorf("restore.client cannot be empty")
	}

	validSSLModes := []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}
	validMode := false
	for _, mode := range validSSLModes {
		if c.Restore.SSLMode == mode {
			validMode = true
			break
		}
	}
	if !validMode {
		return fmt.Errorf("restore.sslmode must be one of: %v, got %s", validSSLModes, c.Restore.SSLMode)
	}

	if _, err := restore.ParseCompression(c.Restore.Compression); err != nil {
		return fmt.Errorf("restore.compression: %w", err)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level)
	}

	return nil
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// FileName is the per-project configuration file, looked up in the
// project root.
const FileName = ".preflight.json"

// Config root configuration
type Config struct {
	Policy    string          `mapstructure:"policy" json:"policy,omitempty"`
	Log       LogConfig       `mapstructure:"log" json:"log"`
	Checks    ChecksConfig    `mapstructure:"checks" json:"checks"`
	Approvals ApprovalsConfig `mapstructure:"approvals" json:"approvals"`
	Audit     AuditConfig     `mapstructure:"audit" json:"audit"`
}

// LogConfig application logging settings
type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
	File  string `mapstructure:"file" json:"file,omitempty"`
}

// ChecksConfig enables or disables individual validation engines.
type ChecksConfig struct {
	FileExistence    bool `mapstructure:"file_existence" json:"file_existence"`
	ImportValidity   bool `mapstructure:"import_validity" json:"import_validity"`
	SyntaxValidity   bool `mapstructure:"syntax_validity" json:"syntax_validity"`
	PolicyCompliance bool `mapstructure:"policy_compliance" json:"policy_compliance"`
}

// ApprovalsConfig approval ledger settings
type ApprovalsConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes" json:"ttl_minutes"`
}

// AuditConfig audit trail settings
type AuditConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// DefaultConfig returns config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
			File:  "",
		},
		Checks: ChecksConfig{
			FileExistence:    true,
			ImportValidity:   true,
			SyntaxValidity:   true,
			PolicyCompliance: true,
		},
		Approvals: ApprovalsConfig{
			TTLMinutes: 1440,
		},
		Audit: AuditConfig{
			Enabled: true,
		},
	}
}

// Path returns the config file path for a project root
func Path(root string) string {
	return filepath.Join(root, FileName)
}

// StateDir returns the directory holding approvals and the audit trail.
func StateDir(root string) string {
	return filepath.Join(root, ".preflight")
}

// Load loads config from <root>/.preflight.json or returns defaults when
// the file is absent. Environment variables prefixed PREFLIGHT_ override
// file values.
func Load(root string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := Path(root)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix("PREFLIGHT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return cfg, err
	}

	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.MatchName = func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		}
	}); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func normalizeKey(input string) string {
	input = strings.ReplaceAll(input, "_", "")
	input = strings.ReplaceAll(input, "-", "")
	return strings.ToLower(input)
}

// Save saves config to <root>/.preflight.json
func Save(cfg *Config, root string) error {
	configPath := Path(root)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return os.WriteFile(configPath, data, 0600)
}

// Validate checks that the configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	if level == "" {
		c.Log.Level = "info"
	} else {
		validLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLevels[level] {
			return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
		}
		c.Log.Level = level
	}

	if c.Approvals.TTLMinutes < 0 {
		return fmt.Errorf("approvals.ttl_minutes must not be negative, got %d", c.Approvals.TTLMinutes)
	}
	if c.Approvals.TTLMinutes == 0 {
		c.Approvals.TTLMinutes = 1440
	}

	return nil
}

// policyCandidates are tried in order when no policy path is configured.
var policyCandidates = []string{
	"preflight.policy.json",
	"preflight.policy.yaml",
	"preflight.policy.yml",
	"architecture.json",
}

// PolicyPath resolves the policy document path for a project root. An
// explicitly configured path wins; otherwise the conventional names are
// probed. Returns "" when no policy is present.
func (c *Config) PolicyPath(root string) string {
	if p := strings.TrimSpace(c.Policy); p != "" {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}
	for _, name := range policyCandidates {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

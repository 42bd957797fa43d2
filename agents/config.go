package agents

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configDirName = "pagemend_cfg"

// ConfigDir returns the workspace-local configuration directory.
func ConfigDir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, configDirName)
}

// DefaultConfigPath returns pagemend_cfg/config.yaml within the workspace.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(ConfigDir(workspace), "config.yaml")
}

// GlobalConfig matches pagemend_cfg/config.yaml inside the workspace.
type GlobalConfig struct {
	Version string        `yaml:"version"`
	Model   ModelRef      `yaml:"model"`
	Logging LoggingConfig `yaml:"logging"`
	Audit   AuditConfig   `yaml:"audit"`
	Runs    RunsConfig    `yaml:"runs"`
}

// ModelRef names the language model backing the planners.
type ModelRef struct {
	Name        string  `yaml:"name"`
	Provider    string  `yaml:"provider"`
	Endpoint    string  `yaml:"endpoint"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// LoggingConfig describes log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	LLM   bool   `yaml:"llm_debug"`
}

// AuditConfig selects the audit-log backend.
type AuditConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Limit   int    `yaml:"limit"`
}

// RunsConfig controls where completed runs are stored for later review.
type RunsConfig struct {
	Dir string `yaml:"dir"`
}

// LoadGlobalConfig loads the config or returns defaults when missing.
func LoadGlobalConfig(path, workspace string) (*GlobalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(workspace), nil
		}
		return nil, err
	}
	cfg := defaultConfig(workspace)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveGlobalConfig writes the config to disk.
func SaveGlobalConfig(path string, cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("config missing")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig(workspace string) *GlobalConfig {
	return &GlobalConfig{
		Version: "1.0.0",
		Model: ModelRef{
			Name:        "codellama",
			Provider:    "ollama",
			Endpoint:    "http://localhost:11434",
			Temperature: 0.1,
			MaxTokens:   512,
		},
		Audit: AuditConfig{
			Backend: "sqlite",
			Path:    filepath.Join(ConfigDir(workspace), "audit.db"),
			Limit:   2048,
		},
		Runs: RunsConfig{
			Dir: filepath.Join(ConfigDir(workspace), "runs"),
		},
	}
}

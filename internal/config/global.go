// Package config handles the global configuration file and the workspace layout derived from it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/cite/config.yml.
// Empty fields fall back to the defaults in Resolve.
type GlobalConfig struct {
	BaseDir       string `yaml:"base_dir,omitempty"`
	SourceFile    string `yaml:"source_file,omitempty"`
	OutputDir     string `yaml:"output_dir,omitempty"`
	ErrorLog      string `yaml:"error_log,omitempty"`
	ProgressFile  string `yaml:"progress_file,omitempty"`
	IndexFile     string `yaml:"index_file,omitempty"`
	PromptPath    string `yaml:"prompt_path,omitempty"`
	GazetteerPath string `yaml:"gazetteer_path,omitempty"`

	Model             string  `yaml:"model,omitempty"`
	APIKey            string  `yaml:"api_key,omitempty"`
	BaseURL           string  `yaml:"base_url,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
	MaxRetries        int     `yaml:"max_retries,omitempty"`

	Workers       int  `yaml:"workers,omitempty"`
	TitleFallback bool `yaml:"title_fallback,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "cite"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/cite/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ExpandTilde expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~/ or isn't exactly ~.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}

// HelpfulConfigMessage explains where the config file lives and what it may set.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`Tip: Create %s to set defaults:
  mkdir -p %s
  cat > %s <<'YAML'
  base_dir: ~/bibliography
  source_file: liste-tout.txt
  workers: 4
  YAML

The API key is read from ANTHROPIC_API_KEY (a .env file in the working directory is loaded too).`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Default workspace file names, relative to the base directory.
const (
	DefaultSourceFile   = "liste-tout.txt"
	DefaultOutputDir    = "json"
	DefaultErrorLog     = "errors.log"
	DefaultProgressFile = "processing_progress.json"
	DefaultIndexFile    = "references.db"

	DefaultRequestsPerSecond = 1.0
	DefaultMaxRetries        = 3
	DefaultWorkers           = 1
)

// Environment overrides.
const (
	EnvAPIKey  = "ANTHROPIC_API_KEY"
	EnvBaseDir = "CITE_BASE_DIR"
)

// ErrNoAPIKey is returned when the remote extractor is requested without a key.
var ErrNoAPIKey = errors.New("no API key configured (set " + EnvAPIKey + " or api_key)")

// Config is the effective configuration: every path is resolved and every
// numeric setting has a usable value.
type Config struct {
	BaseDir       string `json:"base_dir"`
	SourceFile    string `json:"source_file"`
	OutputDir     string `json:"output_dir"`
	ErrorLog      string `json:"error_log"`
	ProgressFile  string `json:"progress_file"`
	IndexFile     string `json:"index_file"`
	PromptPath    string `json:"prompt_path,omitempty"`
	GazetteerPath string `json:"gazetteer_path,omitempty"`

	Model             string  `json:"model,omitempty"`
	APIKey            string  `json:"-"`
	BaseURL           string  `json:"base_url,omitempty"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	MaxRetries        int     `json:"max_retries"`

	Workers       int  `json:"workers"`
	TitleFallback bool `json:"title_fallback"`
}

// Load reads the global config and resolves it against the environment.
func Load() (*Config, error) {
	g, err := LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	return Resolve(g, os.Getenv), nil
}

// Resolve fills defaults and applies environment overrides.
// Relative paths are taken relative to the base directory.
func Resolve(g *GlobalConfig, getenv func(string) string) *Config {
	if g == nil {
		g = &GlobalConfig{}
	}

	base := g.BaseDir
	if v := getenv(EnvBaseDir); v != "" {
		base = v
	}
	if base == "" {
		base = "."
	}
	base = ExpandTilde(base)

	path := func(v, def string) string {
		if v == "" {
			v = def
		}
		if v == "" {
			return ""
		}
		v = ExpandTilde(v)
		if filepath.IsAbs(v) {
			return v
		}
		return filepath.Join(base, v)
	}

	cfg := &Config{
		BaseDir:       base,
		SourceFile:    path(g.SourceFile, DefaultSourceFile),
		OutputDir:     path(g.OutputDir, DefaultOutputDir),
		ErrorLog:      path(g.ErrorLog, DefaultErrorLog),
		ProgressFile:  path(g.ProgressFile, DefaultProgressFile),
		IndexFile:     path(g.IndexFile, DefaultIndexFile),
		PromptPath:    path(g.PromptPath, ""),
		GazetteerPath: path(g.GazetteerPath, ""),

		Model:             g.Model,
		APIKey:            g.APIKey,
		BaseURL:           g.BaseURL,
		RequestsPerSecond: g.RequestsPerSecond,
		MaxRetries:        g.MaxRetries,

		Workers:       g.Workers,
		TitleFallback: g.TitleFallback,
	}

	if v := getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return cfg
}

// RequireAPIKey returns ErrNoAPIKey when no key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrNoAPIKey
	}
	return nil
}

// MaskedAPIKey shows the last four characters of the key, for display.
func (c *Config) MaskedAPIKey() string {
	k := strings.TrimSpace(c.APIKey)
	switch {
	case k == "":
		return ""
	case len(k) <= 8:
		return strings.Repeat("*", len(k))
	default:
		return strings.Repeat("*", 8) + k[len(k)-4:]
	}
}

// Display returns the configuration as key/value pairs with the API key masked.
func (c *Config) Display() map[string]string {
	return map[string]string{
		"base_dir":            c.BaseDir,
		"source_file":         c.SourceFile,
		"output_dir":          c.OutputDir,
		"error_log":           c.ErrorLog,
		"progress_file":       c.ProgressFile,
		"index_file":          c.IndexFile,
		"prompt_path":         c.PromptPath,
		"gazetteer_path":      c.GazetteerPath,
		"model":               c.Model,
		"api_key":             c.MaskedAPIKey(),
		"base_url":            c.BaseURL,
		"requests_per_second": strconv.FormatFloat(c.RequestsPerSecond, 'g', -1, 64),
		"max_retries":         strconv.Itoa(c.MaxRetries),
		"workers":             strconv.Itoa(c.Workers),
		"title_fallback":      strconv.FormatBool(c.TitleFallback),
	}
}

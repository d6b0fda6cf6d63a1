package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/matsen/citeparse/internal/assemble"
	"github.com/matsen/citeparse/internal/batch"
	"github.com/matsen/citeparse/internal/config"
	"github.com/matsen/citeparse/internal/extract"
	"github.com/matsen/citeparse/internal/remote"
	"github.com/matsen/citeparse/internal/storage"
)

// mustLoadConfig loads the effective configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustNewAssembler builds the rule-based extractor, loading the gazetteer
// file when one is configured.
func mustNewAssembler(cfg *config.Config) *assemble.Assembler {
	opts := []assemble.Option{assemble.WithTitleFallback(cfg.TitleFallback)}
	if cfg.GazetteerPath != "" {
		g, err := extract.LoadGazetteer(cfg.GazetteerPath)
		if err != nil {
			exitWithError(ExitConfigError, "loading gazetteer: %v", err)
		}
		opts = append(opts, assemble.WithGazetteer(g))
	}
	return assemble.New(opts...)
}

// mustNewRemoteExtractor builds the model-backed extractor. promptPath
// overrides the configured prompt template when set.
func mustNewRemoteExtractor(cfg *config.Config, promptPath string) *remote.Extractor {
	if err := cfg.RequireAPIKey(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	tmpl := remote.DefaultTemplate
	if promptPath == "" {
		promptPath = cfg.PromptPath
	}
	if promptPath != "" {
		t, err := remote.LoadTemplate(promptPath)
		if err != nil {
			exitWithError(ExitConfigError, "loading prompt: %v", err)
		}
		tmpl = t
	}

	opts := []remote.ClientOption{
		remote.WithAPIKey(cfg.APIKey),
		remote.WithModel(cfg.Model),
		remote.WithRateLimit(cfg.RequestsPerSecond),
		remote.WithLogger(slog.Default()),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, remote.WithBaseURL(cfg.BaseURL))
	}

	policy := remote.DefaultPolicy()
	policy.MaxAttempts = cfg.MaxRetries
	return remote.NewExtractor(remote.NewClient(opts...), tmpl, policy)
}

// newExtractor picks the rule-based or the remote extractor.
func newExtractor(cfg *config.Config, useRemote bool, promptPath string) batch.Extractor {
	if useRemote {
		return mustNewRemoteExtractor(cfg, promptPath)
	}
	return mustNewAssembler(cfg)
}

// mustLoadProgress loads resume state, exits on error.
func mustLoadProgress(cfg *config.Config) *batch.Progress {
	p, err := batch.LoadProgress(cfg.ProgressFile)
	if err != nil {
		exitWithError(ExitDataError, "loading progress: %v", err)
	}
	return p
}

// mustOpenDatabase opens the SQLite index, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(cfg *config.Config) *storage.DB {
	db, err := storage.OpenDB(cfg.IndexFile)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// exitCodeFor maps an extraction failure to an exit code.
func exitCodeFor(err error) int {
	if remote.Kind(err) != "" {
		return ExitRemoteError
	}
	return ExitDataError
}

package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/matsen/citeparse/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration after defaults and environment
overrides. The API key is masked.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	ConfigFile string            `json:"config_file"`
	Settings   map[string]string `json:"settings"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	resp := ConfigResponse{ConfigFile: config.GlobalConfigPath(), Settings: cfg.Display()}

	if !humanOutput {
		return outputJSON(resp)
	}

	keys := make([]string, 0, len(resp.Settings))
	for k := range resp.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outputHuman("%s %s\n", labelStyle.Render("config file:"), resp.ConfigFile)
	for _, k := range keys {
		v := resp.Settings[k]
		if v == "" {
			v = labelStyle.Render("(unset)")
		}
		outputHuman("%-20s %s\n", k, v)
	}
	return nil
}

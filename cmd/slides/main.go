package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-slides/pkg/slides"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "slides",
	Short: "Generate PowerPoint decks from a template and slide records",
	Long: `slides copies template slides into a new deck, one per record, fills
their {{placeholders}}, grows their tables and renders **bold** and
[[important]] markup.

Configuration is read from --config (YAML or JSON) and SLIDES_* environment
variables; flags override both.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPathFlag string
	logLevelFlag   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error, off)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "slides %s\n", rootCmd.Version)
	},
}

// loadConfig reads the config file and environment, applies the persistent
// flags and installs the result as the global configuration.
func loadConfig(apply func(*slides.Config)) (*slides.Config, error) {
	config, err := slides.LoadConfig(configPathFlag)
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		config.LogLevel = logLevelFlag
	}
	if apply != nil {
		apply(config)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	slides.SetGlobalConfig(config)
	return config, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

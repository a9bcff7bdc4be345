// Package main provides the fitplan command: the HTTP API server plus
// operator tools for generating, inspecting and storing training plans.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	dbDriver   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "fitplan",
		Short: "Personalized training plan generation",
		Long: "fitplan turns a fitness profile into a weekly training and nutrition plan " +
			"using a language model, links exercises to a catalog, and stores the result.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a config file (default: fitplan.yaml in . or ./config)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "Override log.format (json, console)")
	flags.StringVar(&opts.dbDriver, "db-driver", "", "Override database.driver (postgres, mongo, none)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newGenerateCmd(opts),
		newPlansCmd(opts),
		newMigrateCmd(opts),
		newCatalogCmd(opts),
		newTokenCmd(opts),
	)
	return rootCmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
